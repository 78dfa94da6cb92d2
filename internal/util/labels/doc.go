// Package labels builds the Hetzner Cloud labels emc attaches to the
// servers, SSH keys and firewalls it creates.
package labels
