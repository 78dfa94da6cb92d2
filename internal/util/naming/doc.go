// Package naming derives the names emc gives to Hetzner Cloud resources.
//
// SSH keys carry a random component so repeated launches never collide.
// Firewalls are named after the ports they open, which lets servers with
// the same port set share one firewall.
package naming
