// Package ssh runs commands on game servers, opens interactive sessions and
// downloads files from them.
//
// Every server has its own key pair stored in the registry, so a Client is
// built per server from that private key. Host keys are not verified: the
// servers are short-lived and their host keys are never known in advance.
package ssh
