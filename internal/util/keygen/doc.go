// Package keygen mints the per-server RSA credential.
//
// Every launched server gets its own pair. The public half is registered
// with Hetzner Cloud under a unique key name, the private half is kept in
// the registry record and used by "emc ssh" and friends. KeyPair marshals
// both halves as base64 strings in JSON.
package keygen
