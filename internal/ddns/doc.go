// Package ddns pushes a server address to a dynamic DNS provider.
//
// An entry is a URL template containing the literal placeholder 0.0.0.0.
// [Render] substitutes every occurrence with the real address and
// [Synchronizer.Sync] requests the result. Plain http(s) templates are
// fetched with GET, the way most update endpoints (Namecheap, DuckDNS,
// dynv6) expect. Templates of the form cloudflare://<record>?ip=0.0.0.0
// are applied through the Cloudflare API instead.
package ddns
