// Package lifecycle creates, inspects and terminates game servers.
//
// [Manager] is the only component that touches the registry, the provider
// and DDNS together. Every operation loads the whole registry, checks its
// preconditions before any provider call, and writes the registry back.
// Ordering matters in two places: a server is recorded as soon as the
// provider has created it, and it is removed from the registry before its
// cloud resources are torn down. DDNS failures are reported as warnings and
// never undo either step.
package lifecycle
