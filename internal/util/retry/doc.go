// Package retry provides exponential backoff for transient failures.
//
// [WithExponentialBackoff] is used around Hetzner Cloud API calls that can
// hit locked resources and around SSH dials to servers that are still
// booting. Errors wrapped with [Fatal] stop the loop immediately.
package retry
