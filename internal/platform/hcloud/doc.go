// Package hcloud wraps the Hetzner Cloud API for the resources emc manages:
// servers, SSH keys and firewalls.
//
// # Generic Operations
//
// DeleteOperation provides idempotent deletion. A missing resource counts
// as deleted and locked resources are retried with exponential backoff.
//
// EnsureOperation provides get-or-create. Existing resources are returned
// as found, optionally after validation, and are never modified.
//
// # Retry and Timeout Configuration
//
// Timeouts and retry parameters come from [config.LoadTimeouts]:
//
//   - HCLOUD_TIMEOUT_SERVER_CREATE: Server creation timeout (default: 10m)
//   - HCLOUD_TIMEOUT_DELETE: Resource deletion timeout (default: 5m)
//   - HCLOUD_TIMEOUT_IMAGE_LOOKUP: Catalog lookup timeout (default: 1m)
//   - HCLOUD_RETRY_MAX_ATTEMPTS: Maximum retry attempts (default: 5)
//   - HCLOUD_RETRY_INITIAL_DELAY: Initial retry delay (default: 1s)
//
// # Clients per Region
//
// [Factory] hands out one [RealClient] per location and reuses it for the
// rest of the process. It is owned by the command layer and passed down.
package hcloud
