package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the Hetzner Cloud API timeouts.
// These values can be customized via environment variables.
type Timeouts struct {
	ServerCreate      time.Duration // Timeout for server creation actions
	Delete            time.Duration // Timeout for delete operations
	ImageLookup       time.Duration // Timeout for image and server type lookups
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - HCLOUD_TIMEOUT_SERVER_CREATE (default: 10m)
//   - HCLOUD_TIMEOUT_DELETE (default: 5m)
//   - HCLOUD_TIMEOUT_IMAGE_LOOKUP (default: 1m)
//   - HCLOUD_RETRY_MAX_ATTEMPTS (default: 5)
//   - HCLOUD_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      parseDuration("HCLOUD_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		Delete:            parseDuration("HCLOUD_TIMEOUT_DELETE", 5*time.Minute),
		ImageLookup:       parseDuration("HCLOUD_TIMEOUT_IMAGE_LOOKUP", 1*time.Minute),
		RetryMaxAttempts:  parseInt("HCLOUD_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("HCLOUD_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// TestTimeouts returns short timeouts for unit tests against fake APIs.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      5 * time.Second,
		Delete:            5 * time.Second,
		ImageLookup:       5 * time.Second,
		RetryMaxAttempts:  2,
		RetryInitialDelay: 10 * time.Millisecond,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
