package config

import (
	"fmt"
	"net"
)

// ValidLocations contains all Hetzner Cloud locations.
// https://docs.hetzner.com/cloud/general/locations/
var ValidLocations = map[string]bool{
	"nbg1": true, // Nuremberg, Germany
	"fsn1": true, // Falkenstein, Germany
	"hel1": true, // Helsinki, Finland
	"ash":  true, // Ashburn, USA
	"hil":  true, // Hillsboro, USA
	"sin":  true, // Singapore
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if !ValidLocations[c.Region] {
		return fmt.Errorf("unknown region %q", c.Region)
	}
	if c.ServerType == "" {
		return fmt.Errorf("server_type is required")
	}
	for _, p := range c.Ports {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("ports: %w", err)
		}
	}
	if c.Address.Attempts < 1 {
		return fmt.Errorf("address.attempts must be at least 1, got %d", c.Address.Attempts)
	}
	if c.Address.Interval < 0 {
		return fmt.Errorf("address.interval must not be negative")
	}
	if _, _, err := net.SplitHostPort(c.DDNS.DNSServer); err != nil {
		return fmt.Errorf("ddns.dns_server must be host:port: %w", err)
	}
	if c.Game.Port < 1 || c.Game.Port > 65535 {
		return fmt.Errorf("game.port %d out of range", c.Game.Port)
	}
	return nil
}

// RequireHCloudToken reports a missing API token.
func (c *Config) RequireHCloudToken() error {
	if c.HCloudToken == "" {
		return fmt.Errorf("%s is not set", EnvHCloudToken)
	}
	return nil
}

// BackupEnabled reports whether enough is configured to reach the bucket.
// The endpoint is derived from the region when unset.
func (c *Config) BackupEnabled() bool {
	b := c.Backup
	return b.Bucket != "" && b.AccessKey != "" && b.SecretKey != ""
}
