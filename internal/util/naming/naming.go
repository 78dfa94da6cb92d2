package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Prefix is prepended to every resource emc creates.
const Prefix = "emc"

// MaxNameLength keeps Server(name) within a 63 character hostname label.
const MaxNameLength = 63 - len(Prefix) - 1

var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateName reports whether name can be used both as part of a server
// hostname and as a label value.
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return fmt.Errorf("name %q is longer than %d characters", name, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name %q must be lowercase letters, digits and inner hyphens", name)
	}
	return nil
}

// KeyName returns a fresh SSH key name for the given tool version.
func KeyName(version string) string {
	return Prefix + version + "-" + uuid.NewString()
}

// Firewall joins rule tokens (such as "tcp22") into a firewall name.
// Callers pass the tokens in their canonical order.
func Firewall(rules ...string) string {
	if len(rules) == 0 {
		return Prefix + "-closed"
	}
	return Prefix + "-" + strings.Join(rules, "-")
}

// Server returns the Hetzner server name for a registry entry.
func Server(name string) string {
	return Prefix + "-" + name
}
