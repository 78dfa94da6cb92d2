package hcloud

import (
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// DetectArchitecture guesses the CPU architecture from a server type name.
// CAX server types (e.g., cax11, cax21) are ARM; all others are x86.
// The API answer from GetServerType takes precedence when available.
//
// Examples:
//   - "cx32", "cpx31", "ccx33" -> x86
//   - "cax11", "cax21", "cax31" -> arm
func DetectArchitecture(serverType string) hcloud.Architecture {
	if strings.HasPrefix(serverType, "cax") {
		return hcloud.ArchitectureARM
	}
	return hcloud.ArchitectureX86
}
