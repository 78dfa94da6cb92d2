// Package provision creates and destroys the cloud resources behind one
// game server: an SSH key registered for the server alone, a firewall
// shared by every server that opens the same ports, and the server itself.
package provision

import (
	"context"

	"github.com/imamik/emc/internal/util/keygen"
	"github.com/imamik/emc/internal/util/naming"
	"github.com/imamik/emc/internal/util/netutil"
)

// LaunchRequest describes one server to create.
type LaunchRequest struct {
	// Name is the registry name. It becomes part of the server name and labels.
	Name         string
	BootPayload  []byte
	Region       string
	InstanceType string
	ImageID      string
	Ports        []netutil.Port
	Labels       map[string]string
}

// Instance is what a successful launch hands back.
type Instance struct {
	Handle  string
	KeyPair *keygen.KeyPair
	KeyName string
}

// Provisioner is implemented by the real Hetzner provisioner and by the
// simulated one used for dry runs.
type Provisioner interface {
	// Launch creates one server and its supporting resources.
	// Failures carry errs.ProvisionError.
	Launch(ctx context.Context, req LaunchRequest) (*Instance, error)
	// Terminate deletes the server and its SSH key. Firewalls are kept.
	// Failures carry errs.ProviderError.
	Terminate(ctx context.Context, region, handle, keyName string) error
	// Addresses lists the public addresses of a server, possibly none yet.
	// Failures carry errs.ProviderError.
	Addresses(ctx context.Context, region, handle string) ([]string, error)
}

// RuleSetName is the firewall name for a port set. It depends only on the
// set, not on the order ports were given in.
func RuleSetName(ports []netutil.Port) string {
	return naming.Firewall(netutil.Tokens(ports)...)
}
