package provision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/imamik/emc/internal/util/keygen"
	"github.com/imamik/emc/internal/util/naming"
)

// simulatedAddress is handed out for servers this process did not launch.
const simulatedAddress = "192.0.2.10"

// Simulated logs the calls a real provisioner would make and invents
// handles and addresses from the 192.0.2.0/24 documentation range.
// Nothing leaves the machine.
type Simulated struct {
	version   string
	log       *zap.SugaredLogger
	launched  map[string]string
	firewalls map[string]bool
}

// NewSimulated returns a dry-run provisioner.
func NewSimulated(version string, log *zap.SugaredLogger) *Simulated {
	return &Simulated{
		version:   version,
		log:       log,
		launched:  make(map[string]string),
		firewalls: make(map[string]bool),
	}
}

func (s *Simulated) Launch(_ context.Context, req LaunchRequest) (*Instance, error) {
	kp, err := keygen.Generate()
	if err != nil {
		return nil, err
	}
	keyName := naming.KeyName(s.version)
	s.log.Infow("[dry-run] would register ssh key", "key", keyName, "region", req.Region)

	firewall := RuleSetName(req.Ports)
	if s.firewalls[firewall] {
		s.log.Infow("[dry-run] would reuse firewall", "firewall", firewall)
	} else {
		s.log.Infow("[dry-run] would ensure firewall", "firewall", firewall)
		s.firewalls[firewall] = true
	}

	handle := fmt.Sprintf("dry-run-%d", len(s.launched)+1)
	s.launched[handle] = fmt.Sprintf("192.0.2.%d", len(s.launched)+100)
	s.log.Infow("[dry-run] would create server",
		"server", naming.Server(req.Name),
		"type", req.InstanceType,
		"image", req.ImageID,
		"payload_bytes", len(req.BootPayload),
		"handle", handle,
	)

	return &Instance{Handle: handle, KeyPair: kp, KeyName: keyName}, nil
}

func (s *Simulated) Terminate(_ context.Context, region, handle, keyName string) error {
	s.log.Infow("[dry-run] would delete server and ssh key", "region", region, "handle", handle, "key", keyName)
	delete(s.launched, handle)
	return nil
}

func (s *Simulated) Addresses(_ context.Context, region, handle string) ([]string, error) {
	s.log.Debugw("[dry-run] would look up server addresses", "region", region, "handle", handle)
	if addr, ok := s.launched[handle]; ok {
		return []string{addr}, nil
	}
	return []string{simulatedAddress}, nil
}
