package provision

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/platform/hcloud"
	"github.com/imamik/emc/internal/util/keygen"
	"github.com/imamik/emc/internal/util/labels"
	"github.com/imamik/emc/internal/util/naming"
)

// ClientFactory returns the API client for a region.
type ClientFactory interface {
	ForRegion(region string) hcloud.Client
}

// HCloud provisions servers on Hetzner Cloud.
type HCloud struct {
	clients ClientFactory
	version string
	log     *zap.SugaredLogger

	// generateKey is swapped in tests to avoid RSA generation cost.
	generateKey func() (*keygen.KeyPair, error)
}

// NewHCloud returns a provisioner using clients from factory. version is
// embedded in SSH key names and labels.
func NewHCloud(factory ClientFactory, version string, log *zap.SugaredLogger) *HCloud {
	return &HCloud{
		clients:     factory,
		version:     version,
		log:         log,
		generateKey: keygen.Generate,
	}
}

// Launch mints a key pair, registers it, ensures the firewall for the port
// set and creates the server.
func (p *HCloud) Launch(ctx context.Context, req LaunchRequest) (*Instance, error) {
	client := p.clients.ForRegion(req.Region)

	kp, err := p.generateKey()
	if err != nil {
		return nil, errs.Wrap(errs.ProvisionError, err, "generate key pair")
	}

	resourceLabels := labels.NewLabelBuilder().
		WithName(req.Name).
		WithVersion(p.version).
		Merge(req.Labels).
		Build()

	keyName := naming.KeyName(p.version)
	if _, err := client.CreateSSHKey(ctx, keyName, string(kp.Public), resourceLabels); err != nil {
		return nil, errs.Wrap(errs.ProvisionError, err, "register ssh key %s", keyName)
	}
	p.log.Debugw("registered ssh key", "key", keyName)

	firewallName := RuleSetName(req.Ports)
	firewallLabels := labels.NewLabelBuilder().WithVersion(p.version).Build()
	fw, err := client.EnsureFirewall(ctx, firewallName, hcloud.FirewallRules(req.Ports), firewallLabels)
	if err != nil {
		p.releaseKey(ctx, client, keyName)
		return nil, errs.Wrap(errs.ProvisionError, err, "ensure firewall %s", firewallName)
	}
	p.log.Debugw("firewall ready", "firewall", firewallName, "id", fw.ID)

	serverName := naming.Server(req.Name)
	handle, err := client.CreateServer(ctx, hcloud.ServerCreateOpts{
		Name:       serverName,
		Image:      req.ImageID,
		ServerType: req.InstanceType,
		Location:   req.Region,
		SSHKeys:    []string{keyName},
		Firewalls:  []int64{fw.ID},
		Labels:     maps.Clone(resourceLabels),
		UserData:   string(req.BootPayload),
	})
	if err != nil {
		p.releaseKey(ctx, client, keyName)
		return nil, errs.Wrap(errs.ProvisionError, err, "create server %s", serverName)
	}
	if handle == "" {
		p.releaseKey(ctx, client, keyName)
		return nil, errs.New(errs.ProvisionError, "create server %s: provider returned no server", serverName)
	}

	p.log.Infow("server created", "server", serverName, "id", handle, "region", req.Region, "type", req.InstanceType)
	return &Instance{Handle: handle, KeyPair: kp, KeyName: keyName}, nil
}

// releaseKey removes a key registered for a launch that did not complete.
func (p *HCloud) releaseKey(ctx context.Context, client hcloud.Client, keyName string) {
	if err := client.DeleteSSHKey(ctx, keyName); err != nil {
		p.log.Warnw("failed to remove ssh key of failed launch", "key", keyName, "error", err)
	}
}

// Terminate deletes the server, then its SSH key. Both are attempted even
// if the first fails.
func (p *HCloud) Terminate(ctx context.Context, region, handle, keyName string) error {
	client := p.clients.ForRegion(region)

	var serverErr, keyErr error
	if err := client.DeleteServer(ctx, handle); err != nil {
		serverErr = fmt.Errorf("delete server %s: %w", handle, err)
	}
	if keyName != "" {
		if err := client.DeleteSSHKey(ctx, keyName); err != nil {
			keyErr = fmt.Errorf("delete ssh key %s: %w", keyName, err)
		}
	}
	if err := errors.Join(serverErr, keyErr); err != nil {
		return errs.Wrap(errs.ProviderError, err, "terminate")
	}
	return nil
}

// Addresses returns the public addresses currently assigned to the server.
func (p *HCloud) Addresses(ctx context.Context, region, handle string) ([]string, error) {
	server, err := p.clients.ForRegion(region).GetServer(ctx, handle)
	if err != nil {
		return nil, errs.Wrap(errs.ProviderError, err, "look up server %s", handle)
	}
	if server == nil {
		return nil, errs.New(errs.ProviderError, "server %s does not exist", handle)
	}
	return hcloud.ServerAddresses(server), nil
}
