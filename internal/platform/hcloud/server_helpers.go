package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// resolveSSHKeys resolves SSH key names/IDs to SSH key objects.
func (c *RealClient) resolveSSHKeys(ctx context.Context, sshKeys []string) ([]*hcloud.SSHKey, error) {
	var sshKeyObjs []*hcloud.SSHKey
	for _, key := range sshKeys {
		keyObj, _, err := c.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get ssh key %s: %w", key, err)
		}
		if keyObj == nil {
			return nil, fmt.Errorf("ssh key not found: %s", key)
		}
		sshKeyObjs = append(sshKeyObjs, keyObj)
	}
	return sshKeyObjs, nil
}

// resolveLocation resolves a location name to a location object.
func (c *RealClient) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	if location == "" {
		return nil, nil
	}

	locObj, err := c.GetLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	if locObj == nil {
		return nil, fmt.Errorf("location not found: %s", location)
	}
	return locObj, nil
}

// resolveFirewalls converts firewall IDs into create references.
func resolveFirewalls(ids []int64) []*hcloud.ServerCreateFirewall {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*hcloud.ServerCreateFirewall, 0, len(ids))
	for _, id := range ids {
		out = append(out, &hcloud.ServerCreateFirewall{Firewall: hcloud.Firewall{ID: id}})
	}
	return out
}

// ServerAddresses lists the public addresses of a server, IPv4 first.
// Hetzner assigns an IPv6 /64; the first host address in it is used.
func ServerAddresses(s *hcloud.Server) []string {
	if s == nil {
		return nil
	}
	var out []string
	if ip := s.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		out = append(out, ip.String())
	}
	if ip := s.PublicNet.IPv6.IP; ip != nil && !ip.IsUnspecified() {
		host := make(net.IP, len(ip))
		copy(host, ip)
		host[len(host)-1] |= 1
		out = append(out, host.String())
	}
	return out
}
