package hcloud

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/emc/internal/util/netutil"
)

// EnsureFirewall returns the named firewall, creating it with rules if it
// does not exist. An existing firewall is never updated: its name already
// encodes the port set it was created for.
func (c *RealClient) EnsureFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string) (fw *hcloud.Firewall, err error) {
	defer c.observe("ensure_firewall", time.Now(), &err)

	return (&EnsureOperation[*hcloud.Firewall, hcloud.FirewallCreateOpts]{
		Name:         name,
		ResourceType: "firewall",
		Get:          c.client.Firewall.Get,
		Create:       c.createFirewall,
		CreateOptsMapper: func() hcloud.FirewallCreateOpts {
			return hcloud.FirewallCreateOpts{
				Name:   name,
				Rules:  rules,
				Labels: labels,
			}
		},
	}).Execute(ctx, c)
}

func (c *RealClient) createFirewall(ctx context.Context, opts hcloud.FirewallCreateOpts) (*CreateResult[*hcloud.Firewall], *hcloud.Response, error) {
	res, resp, err := c.client.Firewall.Create(ctx, opts)
	if err != nil {
		return nil, resp, err
	}
	return &CreateResult[*hcloud.Firewall]{
		Resource: res.Firewall,
		Actions:  res.Actions,
	}, resp, nil
}

// FirewallRules converts ports into inbound rules open to any source.
func FirewallRules(ports []netutil.Port) []hcloud.FirewallRule {
	anywhere := []net.IPNet{
		{IP: net.IPv4zero, Mask: net.CIDRMask(0, 32)},
		{IP: net.IPv6zero, Mask: net.CIDRMask(0, 128)},
	}

	sorted := netutil.SortPorts(ports)
	rules := make([]hcloud.FirewallRule, 0, len(sorted))
	for _, p := range sorted {
		rules = append(rules, hcloud.FirewallRule{
			Direction:   hcloud.FirewallRuleDirectionIn,
			SourceIPs:   anywhere,
			Protocol:    hcloud.FirewallRuleProtocol(p.Protocol),
			Port:        hcloud.Ptr(strconv.Itoa(p.Number)),
			Description: hcloud.Ptr(p.String()),
		})
	}
	return rules
}
