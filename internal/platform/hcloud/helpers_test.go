package hcloud

import (
	"net"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/emc/internal/util/netutil"
)

func TestServerAddresses(t *testing.T) {
	t.Parallel()

	_, v6net, err := net.ParseCIDR("2a01:4f8:1c1c::/64")
	require.NoError(t, err)

	tests := []struct {
		name   string
		server *hcloud.Server
		want   []string
	}{
		{name: "nil server"},
		{name: "no public net", server: &hcloud.Server{}},
		{
			name: "ipv4 only",
			server: &hcloud.Server{PublicNet: hcloud.ServerPublicNet{
				IPv4: hcloud.ServerPublicNetIPv4{IP: net.ParseIP("203.0.113.5")},
			}},
			want: []string{"203.0.113.5"},
		},
		{
			name: "ipv6 only",
			server: &hcloud.Server{PublicNet: hcloud.ServerPublicNet{
				IPv6: hcloud.ServerPublicNetIPv6{IP: v6net.IP, Network: v6net},
			}},
			want: []string{"2a01:4f8:1c1c::1"},
		},
		{
			name: "unspecified ipv4 ignored",
			server: &hcloud.Server{PublicNet: hcloud.ServerPublicNet{
				IPv4: hcloud.ServerPublicNetIPv4{IP: net.IPv4zero},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServerAddresses(tt.server))
		})
	}
}

func TestServerAddresses_DoesNotMutateNetwork(t *testing.T) {
	t.Parallel()

	_, v6net, err := net.ParseCIDR("2001:db8::/64")
	require.NoError(t, err)
	s := &hcloud.Server{PublicNet: hcloud.ServerPublicNet{IPv6: hcloud.ServerPublicNetIPv6{IP: v6net.IP}}}

	ServerAddresses(s)
	assert.Equal(t, "2001:db8::", s.PublicNet.IPv6.IP.String())
}

func TestFirewallRules_SortedAndOpen(t *testing.T) {
	t.Parallel()

	rules := FirewallRules([]netutil.Port{
		{Protocol: netutil.UDP, Number: 25565},
		{Protocol: netutil.TCP, Number: 25565},
		{Protocol: netutil.TCP, Number: 22},
	})

	require.Len(t, rules, 3)
	assert.Equal(t, hcloud.FirewallRuleProtocolTCP, rules[0].Protocol)
	assert.Equal(t, "22", *rules[0].Port)
	assert.Equal(t, "25565", *rules[1].Port)
	assert.Equal(t, hcloud.FirewallRuleProtocolUDP, rules[2].Protocol)
	for _, r := range rules {
		assert.Equal(t, hcloud.FirewallRuleDirectionIn, r.Direction)
		assert.Len(t, r.SourceIPs, 2)
	}
}

func TestDetectArchitecture(t *testing.T) {
	t.Parallel()

	assert.Equal(t, hcloud.ArchitectureARM, DetectArchitecture("cax21"))
	assert.Equal(t, hcloud.ArchitectureX86, DetectArchitecture("cx32"))
	assert.Equal(t, hcloud.ArchitectureX86, DetectArchitecture("ccx13"))
}

func TestFactory_CachesPerRegion(t *testing.T) {
	t.Parallel()

	f := NewFactory("token")
	a := f.ForRegion("fsn1")
	b := f.ForRegion("fsn1")
	c := f.ForRegion("hel1")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
