package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ServerCreateOpts holds all parameters for creating a server.
type ServerCreateOpts struct {
	Name       string
	Image      string
	ServerType string
	Location   string
	SSHKeys    []string // names or IDs
	Firewalls  []int64
	Labels     map[string]string
	UserData   string
}

// ServerManager creates, inspects and deletes servers.
type ServerManager interface {
	// CreateServer creates a server and returns its ID.
	CreateServer(ctx context.Context, opts ServerCreateOpts) (string, error)
	// DeleteServer deletes a server by ID or name. A missing server is not an error.
	DeleteServer(ctx context.Context, idOrName string) error
	// GetServer returns the server, or nil if it does not exist.
	GetServer(ctx context.Context, idOrName string) (*hcloud.Server, error)
}

// SSHKeyManager defines the interface for managing SSH keys.
type SSHKeyManager interface {
	CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (string, error)
	DeleteSSHKey(ctx context.Context, name string) error
}

// FirewallManager defines the interface for managing firewalls.
type FirewallManager interface {
	// EnsureFirewall returns the named firewall, creating it with rules if absent.
	// An existing firewall is returned unchanged.
	EnsureFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string) (*hcloud.Firewall, error)
}

// Catalog answers questions about server types, images and locations.
type Catalog interface {
	GetServerType(ctx context.Context, name string) (*hcloud.ServerType, error)
	GetImage(ctx context.Context, name string, arch hcloud.Architecture) (*hcloud.Image, error)
	GetLocation(ctx context.Context, name string) (*hcloud.Location, error)
}

// Client combines everything emc needs from Hetzner Cloud.
type Client interface {
	ServerManager
	SSHKeyManager
	FirewallManager
	Catalog
}
