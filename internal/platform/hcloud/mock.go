package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// MockClient is a Client whose behaviour is set per test through the Func
// fields. Unset fields return zero values.
type MockClient struct {
	CreateServerFunc   func(ctx context.Context, opts ServerCreateOpts) (string, error)
	DeleteServerFunc   func(ctx context.Context, idOrName string) error
	GetServerFunc      func(ctx context.Context, idOrName string) (*hcloud.Server, error)
	CreateSSHKeyFunc   func(ctx context.Context, name, publicKey string, labels map[string]string) (string, error)
	DeleteSSHKeyFunc   func(ctx context.Context, name string) error
	EnsureFirewallFunc func(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string) (*hcloud.Firewall, error)
	GetServerTypeFunc  func(ctx context.Context, name string) (*hcloud.ServerType, error)
	GetImageFunc       func(ctx context.Context, name string, arch hcloud.Architecture) (*hcloud.Image, error)
	GetLocationFunc    func(ctx context.Context, name string) (*hcloud.Location, error)
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (string, error) {
	if m.CreateServerFunc != nil {
		return m.CreateServerFunc(ctx, opts)
	}
	return "1", nil
}

func (m *MockClient) DeleteServer(ctx context.Context, idOrName string) error {
	if m.DeleteServerFunc != nil {
		return m.DeleteServerFunc(ctx, idOrName)
	}
	return nil
}

func (m *MockClient) GetServer(ctx context.Context, idOrName string) (*hcloud.Server, error) {
	if m.GetServerFunc != nil {
		return m.GetServerFunc(ctx, idOrName)
	}
	return nil, nil
}

func (m *MockClient) CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (string, error) {
	if m.CreateSSHKeyFunc != nil {
		return m.CreateSSHKeyFunc(ctx, name, publicKey, labels)
	}
	return "1", nil
}

func (m *MockClient) DeleteSSHKey(ctx context.Context, name string) error {
	if m.DeleteSSHKeyFunc != nil {
		return m.DeleteSSHKeyFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string) (*hcloud.Firewall, error) {
	if m.EnsureFirewallFunc != nil {
		return m.EnsureFirewallFunc(ctx, name, rules, labels)
	}
	return &hcloud.Firewall{ID: 1, Name: name, Rules: rules, Labels: labels}, nil
}

func (m *MockClient) GetServerType(ctx context.Context, name string) (*hcloud.ServerType, error) {
	if m.GetServerTypeFunc != nil {
		return m.GetServerTypeFunc(ctx, name)
	}
	return &hcloud.ServerType{Name: name, Architecture: DetectArchitecture(name)}, nil
}

func (m *MockClient) GetImage(ctx context.Context, name string, arch hcloud.Architecture) (*hcloud.Image, error) {
	if m.GetImageFunc != nil {
		return m.GetImageFunc(ctx, name, arch)
	}
	return &hcloud.Image{Name: name, Architecture: arch}, nil
}

func (m *MockClient) GetLocation(ctx context.Context, name string) (*hcloud.Location, error) {
	if m.GetLocationFunc != nil {
		return m.GetLocationFunc(ctx, name)
	}
	return &hcloud.Location{Name: name}, nil
}
