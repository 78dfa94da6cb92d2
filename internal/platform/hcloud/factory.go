package hcloud

// Factory hands out one client per location for the lifetime of the process.
// It is not safe for concurrent use.
type Factory struct {
	token   string
	opts    []ClientOption
	clients map[string]*RealClient
}

// NewFactory returns a Factory that builds clients with token and opts.
func NewFactory(token string, opts ...ClientOption) *Factory {
	return &Factory{
		token:   token,
		opts:    opts,
		clients: make(map[string]*RealClient),
	}
}

// ForRegion returns the cached client for region, creating it on first use.
func (f *Factory) ForRegion(region string) Client {
	if c, ok := f.clients[region]; ok {
		return c
	}
	c := NewRealClient(f.token, f.opts...)
	f.clients[region] = c
	return c
}
