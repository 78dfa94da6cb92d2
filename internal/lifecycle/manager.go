package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/imamik/emc/internal/metrics"
	"github.com/imamik/emc/internal/provision"
	"github.com/imamik/emc/internal/registry"
	"github.com/imamik/emc/internal/util/netutil"
)

// AddressResolver finds the public address of a server.
type AddressResolver interface {
	Resolve(ctx context.Context, region, handle string) (string, error)
}

// DNSSyncer pushes an address through a DDNS URL template.
type DNSSyncer interface {
	Sync(ctx context.Context, template, address string) error
}

// Manager orchestrates the server lifecycle.
type Manager struct {
	store       registry.Store
	provisioner provision.Provisioner
	resolver    AddressResolver
	dns         DNSSyncer
	log         *zap.SugaredLogger
	metrics     *metrics.Recorder
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithMetrics records operations on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = r
	}
}

// NewManager wires the lifecycle collaborators together.
func NewManager(store registry.Store, p provision.Provisioner, resolver AddressResolver, dns DNSSyncer, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		provisioner: p,
		resolver:    resolver,
		dns:         dns,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRequest describes a server to launch.
type CreateRequest struct {
	Name         string
	Region       string
	InstanceType string
	ImageID      string
	Ports        []netutil.Port
	BootPayload  []byte
	// DDNSDomain links the new server to an existing DDNS entry.
	DDNSDomain string
	Labels     map[string]string
}

// Result is what a state-changing operation returns. Warnings carry
// problems that did not stop the operation, such as a failed DDNS update.
type Result struct {
	Name     string
	Record   *registry.ServerRecord
	Warnings []error
}

func (r *Result) warn(err error) {
	if err != nil {
		r.Warnings = append(r.Warnings, err)
	}
}

// Entry pairs a server name with its record.
type Entry struct {
	Name   string
	Record *registry.ServerRecord
}

// DDNSEntry is a DDNS template together with the servers linked to it.
type DDNSEntry struct {
	Domain   string
	Template string
	Servers  []string
}

// observe records one operation. It is meant to be deferred with a
// pointer to the named error result.
func (m *Manager) observe(operation string, started time.Time, err *error) {
	m.metrics.ObserveOperation(operation, started, *err)
}

func (m *Manager) load() (*registry.Document, error) {
	return m.store.Load()
}

func (m *Manager) save(doc *registry.Document) error {
	if err := m.store.Save(doc); err != nil {
		return err
	}
	m.metrics.SetRegistrySize(len(doc.Servers), len(doc.DDNSEntries))
	return nil
}

func ptr(s string) *string { return &s }
