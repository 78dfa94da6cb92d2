package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/emc/internal/address"
	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/provision"
	"github.com/imamik/emc/internal/registry"
	"github.com/imamik/emc/internal/util/keygen"
)

// events is shared by the fakes so tests can assert call order.
type events []string

func (e *events) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

type fakeStore struct {
	inner   *registry.MemoryStore
	log     *events
	saveErr error
}

func newFakeStore(log *events) *fakeStore {
	inner, err := registry.NewMemoryStore(nil)
	if err != nil {
		panic(err)
	}
	return &fakeStore{inner: inner, log: log}
}

func (s *fakeStore) Load() (*registry.Document, error) { return s.inner.Load() }

func (s *fakeStore) Save(doc *registry.Document) error {
	s.log.add("save")
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.inner.Save(doc)
}

func (s *fakeStore) doc() *registry.Document {
	doc, err := s.inner.Load()
	if err != nil {
		panic(err)
	}
	return doc
}

type fakeProvisioner struct {
	log          *events
	launches     []provision.LaunchRequest
	launchErr    error
	terminateErr error
	next         int
	// addresses by handle; consulted by the resolver fake as the provider view.
	addresses map[string]string
	// onTerminate runs inside Terminate, before it returns.
	onTerminate func()
}

func newFakeProvisioner(log *events) *fakeProvisioner {
	return &fakeProvisioner{log: log, addresses: map[string]string{}}
}

func (p *fakeProvisioner) Launch(_ context.Context, req provision.LaunchRequest) (*provision.Instance, error) {
	p.log.add("launch %s", req.Name)
	p.launches = append(p.launches, req)
	if p.launchErr != nil {
		return nil, p.launchErr
	}
	p.next++
	return &provision.Instance{
		Handle:  fmt.Sprintf("h-%d", p.next),
		KeyPair: &keygen.KeyPair{Private: []byte(fmt.Sprintf("priv-%d", p.next)), Public: []byte("pub")},
		KeyName: fmt.Sprintf("key-%d", p.next),
	}, nil
}

func (p *fakeProvisioner) Terminate(_ context.Context, region, handle, keyName string) error {
	p.log.add("terminate %s %s %s", region, handle, keyName)
	if p.onTerminate != nil {
		p.onTerminate()
	}
	return p.terminateErr
}

func (p *fakeProvisioner) Addresses(_ context.Context, _, handle string) ([]string, error) {
	if addr, ok := p.addresses[handle]; ok {
		return []string{addr}, nil
	}
	return nil, nil
}

// fakeResolver returns a fixed answer and counts calls.
type fakeResolver struct {
	log     *events
	address string
	err     error
	calls   int
}

func (r *fakeResolver) Resolve(_ context.Context, _, handle string) (string, error) {
	r.calls++
	r.log.add("resolve %s", handle)
	if r.err != nil {
		return "", r.err
	}
	return r.address, nil
}

type syncCall struct {
	template string
	address  string
}

type fakeSyncer struct {
	log   *events
	calls []syncCall
	err   error
}

func (s *fakeSyncer) Sync(_ context.Context, template, address string) error {
	s.log.add("sync %s", address)
	s.calls = append(s.calls, syncCall{template, address})
	return s.err
}

type harness struct {
	events      *events
	store       *fakeStore
	provisioner *fakeProvisioner
	resolver    *fakeResolver
	syncer      *fakeSyncer
	manager     *Manager
}

func newHarness() *harness {
	ev := &events{}
	h := &harness{
		events:      ev,
		store:       newFakeStore(ev),
		provisioner: newFakeProvisioner(ev),
		resolver:    &fakeResolver{log: ev, address: "203.0.113.5"},
		syncer:      &fakeSyncer{log: ev},
	}
	h.manager = NewManager(h.store, h.provisioner, h.resolver, h.syncer)
	return h
}

var (
	errTimeout  = &address.TimeoutError{Attempts: 30}
	errProvider = errs.New(errs.ProviderError, "api unavailable")
	errSync     = errors.New("ddns rejected")
)
