package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/emc/internal/ddns"
	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/provision"
	"github.com/imamik/emc/internal/registry"
	"github.com/imamik/emc/internal/util/naming"
)

// CheckCreate reports whether Create would accept name and domain, without
// touching the provider or the registry.
func (m *Manager) CheckCreate(_ context.Context, name, domain string) error {
	doc, err := m.load()
	if err != nil {
		return err
	}
	_, err = checkCreate(doc, name, domain)
	return err
}

// checkCreate validates a new server name against the registry and returns
// the template of domain, if one is given.
func checkCreate(doc *registry.Document, name, domain string) (string, error) {
	if err := naming.ValidateName(name); err != nil {
		return "", errs.Wrap(errs.Internal, err, "invalid server name")
	}
	if _, ok := doc.Servers[name]; ok {
		return "", errs.New(errs.AlreadyExists, "server %q already exists", name)
	}
	if domain == "" {
		return "", nil
	}
	return doc.DDNS(domain)
}

// Create launches a server and records it under req.Name.
//
// Name uniqueness and the DDNS domain are checked before anything is
// created. Once the provider has created the server, the record is saved
// regardless of what happens next. With a DDNS domain the address is then
// resolved and pushed; failures of either step end up in Result.Warnings.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (res *Result, err error) {
	defer m.observe("create", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	template, err := checkCreate(doc, req.Name, req.DDNSDomain)
	if err != nil {
		return nil, err
	}

	inst, err := m.provisioner.Launch(ctx, provision.LaunchRequest{
		Name:         req.Name,
		BootPayload:  req.BootPayload,
		Region:       req.Region,
		InstanceType: req.InstanceType,
		ImageID:      req.ImageID,
		Ports:        req.Ports,
		Labels:       req.Labels,
	})
	if err != nil {
		return nil, err
	}

	rec := &registry.ServerRecord{
		Region:         req.Region,
		InstanceHandle: inst.Handle,
		KeyPair:        *inst.KeyPair,
		KeyName:        inst.KeyName,
	}
	if req.DDNSDomain != "" {
		rec.DDNS = ptr(req.DDNSDomain)
	}
	if err := doc.AddServer(req.Name, rec); err != nil {
		return nil, err
	}
	if err := m.save(doc); err != nil {
		m.log.Errorw("server was created but could not be recorded", "name", req.Name, "handle", inst.Handle, "region", req.Region)
		return nil, fmt.Errorf("record server %q (handle %s): %w", req.Name, inst.Handle, err)
	}
	m.log.Infow("server recorded", "name", req.Name, "handle", inst.Handle)

	res = &Result{Name: req.Name, Record: rec}
	if template == "" {
		return res, nil
	}

	address, err := m.resolver.Resolve(ctx, rec.Region, rec.InstanceHandle)
	if err != nil {
		res.warn(fmt.Errorf("ddns %s not updated: %w", req.DDNSDomain, err))
		return res, nil
	}
	rec.LastKnownAddress = ptr(address)
	if err := m.save(doc); err != nil {
		res.warn(fmt.Errorf("cache address of %q: %w", req.Name, err))
	}
	res.warn(m.dns.Sync(ctx, template, address))
	return res, nil
}

// Terminate forgets the server and tears down its cloud resources.
//
// The record is removed and saved first. The provider teardown follows,
// and a linked DDNS entry is pointed at the loopback address. A teardown
// failure is returned after the DDNS step; a DDNS failure is a warning.
func (m *Manager) Terminate(ctx context.Context, name string) (res *Result, err error) {
	defer m.observe("terminate", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	rec, err := doc.RemoveServer(name)
	if err != nil {
		return nil, err
	}
	if err := m.save(doc); err != nil {
		return nil, err
	}
	m.log.Infow("server removed from registry", "name", name, "handle", rec.InstanceHandle)

	res = &Result{Name: name, Record: rec}
	teardownErr := m.provisioner.Terminate(ctx, rec.Region, rec.InstanceHandle, rec.KeyName)
	if teardownErr != nil {
		m.log.Warnw("provider teardown failed", "name", name, "handle", rec.InstanceHandle, "error", teardownErr)
	}

	if rec.DDNS != nil {
		template, tmplErr := doc.DDNS(*rec.DDNS)
		if tmplErr != nil {
			res.warn(tmplErr)
		} else if syncErr := m.dns.Sync(ctx, template, ddns.Offline); syncErr != nil {
			m.log.Warnw("failed to mark ddns entry offline", "domain", *rec.DDNS, "error", syncErr)
			res.warn(syncErr)
		}
	}

	if teardownErr != nil {
		return res, teardownErr
	}
	return res, nil
}

// Info returns the record for name. With refresh the address is resolved
// again and the result saved; a failed resolve leaves the registry as it was.
func (m *Manager) Info(ctx context.Context, name string, refresh bool) (rec *registry.ServerRecord, err error) {
	defer m.observe("info", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	rec, err = doc.Server(name)
	if err != nil {
		return nil, err
	}
	if !refresh {
		return rec, nil
	}
	if err := m.refreshAddress(ctx, doc, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EnsureAddress returns the cached address of name, resolving and saving
// it first when none is cached.
func (m *Manager) EnsureAddress(ctx context.Context, name string) (address string, rec *registry.ServerRecord, err error) {
	defer m.observe("ensure_address", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return "", nil, err
	}
	rec, err = doc.Server(name)
	if err != nil {
		return "", nil, err
	}
	if err := m.ensureAddress(ctx, doc, rec); err != nil {
		return "", nil, err
	}
	return *rec.LastKnownAddress, rec, nil
}

// List returns all servers sorted by name.
func (m *Manager) List(_ context.Context) ([]Entry, error) {
	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	m.metrics.SetRegistrySize(len(doc.Servers), len(doc.DDNSEntries))
	out := make([]Entry, 0, len(doc.Servers))
	for _, name := range doc.Names() {
		out = append(out, Entry{Name: name, Record: doc.Servers[name]})
	}
	return out, nil
}

func (m *Manager) ensureAddress(ctx context.Context, doc *registry.Document, rec *registry.ServerRecord) error {
	if rec.LastKnownAddress != nil && *rec.LastKnownAddress != "" {
		return nil
	}
	return m.refreshAddress(ctx, doc, rec)
}

func (m *Manager) refreshAddress(ctx context.Context, doc *registry.Document, rec *registry.ServerRecord) error {
	address, err := m.resolver.Resolve(ctx, rec.Region, rec.InstanceHandle)
	if err != nil {
		return err
	}
	previous := rec.LastKnownAddress
	rec.LastKnownAddress = ptr(address)
	if err := m.save(doc); err != nil {
		rec.LastKnownAddress = previous
		return err
	}
	return nil
}
