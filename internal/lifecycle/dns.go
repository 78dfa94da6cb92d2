package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/emc/internal/errs"
)

// Link binds name to the DDNS entry for domain and pushes the server
// address once. The binding is kept even if that push fails; the failure
// is returned as a warning.
func (m *Manager) Link(ctx context.Context, name, domain string) (res *Result, err error) {
	defer m.observe("link", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	rec, err := doc.Server(name)
	if err != nil {
		return nil, err
	}
	template, err := doc.DDNS(domain)
	if err != nil {
		return nil, err
	}

	rec.DDNS = ptr(domain)
	if err := m.save(doc); err != nil {
		return nil, err
	}

	res = &Result{Name: name, Record: rec}
	if err := m.ensureAddress(ctx, doc, rec); err != nil {
		res.warn(fmt.Errorf("ddns %s not updated: %w", domain, err))
		return res, nil
	}
	res.warn(m.dns.Sync(ctx, template, *rec.LastKnownAddress))
	return res, nil
}

// Unlink clears the DDNS binding of name. The DNS provider is not told.
func (m *Manager) Unlink(_ context.Context, name string) (res *Result, err error) {
	defer m.observe("unlink", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	rec, err := doc.Server(name)
	if err != nil {
		return nil, err
	}
	if rec.DDNS == nil {
		return nil, errs.New(errs.NotFound, "server %q has no ddns link", name)
	}
	rec.DDNS = nil
	if err := m.save(doc); err != nil {
		return nil, err
	}
	return &Result{Name: name, Record: rec}, nil
}

// UpdateDDNS pushes the current address of name to its linked entry.
// Unlike Link, a failed push is the returned error.
func (m *Manager) UpdateDDNS(ctx context.Context, name string) (err error) {
	defer m.observe("update_ddns", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return err
	}
	rec, err := doc.Server(name)
	if err != nil {
		return err
	}
	if rec.DDNS == nil {
		return errs.New(errs.NotFound, "server %q has no ddns link", name)
	}
	template, err := doc.DDNS(*rec.DDNS)
	if err != nil {
		return err
	}
	if err := m.ensureAddress(ctx, doc, rec); err != nil {
		return err
	}
	return m.dns.Sync(ctx, template, *rec.LastKnownAddress)
}

// AddDDNS registers a URL template for domain. The template is stored as
// given; one without the 0.0.0.0 placeholder is requested unchanged.
func (m *Manager) AddDDNS(_ context.Context, domain, template string) (err error) {
	defer m.observe("add_ddns", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return err
	}
	if err := doc.AddDDNS(domain, template); err != nil {
		return err
	}
	return m.save(doc)
}

// RemoveDDNS deletes the entry for domain and returns the servers that
// were still linked to it. Their bindings are left in place.
func (m *Manager) RemoveDDNS(_ context.Context, domain string) (linked []string, err error) {
	defer m.observe("remove_ddns", time.Now(), &err)

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	if err := doc.RemoveDDNS(domain); err != nil {
		return nil, err
	}
	if err := m.save(doc); err != nil {
		return nil, err
	}
	return doc.ServersLinkedTo(domain), nil
}

// ListDDNS returns all entries sorted by domain.
func (m *Manager) ListDDNS(_ context.Context) ([]DDNSEntry, error) {
	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	out := make([]DDNSEntry, 0, len(doc.DDNSEntries))
	for _, domain := range doc.Domains() {
		out = append(out, DDNSEntry{
			Domain:   domain,
			Template: doc.DDNSEntries[domain],
			Servers:  doc.ServersLinkedTo(domain),
		})
	}
	return out, nil
}
