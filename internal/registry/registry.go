// Package registry persists the servers and DDNS entries emc knows about.
//
// The whole document is read, changed in memory and written back on every
// operation. There is no locking: two emc processes working at the same
// time can overwrite each other's changes.
package registry

import (
	"maps"
	"slices"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/util/keygen"
)

// Version is written into new documents.
const Version = "1"

// ServerRecord is one server tracked under an operator-chosen name.
type ServerRecord struct {
	Region         string `json:"region"`
	InstanceHandle string `json:"instance_handle"`
	// KeyPair is the only credential that reaches the server.
	KeyPair keygen.KeyPair `json:"key_pair"`
	KeyName string         `json:"key_name"`
	// DDNS is the domain of the linked DDNS entry, if any.
	DDNS *string `json:"ddns"`
	// LastKnownAddress caches the last resolved address. It may be stale.
	LastKnownAddress *string `json:"last_known_address"`
}

// Document is the full persisted state.
type Document struct {
	Version     string                   `json:"version"`
	Servers     map[string]*ServerRecord `json:"servers"`
	DDNSEntries map[string]string        `json:"ddns"`
}

// New returns an empty document of the current version.
func New() *Document {
	return &Document{
		Version:     Version,
		Servers:     map[string]*ServerRecord{},
		DDNSEntries: map[string]string{},
	}
}

// normalize fills the maps a hand-edited or older file may lack.
func (d *Document) normalize() {
	if d.Version == "" {
		d.Version = Version
	}
	if d.Servers == nil {
		d.Servers = map[string]*ServerRecord{}
	}
	if d.DDNSEntries == nil {
		d.DDNSEntries = map[string]string{}
	}
	for name, rec := range d.Servers {
		if rec == nil {
			delete(d.Servers, name)
		}
	}
}

// Server returns the record stored under name.
func (d *Document) Server(name string) (*ServerRecord, error) {
	rec, ok := d.Servers[name]
	if !ok {
		return nil, errs.New(errs.NotFound, "server %q not found", name)
	}
	return rec, nil
}

// AddServer stores rec under name. An existing name is left untouched.
func (d *Document) AddServer(name string, rec *ServerRecord) error {
	if _, ok := d.Servers[name]; ok {
		return errs.New(errs.AlreadyExists, "server %q already exists", name)
	}
	d.Servers[name] = rec
	return nil
}

// RemoveServer deletes name and returns the record it held.
func (d *Document) RemoveServer(name string) (*ServerRecord, error) {
	rec, err := d.Server(name)
	if err != nil {
		return nil, err
	}
	delete(d.Servers, name)
	return rec, nil
}

// DDNS returns the URL template registered for domain.
func (d *Document) DDNS(domain string) (string, error) {
	template, ok := d.DDNSEntries[domain]
	if !ok {
		return "", errs.New(errs.NotFound, "ddns entry %q not found", domain)
	}
	return template, nil
}

// AddDDNS registers template for domain.
func (d *Document) AddDDNS(domain, template string) error {
	if _, ok := d.DDNSEntries[domain]; ok {
		return errs.New(errs.AlreadyExists, "ddns entry %q already exists", domain)
	}
	d.DDNSEntries[domain] = template
	return nil
}

// RemoveDDNS deletes the entry for domain. Servers linked to it keep their
// binding; syncing them then fails with NotFound.
func (d *Document) RemoveDDNS(domain string) error {
	if _, ok := d.DDNSEntries[domain]; !ok {
		return errs.New(errs.NotFound, "ddns entry %q not found", domain)
	}
	delete(d.DDNSEntries, domain)
	return nil
}

// Names returns server names in sorted order.
func (d *Document) Names() []string {
	return slices.Sorted(maps.Keys(d.Servers))
}

// Domains returns DDNS domains in sorted order.
func (d *Document) Domains() []string {
	return slices.Sorted(maps.Keys(d.DDNSEntries))
}

// ServersLinkedTo returns the sorted names of servers bound to domain.
func (d *Document) ServersLinkedTo(domain string) []string {
	var out []string
	for name, rec := range d.Servers {
		if rec.DDNS != nil && *rec.DDNS == domain {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
