package handlers

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/imamik/emc/internal/ddns"
	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/lifecycle"
)

// checkDNS is replaced in tests.
var checkDNS = ddns.Check

// DDNS provider kinds accepted by DDNSAdd.
const (
	ProviderCustom     = "custom"
	ProviderNamecheap  = "namecheap"
	ProviderCloudflare = "cloudflare"
)

// DDNSAddOptions describe a new DDNS entry.
type DDNSAddOptions struct {
	Provider string
	Domain   string
	// URL is the template for the custom provider.
	URL string
	// Password is the namecheap dynamic DNS password.
	Password string
	// Record is the cloudflare record name. Defaults to Domain.
	Record string
}

// DDNSAdd stores a DDNS template for a domain.
func DDNSAdd(ctx context.Context, g Globals, opts DDNSAddOptions) error {
	template, err := ddnsTemplate(opts)
	if err != nil {
		return err
	}

	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	if opts.Provider == ProviderCloudflare && s.cfg.CloudflareToken == "" {
		s.log.Warnw("CLOUDFLARE_API_TOKEN is not set; updates for this entry will fail until it is", "domain", opts.Domain)
	}
	if err := s.manager.AddDDNS(ctx, opts.Domain, template); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "added ddns entry %s\n", opts.Domain)
	return nil
}

func ddnsTemplate(opts DDNSAddOptions) (string, error) {
	switch opts.Provider {
	case ProviderCustom:
		if opts.URL == "" {
			return "", fmt.Errorf("a URL template is required")
		}
		return opts.URL, nil
	case ProviderNamecheap:
		return ddns.Namecheap(opts.Domain, opts.Password)
	case ProviderCloudflare:
		return ddns.Cloudflare(firstNonEmpty(opts.Record, opts.Domain)), nil
	default:
		return "", fmt.Errorf("unknown ddns provider %q", opts.Provider)
	}
}

// DDNSRemove deletes a DDNS entry.
func DDNSRemove(ctx context.Context, g Globals, domain string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	linked, err := s.manager.RemoveDDNS(ctx, domain)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed ddns entry %s\n", domain)
	if len(linked) > 0 {
		s.log.Warnw("servers still link to the removed entry", "domain", domain, "servers", linked)
	}
	return nil
}

// DDNSList prints every DDNS entry with its linked servers. Query strings
// are hidden because they usually hold credentials.
func DDNSList(ctx context.Context, g Globals) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	entries, err := s.manager.ListDDNS(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no ddns entries")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Domain, stripQuery(e.Template), orDash(strings.Join(e.Servers, ","))})
	}
	fmt.Fprintln(stdout, renderTable([]string{"DOMAIN", "TARGET", "SERVERS"}, rows))
	return nil
}

// DDNSLink binds a server to a DDNS entry and pushes its address.
func DDNSLink(ctx context.Context, g Globals, name, domain string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.manager.Link(ctx, name, domain)
	if err != nil {
		return err
	}
	s.reportWarnings(res)
	fmt.Fprintf(stdout, "linked %s to %s\n", name, domain)
	return nil
}

// DDNSUnlink clears the DDNS binding of a server.
func DDNSUnlink(ctx context.Context, g Globals, name string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.manager.Unlink(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "unlinked %s\n", name)
	return nil
}

// DDNSUpdate pushes the current address of a server to its DDNS entry.
func DDNSUpdate(ctx context.Context, g Globals, name string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.requireToken(); err != nil {
		return err
	}
	if err := s.manager.UpdateDDNS(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "updated ddns for %s\n", name)
	return nil
}

// DDNSCheck resolves a domain and compares the answer with the last known
// addresses of the servers linked to it.
func DDNSCheck(ctx context.Context, g Globals, domain, server string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	entries, err := s.manager.ListDDNS(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(entries, func(e lifecycle.DDNSEntry) bool { return e.Domain == domain })
	if idx < 0 {
		return errs.New(errs.NotFound, "ddns entry %q not found", domain)
	}

	answers, err := checkDNS(ctx, domain, firstNonEmpty(server, s.cfg.DDNS.DNSServer))
	if err != nil {
		return errs.Wrap(errs.DdnsSyncFailure, err, "failed to resolve %s", domain)
	}
	fmt.Fprintf(stdout, "%s resolves to %s\n", domain, orDash(strings.Join(answers, ", ")))

	var expected []string
	for _, name := range entries[idx].Servers {
		rec, err := s.manager.Info(ctx, name, false)
		if err != nil || rec.LastKnownAddress == nil {
			continue
		}
		expected = append(expected, *rec.LastKnownAddress)
		fmt.Fprintf(stdout, "  %s: %s\n", name, *rec.LastKnownAddress)
	}
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(answers, want) {
			return nil
		}
	}
	return errs.New(errs.DdnsSyncFailure, "%s does not point at any linked server", domain)
}
