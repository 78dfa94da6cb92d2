package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"
)

// CloudflareScheme selects the Cloudflare API updater.
const CloudflareScheme = "cloudflare"

// recordTTL is Cloudflare's "automatic" TTL.
const recordTTL = 1

// RecordSetter replaces the address records of a DNS name.
type RecordSetter interface {
	SetRecord(ctx context.Context, name string, addr netip.Addr) error
}

// Cloudflare returns the template that points record at the server.
func Cloudflare(record string) string {
	return CloudflareScheme + "://" + strings.TrimSuffix(record, ".") + "?ip=" + Placeholder
}

func (s *Synchronizer) syncCloudflare(ctx context.Context, target string) error {
	if s.cloudflare == nil {
		return &SyncError{URL: target, Err: errors.New("cloudflare api token not configured")}
	}
	u, err := url.Parse(target)
	if err != nil {
		return &SyncError{URL: target, Err: err}
	}
	if u.Host == "" {
		return &SyncError{URL: target, Err: errors.New("cloudflare template has no record name")}
	}
	addr, err := netip.ParseAddr(u.Query().Get("ip"))
	if err != nil {
		return &SyncError{URL: target, Err: fmt.Errorf("invalid address: %w", err)}
	}
	if err := s.cloudflare.SetRecord(ctx, u.Host, addr); err != nil {
		return &SyncError{URL: target, Err: err}
	}
	return nil
}

// CloudflareUpdater manages records through the Cloudflare v4 API.
type CloudflareUpdater struct {
	api     *cloudflare.API
	log     *zap.SugaredLogger
	comment string
}

// NewCloudflareUpdater authenticates with an API token scoped to DNS edit.
func NewCloudflareUpdater(token string, log *zap.SugaredLogger) (*CloudflareUpdater, error) {
	api, err := cloudflare.NewWithAPIToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare api client: %w", err)
	}
	return &CloudflareUpdater{api: api, log: log, comment: "managed by emc"}, nil
}

// SetRecord makes addr the only A/AAAA record of name. Records already
// holding addr are kept.
func (c *CloudflareUpdater) SetRecord(ctx context.Context, name string, addr netip.Addr) error {
	zoneID, err := c.zoneFor(ctx, name)
	if err != nil {
		return err
	}
	zone := cloudflare.ZoneIdentifier(zoneID)

	records, _, err := c.api.ListDNSRecords(ctx, zone, cloudflare.ListDNSRecordsParams{Name: name})
	if err != nil {
		return fmt.Errorf("failed to list records of %s: %w", name, err)
	}

	found := false
	for _, r := range records {
		if r.Type != "A" && r.Type != "AAAA" {
			continue
		}
		if existing, err := netip.ParseAddr(r.Content); err == nil && existing == addr {
			found = true
			continue
		}
		if err := c.api.DeleteDNSRecord(ctx, zone, r.ID); err != nil {
			return fmt.Errorf("failed to delete record %s of %s: %w", r.ID, name, err)
		}
		c.log.Debugw("deleted dns record", "name", name, "content", r.Content)
	}
	if found {
		return nil
	}

	_, err = c.api.CreateDNSRecord(ctx, zone, cloudflare.CreateDNSRecordParams{
		Type:    recordType(addr),
		Name:    name,
		Content: addr.String(),
		ZoneID:  zoneID,
		TTL:     recordTTL,
		Comment: c.comment,
	})
	if err != nil {
		return fmt.Errorf("failed to create record for %s: %w", name, err)
	}
	c.log.Debugw("created dns record", "name", name, "content", addr.String())
	return nil
}

// zoneFor picks the longest zone name that is a suffix of name.
func (c *CloudflareUpdater) zoneFor(ctx context.Context, name string) (string, error) {
	zones, err := c.api.ListZones(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list zones: %w", err)
	}
	var names []string
	byName := make(map[string]string, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
		byName[z.Name] = z.ID
	}
	zone := longestSuffixZone(name, names)
	if zone == "" {
		return "", fmt.Errorf("no cloudflare zone matches %q", name)
	}
	return byName[zone], nil
}

func longestSuffixZone(name string, zones []string) string {
	best := ""
	for _, z := range zones {
		if (name == z || strings.HasSuffix(name, "."+z)) && len(z) > len(best) {
			best = z
		}
	}
	return best
}

func recordType(a netip.Addr) string {
	if a.Is4() || a.Is4In6() {
		return "A"
	}
	return "AAAA"
}
