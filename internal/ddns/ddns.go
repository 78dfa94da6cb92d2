package ddns

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/metrics"
)

const (
	// Placeholder is replaced by the server address in every template.
	Placeholder = "0.0.0.0"
	// Offline is pushed when a server goes away so names stop resolving
	// to a host that no longer exists.
	Offline = "127.0.0.1"
	// DefaultTimeout bounds a single update request.
	DefaultTimeout = 10 * time.Second
)

// Render replaces every occurrence of Placeholder in template with address.
// A template without the placeholder is returned unchanged.
func Render(template, address string) string {
	return strings.ReplaceAll(template, Placeholder, address)
}

// SyncError reports a failed update. Status is the HTTP status for a
// rejected request and zero for a transport failure.
type SyncError struct {
	URL    string
	Status int
	Err    error
}

func (e *SyncError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ddns update %s: unexpected status %d", redact(e.URL), e.Status)
	}
	return fmt.Sprintf("ddns update %s: %v", redact(e.URL), e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Kind implements the kinded interface consulted by errs.KindOf.
func (e *SyncError) Kind() errs.Kind { return errs.DdnsSyncFailure }

// redact drops the query string, which usually carries the provider password.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if u.RawQuery != "" {
		u.RawQuery = "..."
	}
	return u.String()
}

// Synchronizer performs DDNS updates.
type Synchronizer struct {
	http       *http.Client
	cloudflare RecordSetter
	log        *zap.SugaredLogger
	metrics    *metrics.Recorder
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithHTTPClient replaces the default pooled-connection-free client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Synchronizer) {
		s.http = c
	}
}

// WithCloudflare enables cloudflare:// templates.
func WithCloudflare(setter RecordSetter) Option {
	return func(s *Synchronizer) {
		s.cloudflare = setter
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Synchronizer) {
		s.log = log
	}
}

// WithMetrics counts updates on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 && s.http != nil {
			s.http.Timeout = d
		}
	}
}

// NewSynchronizer returns a Synchronizer using a fresh cleanhttp client.
func NewSynchronizer(opts ...Option) *Synchronizer {
	client := cleanhttp.DefaultClient()
	client.Timeout = DefaultTimeout
	s := &Synchronizer{
		http: client,
		log:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync renders template with address and issues the update. Failures are
// *SyncError.
func (s *Synchronizer) Sync(ctx context.Context, template, address string) error {
	target := Render(template, address)
	var err error
	if strings.HasPrefix(target, CloudflareScheme+"://") {
		err = s.syncCloudflare(ctx, target)
	} else {
		err = s.syncHTTP(ctx, target)
	}
	s.metrics.ObserveDDNSSync(err)
	if err != nil {
		return err
	}
	s.log.Debugw("ddns updated", "target", redact(target), "address", address)
	return nil
}

func (s *Synchronizer) syncHTTP(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &SyncError{URL: target, Err: err}
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return &SyncError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SyncError{URL: target, Status: resp.StatusCode}
	}
	return nil
}
