package handlers

import (
	"context"
	"io"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/imamik/emc/internal/address"
	"github.com/imamik/emc/internal/config"
	"github.com/imamik/emc/internal/ddns"
	"github.com/imamik/emc/internal/lifecycle"
	"github.com/imamik/emc/internal/logging"
	"github.com/imamik/emc/internal/metrics"
	"github.com/imamik/emc/internal/platform/hcloud"
	"github.com/imamik/emc/internal/provision"
	"github.com/imamik/emc/internal/registry"
)

// Version is embedded in SSH key names and the default MOTD.
var Version = "dev"

// Globals are the persistent root flags.
type Globals struct {
	ConfigPath  string
	DryRun      bool
	Verbose     bool
	MetricsFile string
}

// Factory function variables - can be replaced in tests.
var (
	defaultPaths = config.DefaultPaths
	loadConfig   = config.Load

	newLogger = func(paths config.Paths, verbose bool) (*zap.SugaredLogger, func()) {
		return logging.New(logging.Options{File: paths.Log, Verbose: verbose})
	}

	newHCloudFactory = func(cfg *config.Config, log *zap.SugaredLogger, rec *metrics.Recorder) provision.ClientFactory {
		return hcloud.NewFactory(cfg.HCloudToken,
			hcloud.WithTimeouts(config.LoadTimeouts()),
			hcloud.WithLogger(log),
			hcloud.WithMetrics(rec),
		)
	}

	newCloudflare = func(token string, log *zap.SugaredLogger) (ddns.RecordSetter, error) {
		return ddns.NewCloudflareUpdater(token, log)
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// session bundles everything one command invocation needs.
type session struct {
	globals Globals
	cfg     *config.Config
	paths   config.Paths
	log     *zap.SugaredLogger
	metrics *metrics.Recorder
	store   registry.Store
	clients provision.ClientFactory
	manager *lifecycle.Manager

	flush func()
}

// open loads configuration and wires the lifecycle manager. A dry run
// swaps in the simulated provisioner and an in-memory copy of the registry
// so nothing outside the process changes.
func open(g Globals) (*session, error) {
	paths := defaultPaths()
	cfgPath := g.ConfigPath
	if cfgPath == "" {
		cfgPath = paths.Config
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	log, flush := newLogger(paths, g.Verbose)
	rec := metrics.New()
	s := &session{globals: g, cfg: cfg, paths: paths, log: log, metrics: rec, flush: flush}

	fileStore := registry.NewFileStore(paths.Registry)
	var prov provision.Provisioner
	var dns lifecycle.DNSSyncer
	if g.DryRun {
		doc, err := fileStore.Read()
		if err != nil {
			flush()
			return nil, err
		}
		mem, err := registry.NewMemoryStore(doc)
		if err != nil {
			flush()
			return nil, err
		}
		s.store = mem
		prov = provision.NewSimulated(Version, log)
		dns = dryRunSyncer{log: log}
		log.Infow("dry run: no cloud resources, DNS records or registry entries will change")
	} else {
		s.store = fileStore
		s.clients = newHCloudFactory(cfg, log, rec)
		prov = provision.NewHCloud(s.clients, Version, log)
		dns = s.synchronizer()
	}

	resolver := address.NewResolver(prov,
		address.WithPolicy(address.Policy{MaxAttempts: cfg.Address.Attempts, Interval: cfg.Address.Interval}),
		address.WithLogger(log),
		address.WithMetrics(rec),
	)
	s.manager = lifecycle.NewManager(s.store, prov, resolver, dns,
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(rec),
	)
	return s, nil
}

func (s *session) synchronizer() *ddns.Synchronizer {
	opts := []ddns.Option{
		ddns.WithTimeout(s.cfg.DDNS.Timeout),
		ddns.WithLogger(s.log),
		ddns.WithMetrics(s.metrics),
	}
	if s.cfg.CloudflareToken != "" {
		cf, err := newCloudflare(s.cfg.CloudflareToken, s.log)
		if err != nil {
			s.log.Warnw("cloudflare updater unavailable", "error", err)
		} else {
			opts = append(opts, ddns.WithCloudflare(cf))
		}
	}
	return ddns.NewSynchronizer(opts...)
}

// requireToken fails early when a real provider call is about to be made
// without credentials.
func (s *session) requireToken() error {
	if s.globals.DryRun {
		return nil
	}
	return s.cfg.RequireHCloudToken()
}

// close writes the metrics textfile, if requested, and flushes the logger.
func (s *session) close() {
	if s.globals.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(s.globals.MetricsFile); err != nil {
			s.log.Warnw("failed to write metrics", "path", s.globals.MetricsFile, "error", err)
		}
	}
	s.flush()
}

// reportWarnings logs problems an operation survived.
func (s *session) reportWarnings(res *lifecycle.Result) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		s.log.Warnw("completed with warning", "server", res.Name, "error", w)
	}
}

// dryRunSyncer logs the DNS update a real run would send.
type dryRunSyncer struct {
	log *zap.SugaredLogger
}

func (d dryRunSyncer) Sync(_ context.Context, template, addr string) error {
	d.log.Infow("[dry-run] would update DNS", "target", stripQuery(ddns.Render(template, addr)), "address", addr)
	return nil
}

// stripQuery drops the query string of a DDNS URL, which usually holds
// the provider password.
func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery != "" {
		u.RawQuery = ""
		u.ForceQuery = true
	}
	return u.String()
}
