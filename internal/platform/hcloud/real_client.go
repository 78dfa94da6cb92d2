package hcloud

import (
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"go.uber.org/zap"

	"github.com/imamik/emc/internal/config"
	"github.com/imamik/emc/internal/metrics"
)

// RealClient implements Client using the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
	log      *zap.SugaredLogger
	metrics  *metrics.Recorder
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithLogger sets the logger used for retries and slow waits.
func WithLogger(log *zap.SugaredLogger) ClientOption {
	return func(c *RealClient) {
		c.log = log
	}
}

// WithMetrics records API call counts and latency.
func WithMetrics(m *metrics.Recorder) ClientOption {
	return func(c *RealClient) {
		c.metrics = m
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:   hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("emc", "")),
		timeouts: config.LoadTimeouts(),
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client for advanced operations.
func (c *RealClient) HCloudClient() *hcloud.Client {
	return c.client
}

// observe records one API call; use as `defer c.observe("op", time.Now(), &err)`.
func (c *RealClient) observe(operation string, started time.Time, err *error) {
	c.metrics.ObserveHCloudCall(operation, time.Since(started), *err)
	if *err != nil {
		c.log.Debugw("hcloud call failed", "operation", operation, "error", *err)
	}
}
