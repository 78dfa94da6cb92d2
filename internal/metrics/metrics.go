// Package metrics records what a single emc invocation did.
//
// emc is a short-lived CLI, so nothing is served over HTTP. When the
// operator passes --metrics-file the registry is written once at exit in
// the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	hcloudAPICalls     *prometheus.CounterVec
	hcloudAPILatency   *prometheus.HistogramVec
	addressAttempts    prometheus.Histogram
	ddnsSyncTotal      *prometheus.CounterVec
	registryServers    prometheus.Gauge
	registryDDNSDomain prometheus.Gauge
}

// New creates a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "emc",
				Subsystem: "lifecycle",
				Name:      "operations_total",
				Help:      "Lifecycle operations by name and result",
			},
			[]string{"operation", "result"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "emc",
				Subsystem: "lifecycle",
				Name:      "operation_duration_seconds",
				Help:      "Duration of lifecycle operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
			},
			[]string{"operation"},
		),
		hcloudAPICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "emc",
				Subsystem: "hcloud",
				Name:      "api_calls_total",
				Help:      "Total number of Hetzner Cloud API calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		hcloudAPILatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "emc",
				Subsystem: "hcloud",
				Name:      "api_latency_seconds",
				Help:      "Latency of Hetzner Cloud API calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~25s
			},
			[]string{"operation"},
		),
		addressAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "emc",
			Subsystem: "address",
			Name:      "resolve_attempts",
			Help:      "Provider queries needed to find a public address",
			Buckets:   prometheus.LinearBuckets(1, 5, 7),
		}),
		ddnsSyncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "emc",
				Subsystem: "ddns",
				Name:      "sync_total",
				Help:      "Dynamic DNS update requests by result",
			},
			[]string{"result"},
		),
		registryServers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "emc",
			Subsystem: "registry",
			Name:      "servers",
			Help:      "Servers tracked in the registry after the operation",
		}),
		registryDDNSDomain: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "emc",
			Subsystem: "registry",
			Name:      "ddns_entries",
			Help:      "DDNS entries tracked in the registry after the operation",
		}),
	}

	r.registry.MustRegister(
		r.operationsTotal,
		r.operationDuration,
		r.hcloudAPICalls,
		r.hcloudAPILatency,
		r.addressAttempts,
		r.ddnsSyncTotal,
		r.registryServers,
		r.registryDDNSDomain,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveOperation records one lifecycle operation.
func (r *Recorder) ObserveOperation(operation string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.operationsTotal.WithLabelValues(operation, result(err)).Inc()
	r.operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveHCloudCall records a Hetzner Cloud API call.
func (r *Recorder) ObserveHCloudCall(operation string, latency time.Duration, err error) {
	if r == nil {
		return
	}
	r.hcloudAPICalls.WithLabelValues(operation, result(err)).Inc()
	r.hcloudAPILatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// ObserveAddressAttempts records how many queries a resolve needed.
func (r *Recorder) ObserveAddressAttempts(n int) {
	if r == nil {
		return
	}
	r.addressAttempts.Observe(float64(n))
}

// ObserveDDNSSync records one DDNS update.
func (r *Recorder) ObserveDDNSSync(err error) {
	if r == nil {
		return
	}
	r.ddnsSyncTotal.WithLabelValues(result(err)).Inc()
}

// SetRegistrySize records the registry size.
func (r *Recorder) SetRegistrySize(servers, ddnsEntries int) {
	if r == nil {
		return
	}
	r.registryServers.Set(float64(servers))
	r.registryDDNSDomain.Set(float64(ddnsEntries))
}

// WriteTextfile writes all metrics to path in the textfile collector format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
