// Package address discovers the public address of a freshly launched
// server by polling the provider a bounded number of times.
package address

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/metrics"
)

const (
	// DefaultMaxAttempts bounds polling to roughly half a minute.
	DefaultMaxAttempts = 30
	// DefaultInterval is the pause between two queries.
	DefaultInterval = time.Second
)

// Lookup lists the public addresses of a server. Both provisioners implement it.
type Lookup interface {
	Addresses(ctx context.Context, region, handle string) ([]string, error)
}

// Policy bounds the polling loop.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPolicy returns 30 attempts one second apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval}
}

// TimeoutError is returned when no address appeared within the policy.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no public address after %d attempts", e.Attempts)
}

// Kind implements the kinded interface consulted by errs.KindOf.
func (e *TimeoutError) Kind() errs.Kind { return errs.AddressTimeout }

// SleepFunc pauses between attempts. It returns early with ctx's error.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Resolver polls a Lookup until a public address shows up.
type Resolver struct {
	lookup  Lookup
	policy  Policy
	sleep   SleepFunc
	log     *zap.SugaredLogger
	metrics *metrics.Recorder
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy overrides DefaultPolicy. Non-positive fields keep their defaults.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		if p.MaxAttempts > 0 {
			r.policy.MaxAttempts = p.MaxAttempts
		}
		if p.Interval > 0 {
			r.policy.Interval = p.Interval
		}
	}
}

// WithSleep replaces the timer-based sleep, mostly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(r *Resolver) {
		r.sleep = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// WithMetrics records attempt counts on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver returns a Resolver with the default policy.
func NewResolver(lookup Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		lookup: lookup,
		policy: DefaultPolicy(),
		sleep:  sleepContext,
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the effective polling policy.
func (r *Resolver) Policy() Policy { return r.policy }

// Resolve returns the first public address of the server. The first query
// is immediate; later ones follow the policy interval. A lookup failure
// stops polling and is returned as errs.ProviderError. Exhausting the
// attempts returns *TimeoutError.
func (r *Resolver) Resolve(ctx context.Context, region, handle string) (string, error) {
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		addrs, err := r.lookup.Addresses(ctx, region, handle)
		if err != nil {
			r.metrics.ObserveAddressAttempts(attempt)
			if errs.KindOf(err) == errs.Internal {
				err = errs.Wrap(errs.ProviderError, err, "query addresses of %s", handle)
			}
			return "", err
		}
		if len(addrs) > 0 && addrs[0] != "" {
			r.metrics.ObserveAddressAttempts(attempt)
			r.log.Debugw("address resolved", "handle", handle, "address", addrs[0], "attempts", attempt)
			return addrs[0], nil
		}

		if attempt == r.policy.MaxAttempts {
			break
		}
		r.log.Debugw("no public address yet", "handle", handle, "attempt", attempt, "max", r.policy.MaxAttempts)
		if err := r.sleep(ctx, r.policy.Interval); err != nil {
			return "", fmt.Errorf("address resolution interrupted after %d attempts: %w", attempt, err)
		}
	}

	r.metrics.ObserveAddressAttempts(r.policy.MaxAttempts)
	return "", &TimeoutError{Attempts: r.policy.MaxAttempts}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
