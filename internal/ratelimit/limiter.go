// Package ratelimit provides the default admission gate for the request
// pipeline, built on token buckets with per-endpoint budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"nakula/pkg/core"
)

// Gate is a core.RateLimiter backed by token buckets. A global bucket covers
// all traffic; per-endpoint buckets are created on demand when endpoint
// budgets are configured.
type Gate struct {
	global   *rate.Limiter
	buckets  sync.Map
	requests int
	period   time.Duration
	metrics  *Metrics
}

// Metrics tracks statistics about gate usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
	bucketCount     atomic.Int32
}

// New creates a Gate admitting the given number of weight units per period.
func New(requests int, period time.Duration) *Gate {
	rps := float64(requests) / period.Seconds()
	return &Gate{
		global:   rate.NewLimiter(rate.Limit(rps), requests),
		requests: requests,
		period:   period,
		metrics:  &Metrics{},
	}
}

// Admit implements core.RateLimiter. The admission weight is drawn from the
// global bucket and, when an endpoint budget exists, from the endpoint bucket
// as well. BehaviorFail rejects immediately on an exhausted budget;
// BehaviorWait blocks until budget is available or the context fires.
func (g *Gate) Admit(ctx context.Context, admission core.Admission) error {
	g.metrics.totalRequests.Add(1)

	weight := admission.Weight
	if weight < 1 {
		weight = 1
	}

	limiters := []*rate.Limiter{g.global}
	if v, ok := g.buckets.Load(bucketKey(admission)); ok {
		limiters = append(limiters, v.(*rate.Limiter))
	}

	for _, limiter := range limiters {
		if err := g.admitOne(ctx, limiter, admission.Behavior, weight); err != nil {
			g.metrics.deniedRequests.Add(1)
			return err
		}
	}

	g.metrics.allowedRequests.Add(1)
	return nil
}

func (g *Gate) admitOne(ctx context.Context, limiter *rate.Limiter, behavior core.RateLimitBehavior, weight int) error {
	switch behavior {
	case core.BehaviorWait:
		if err := limiter.WaitN(ctx, weight); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s", core.ErrRateLimitExceeded, err)
		}
		return nil
	default:
		if !limiter.AllowN(time.Now(), weight) {
			return core.ErrRateLimitExceeded
		}
		return nil
	}
}

// SetEndpointLimit configures a dedicated budget for one endpoint, keyed by
// method and path. The bucket is created if it does not exist.
func (g *Gate) SetEndpointLimit(method, path string, requests int, period time.Duration) {
	key := method + " " + path
	rps := float64(requests) / period.Seconds()
	if v, ok := g.buckets.Load(key); ok {
		v.(*rate.Limiter).SetLimit(rate.Limit(rps))
		return
	}
	if _, loaded := g.buckets.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), requests)); !loaded {
		g.metrics.bucketCount.Add(1)
	}
}

// SetLimit updates the global budget.
func (g *Gate) SetLimit(requests int, period time.Duration) {
	g.requests = requests
	g.period = period
	rps := float64(requests) / period.Seconds()
	g.global.SetLimit(rate.Limit(rps))
}

func bucketKey(admission core.Admission) string {
	return admission.Method + " " + admission.Path
}

// Metrics returns a snapshot of the current gate statistics.
func (g *Gate) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   g.metrics.totalRequests.Load(),
		AllowedRequests: g.metrics.allowedRequests.Load(),
		DeniedRequests:  g.metrics.deniedRequests.Load(),
		BucketCount:     g.metrics.bucketCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of gate statistics.
type MetricsSnapshot struct {
	// TotalRequests is the total number of admission checks performed.
	TotalRequests int64
	// AllowedRequests is the number of requests that were admitted.
	AllowedRequests int64
	// DeniedRequests is the number of requests that were rejected.
	DeniedRequests int64
	// BucketCount is the number of endpoint buckets in use.
	BucketCount int32
}
