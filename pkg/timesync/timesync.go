// Package timesync maintains an estimated clock offset against a remote API
// server, refreshed at most once per interval and guarded against concurrent
// refresh. Signed requests use the offset to produce timestamps the server
// will accept.
package timesync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"nakula/pkg/core"
)

// Coordinator holds the shared time-sync state for one client instance.
// At most one offset computation runs at a time; contenders never block and
// simply proceed with whatever offset currently exists.
type Coordinator struct {
	mu       sync.Mutex
	provider core.ServerTimeProvider
	interval time.Duration
	logger   zerolog.Logger

	// offsetNanos and lastSyncNanos are read freely outside the exclusive
	// section; lastSyncNanos == 0 means no sync has ever completed.
	offsetNanos   atomic.Int64
	lastSyncNanos atomic.Int64
}

// New creates a Coordinator fetching server time from provider and
// recalculating at most once per interval.
func New(provider core.ServerTimeProvider, interval time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		provider: provider,
		interval: interval,
		logger:   logger,
	}
}

// Offset returns the current estimated server-minus-local clock offset.
// Zero until the first successful sync.
func (c *Coordinator) Offset() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(c.offsetNanos.Load())
}

// Synced reports whether at least one sync has completed.
func (c *Coordinator) Synced() bool {
	return c != nil && c.lastSyncNanos.Load() != 0
}

// Now returns the current time corrected by the estimated offset.
func (c *Coordinator) Now() time.Time {
	return time.Now().Add(c.Offset())
}

// Sync recalculates the clock offset if the interval has elapsed.
//
// The exclusive section is entered with a non-blocking try-acquire: when
// another sync is already in flight the call returns success trivially and
// the caller proceeds with the existing offset. firstRequest marks the very
// first request a client ever makes; the first round trip on a fresh
// connection tends to have outsized latency, so the measurement is repeated
// once and only the second is used.
func (c *Coordinator) Sync(ctx context.Context, firstRequest bool) *core.Result[bool] {
	if c == nil || c.provider == nil {
		return core.Ok(true, nil)
	}

	if !c.mu.TryLock() {
		return core.Ok(true, nil)
	}
	defer c.mu.Unlock()

	if last := c.lastSyncNanos.Load(); last != 0 {
		if time.Since(time.Unix(0, last)) < c.interval {
			return core.Ok(true, nil)
		}
	}

	t0 := time.Now()
	serverTime, err := c.provider.ServerTime(ctx)
	if err != nil {
		return core.Fail[bool](core.NewTransportError(err), nil)
	}

	if firstRequest {
		t0 = time.Now()
		serverTime, err = c.provider.ServerTime(ctx)
		if err != nil {
			return core.Fail[bool](core.NewTransportError(err), nil)
		}
	}

	// NTP-style midpoint estimate: assume symmetric latency and compare the
	// server time against the middle of the local request window.
	roundTrip := time.Since(t0)
	offset := serverTime.Sub(t0.Add(roundTrip / 2))

	c.offsetNanos.Store(int64(offset))
	c.lastSyncNanos.Store(time.Now().UnixNano())

	c.logger.Debug().
		Dur("offset", offset).
		Dur("round_trip", roundTrip).
		Msg("time sync updated")

	return core.Ok(true, nil)
}
