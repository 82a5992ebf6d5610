// Package ratelimit sizes the token bucket a job's rate-control fields
// imply. It only computes sizing and delay; the actual throttling decision
// during I/O submission belongs to the out-of-scope I/O loop.
package ratelimit

import "time"

// Bucket is a byte-denominated token bucket. A zero-value Bucket (Capacity
// 0) never delays — Take always returns 0 — matching an unrestricted job.
type Bucket struct {
	Capacity uint64
	Tokens   uint64
	// RatePerSec is the steady-state refill rate in bytes/sec.
	RatePerSec uint64

	last time.Time
}

// New builds a Bucket sized from a target bandwidth (bytes/sec) and an
// averaging window: the bucket holds enough tokens to absorb one window's
// worth of burst before the rate limit engages, and starts full so the first
// window of I/O is never throttled.
func New(rateBytesPerSec uint64, window time.Duration) *Bucket {
	if rateBytesPerSec == 0 {
		return &Bucket{}
	}
	if window <= 0 {
		window = time.Second
	}
	capacity := uint64(float64(rateBytesPerSec) * window.Seconds())
	if capacity == 0 {
		capacity = rateBytesPerSec
	}
	return &Bucket{
		Capacity:   capacity,
		Tokens:     capacity,
		RatePerSec: rateBytesPerSec,
		last:       time.Time{},
	}
}

// Take accounts for n bytes of I/O and returns how long the caller should
// sleep before issuing more, given the configured rate. It is a pure sizing
// function: it does not sleep itself and has no side effects beyond the
// bucket's own token count.
func (b *Bucket) Take(n uint64, now time.Time) time.Duration {
	if b == nil || b.RatePerSec == 0 {
		return 0
	}
	if !b.last.IsZero() {
		elapsed := now.Sub(b.last)
		refill := uint64(elapsed.Seconds() * float64(b.RatePerSec))
		b.Tokens += refill
		if b.Tokens > b.Capacity {
			b.Tokens = b.Capacity
		}
	}
	b.last = now

	if n <= b.Tokens {
		b.Tokens -= n
		return 0
	}

	deficit := n - b.Tokens
	b.Tokens = 0
	seconds := float64(deficit) / float64(b.RatePerSec)
	return time.Duration(seconds * float64(time.Second))
}
