package ratelimit

import (
	"context"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces bar delivery during replay
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a limiter releasing perSecond events with the given burst.
// A non-positive or infinite rate never blocks.
func NewLimiter(name string, perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(toLimit(perSecond), burst),
		name:    name,
	}
}

// Unlimited creates a limiter that never blocks
func Unlimited(name string) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Inf, 1),
		name:    name,
	}
}

func toLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 || math.IsInf(perSecond, 1) {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

// Wait blocks until a token is available or context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SetRate changes the pace starting now
func (l *Limiter) SetRate(perSecond float64) {
	l.limiter.SetLimitAt(time.Now(), toLimit(perSecond))
}

// Rate returns the current pace in events per second
func (l *Limiter) Rate() float64 {
	return float64(l.limiter.Limit())
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}
