package linkedin

import (
	"math/rand"
	"time"
)

// RetryPolicy bounds the retry loop around every outbound call and controls
// the evasion delay between calls. A single policy is injected everywhere so
// no call path can retry without a ceiling.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget per call, including the first.
	MaxAttempts int

	// EvadeMin and EvadeMax bound the randomized human-like pause.
	EvadeMin time.Duration
	EvadeMax time.Duration

	// Sleep is swappable for tests; nil uses time.Sleep.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy mirrors the historical ceiling of 20 attempts with a
// pause of hundreds of milliseconds to a few seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 20,
		EvadeMin:    500 * time.Millisecond,
		EvadeMax:    3 * time.Second,
	}
}

// Evade sleeps a randomized interval to mimic human interaction pacing.
// Invoked after every call and after every failed attempt.
func (p RetryPolicy) Evade() {
	min, max := p.EvadeMin, p.EvadeMax
	if min <= 0 {
		min = 500 * time.Millisecond
	}
	if max <= min {
		max = min + time.Second
	}
	d := min + time.Duration(rand.Int63n(int64(max-min)))
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// attempts returns the effective attempt budget.
func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 20
	}
	return p.MaxAttempts
}
