// Package circuit provides a minimal circuit breaker for optional
// dependencies. Callers record outcomes; the breaker decides when to stop
// calling the primary and when to let probe traffic through again.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker position.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Change reports a state transition caused by a recorded outcome, so callers
// can log open/close events exactly once.
type Change struct {
	Opened bool
	Closed bool
}

// Breaker opens after consecutive failures and closes again after
// consecutive successes. All methods are safe for concurrent use.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failureThreshold int
	successThreshold int
	probeInterval    time.Duration
	failures         int
	successes        int
	lastProbe        time.Time
}

type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		b.failureThreshold = n
	}
}

// WithSuccessThreshold sets how many consecutive successes close it again.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		b.successThreshold = n
	}
}

// WithProbeInterval sets how often Allow lets a request through while open.
func WithProbeInterval(d time.Duration) Option {
	return func(b *Breaker) {
		b.probeInterval = d
	}
}

// New constructs a closed breaker.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 2,
		probeInterval:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether the caller should attempt the primary. While open it
// admits one probe per probe interval so the breaker can observe recovery.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		return true
	}
	if time.Since(b.lastProbe) >= b.probeInterval {
		b.lastProbe = time.Now()
		return true
	}
	return false
}

// RecordFailure registers a failed call. It returns whether the caller
// should use its fallback, plus any state transition.
func (b *Breaker) RecordFailure() (bool, Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		b.successes = 0
		return true, Change{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		b.successes = 0
		b.lastProbe = time.Now()
		return true, Change{Opened: true}
	}
	return false, Change{}
}

// RecordSuccess registers a successful call. It returns whether the caller
// can trust the primary again, plus any state transition.
func (b *Breaker) RecordSuccess() (bool, Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		b.failures = 0
		return true, Change{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.failures = 0
		b.successes = 0
		return true, Change{Closed: true}
	}
	return false, Change{}
}

// Reset forces the breaker closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
