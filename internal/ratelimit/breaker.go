package ratelimit

import (
	"sync"
	"time"
)

// State is the breaker state guarding the Redis limiter.
type State int

const (
	// Closed sends every check to Redis.
	Closed State = iota
	// Open skips Redis until the cool-off period expires.
	Open
	// HalfOpen lets a single trial request through to test Redis again.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker opens after a failure ratio is reached over at least minRequests
// limiter calls. While open the middleware admits requests without asking Redis.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	minRequests  int
	failureRatio float64
	openedAt     time.Time
	openFor      time.Duration
	probing      bool

	// Now overrides the clock in tests.
	Now func() time.Time
	// OnTransition is invoked outside the lock after every state change.
	OnTransition func(from, to State)
}

// NewBreaker constructs a Breaker. Zero values pick 5 requests, a 0.5 ratio and 30s.
func NewBreaker(minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	if minRequests <= 0 {
		minRequests = 5
	}
	if failureRatio <= 0 || failureRatio > 1 {
		failureRatio = 0.5
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{minRequests: minRequests, failureRatio: failureRatio, openFor: openFor}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether the limiter should be consulted.
func (b *Breaker) Allow() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	var from State
	changed := false
	allowed := true
	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.openFor {
			allowed = false
			break
		}
		from, changed = b.setLocked(HalfOpen)
		b.probing = true
	case HalfOpen:
		if b.probing {
			allowed = false
		} else {
			b.probing = true
		}
	}
	b.mu.Unlock()
	if changed {
		b.notify(from, HalfOpen)
	}
	return allowed
}

// Report records the outcome of a limiter call admitted by Allow.
func (b *Breaker) Report(success bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	var (
		from, to State
		changed  bool
	)
	switch b.state {
	case Open:
	case HalfOpen:
		b.probing = false
		to = Open
		if success {
			to = Closed
		}
		from, changed = b.setLocked(to)
	default:
		if success {
			b.successes++
		} else {
			b.failures++
		}
		total := b.failures + b.successes
		if total >= b.minRequests {
			if float64(b.failures)/float64(total) >= b.failureRatio {
				to = Open
				from, changed = b.setLocked(Open)
			} else if total > b.minRequests*2 {
				b.successes /= 2
				b.failures /= 2
			}
		}
	}
	b.mu.Unlock()
	if changed {
		b.notify(from, to)
	}
}

func (b *Breaker) setLocked(next State) (State, bool) {
	prev := b.state
	if prev == next {
		return prev, false
	}
	b.state = next
	b.failures, b.successes = 0, 0
	if next == Open {
		b.openedAt = b.now()
	}
	return prev, true
}

func (b *Breaker) notify(from, to State) {
	if b.OnTransition != nil {
		b.OnTransition(from, to)
	}
}

func (b *Breaker) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
