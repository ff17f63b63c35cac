// Package recovery executes the delay prescribed by a classification
// decision. "Success" means the delay elapsed within the retry budget; the
// caller re-runs its own operation afterwards.
package recovery

import (
	"math/rand"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/classify"
)

// maxTrackedKeys bounds the attempt map. Identity keys are never retried
// after their budget is spent, so without a bound the map would grow for the
// lifetime of the process. Eviction is FIFO by first-seen order.
const maxTrackedKeys = 1024

// maxJitter is the upper bound of the random component added for the
// exponential backoff strategy.
const maxJitter = time.Second

// Executor tracks retry attempts per identity key and sleeps out the delay a
// decision prescribes. Not safe for concurrent use; the CLI issues handle
// calls sequentially.
type Executor struct {
	attempts map[string]int
	order    []string

	sleep  func(time.Duration)
	jitter func() time.Duration
}

// NewExecutor returns an executor with real sleeping and jitter.
func NewExecutor() *Executor {
	return &Executor{
		attempts: make(map[string]int),
		sleep:    time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxJitter)))
		},
	}
}

// WithSleep overrides the sleep function (tests only).
func (e *Executor) WithSleep(sleep func(time.Duration)) *Executor {
	e.sleep = sleep
	return e
}

// WithJitter overrides the jitter source (tests only).
func (e *Executor) WithJitter(jitter func() time.Duration) *Executor {
	e.jitter = jitter
	return e
}

// Attempt consumes one retry from the budget for the given identity key. It
// returns false without sleeping when the budget is exhausted; otherwise it
// records the attempt, sleeps out the strategy's delay, and returns true.
func (e *Executor) Attempt(key string, d classify.Decision) bool {
	attempts := e.attempts[key]
	if attempts >= d.MaxRetries {
		return false
	}

	e.record(key, attempts+1)
	e.sleep(e.delayFor(d, attempts))
	return true
}

// Attempts returns the attempt count recorded for a key.
func (e *Executor) Attempts(key string) int {
	return e.attempts[key]
}

// Reset forgets the attempt count for one key.
func (e *Executor) Reset(key string) {
	if _, ok := e.attempts[key]; !ok {
		return
	}
	delete(e.attempts, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Clear forgets all attempt counts.
func (e *Executor) Clear() {
	e.attempts = make(map[string]int)
	e.order = e.order[:0]
}

// delayFor computes the wait before the next retry. The exponent is the
// attempt count before this attempt, so the first retry waits the base delay.
func (e *Executor) delayFor(d classify.Decision, attempts int) time.Duration {
	switch d.Strategy {
	case classify.StrategyBackoff:
		return d.RetryDelay * (1 << attempts)
	case classify.StrategyExponential:
		return d.RetryDelay*(1<<attempts) + e.jitter()
	default:
		return d.RetryDelay
	}
}

func (e *Executor) record(key string, attempts int) {
	if _, seen := e.attempts[key]; !seen {
		if len(e.order) >= maxTrackedKeys {
			oldest := e.order[0]
			e.order = e.order[1:]
			delete(e.attempts, oldest)
		}
		e.order = append(e.order, key)
	}
	e.attempts[key] = attempts
}
