// Package budget tracks daily API call consumption against a configured
// ceiling. The provider's base plan allows a fixed number of calls per day;
// once the ceiling is reached all further fetches are refused until the
// local calendar date advances.
package budget

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CallBudget is process-lifetime state, restored from and persisted to the
// host's preference storage across restarts. The scheduler mutates it from
// inside the cycle lock; the HTTP surface reads it through Snapshot, so the
// counters are guarded here.
type CallBudget struct {
	mu             sync.Mutex
	callsMadeToday int
	callsMax       int
	day            string // local calendar date, YYYY-MM-DD
	limitReached   bool

	log zerolog.Logger
}

// Snapshot is a point-in-time copy of the counters, safe to hold outside
// the budget's lock.
type Snapshot struct {
	CallsMadeToday int
	CallsMax       int
	Day            string
	LimitReached   bool
}

func New(callsMax int, log zerolog.Logger) *CallBudget {
	return &CallBudget{
		callsMax: callsMax,
		log:      log.With().Str("component", "budget").Logger(),
	}
}

// Restore rehydrates counters persisted by a prior run.
func (b *CallBudget) Restore(callsMade int, day string, limitReached bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.callsMadeToday = callsMade
	b.day = day
	b.limitReached = limitReached
}

// TryConsume charges one call against the budget. It returns false, and
// latches the limit, once the ceiling is met; RollIfNewDay is the only way
// to reset it.
func (b *CallBudget) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.callsMadeToday >= b.callsMax {
		if !b.limitReached {
			b.log.Info().Int("calls_max", b.callsMax).Msg("daily call limit reached, refusing fetches until tomorrow")
		}
		b.limitReached = true
		return false
	}

	b.callsMadeToday++
	b.log.Debug().Int("calls_left", b.callsMax-b.callsMadeToday).Msg("api call consumed")
	return true
}

// RollIfNewDay resets the counters when the local calendar date has
// advanced past the stored day. It must run before any consumption check
// each cycle.
func (b *CallBudget) RollIfNewDay(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	today := now.Format("2006-01-02")

	if b.day == "" {
		b.day = today
		return
	}

	if today > b.day {
		b.callsMadeToday = 0
		b.limitReached = false
		b.day = today
		b.log.Debug().Str("day", today).Msg("new day, call counter reset")
	}
}

// LimitReached reports whether the ceiling has been hit today.
func (b *CallBudget) LimitReached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limitReached
}

// Snapshot returns a consistent copy of the counters.
func (b *CallBudget) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		CallsMadeToday: b.callsMadeToday,
		CallsMax:       b.callsMax,
		Day:            b.day,
		LimitReached:   b.limitReached,
	}
}
