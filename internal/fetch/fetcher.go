// Package fetch issues at most one provider call per distinct location per
// cycle and charges each real call against the daily budget.
package fetch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/budget"
	"github.com/wxtools/stationpoll/internal/wx"
)

// Cycle is the cycle-lifetime snapshot cache. The scheduler creates one per
// poll cycle, hands it to the fetcher and the normalizers, and drops it
// when the cycle ends. Failures are cached too, so a location that failed
// once is not retried within the cycle.
type Cycle struct {
	snapshots map[string]*wx.Snapshot
	failed    map[string]error
}

func NewCycle() *Cycle {
	return &Cycle{
		snapshots: make(map[string]*wx.Snapshot),
		failed:    make(map[string]error),
	}
}

// Snapshot returns the cached document for a location, if fetched.
func (c *Cycle) Snapshot(location string) (*wx.Snapshot, bool) {
	s, ok := c.snapshots[location]
	return s, ok
}

// Err returns the cached failure for a location, if its fetch failed.
func (c *Cycle) Err(location string) (error, bool) {
	err, ok := c.failed[location]
	return err, ok
}

// Locations returns the number of locations fetched this cycle.
func (c *Cycle) Locations() int {
	return len(c.snapshots)
}

// Source abstracts the provider client. Ready reports whether a fetch can
// be attempted at all; a configuration problem surfaces there, before any
// budget is charged.
type Source interface {
	Ready() error
	Fetch(ctx context.Context, location string) (*wx.Snapshot, error)
}

// Fetcher populates a Cycle from the provider, one blocking call per
// distinct location.
type Fetcher struct {
	source Source
	budget *budget.CallBudget
	log    zerolog.Logger
}

func New(source Source, b *budget.CallBudget, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		budget: b,
		log:    log.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch returns the location's snapshot for this cycle, issuing the network
// call only on the first request for the location. Budget refusal costs no
// network I/O. A failed location is failed for the whole cycle; other
// locations are unaffected.
func (f *Fetcher) Fetch(ctx context.Context, cycle *Cycle, location string) (*wx.Snapshot, error) {
	if snap, ok := cycle.Snapshot(location); ok {
		f.log.Debug().Str("location", location).Msg("location already fetched this cycle")
		return snap, nil
	}
	if err, ok := cycle.Err(location); ok {
		return nil, err
	}

	// A source that cannot make calls at all must not eat into the
	// daily budget.
	if err := f.source.Ready(); err != nil {
		cycle.failed[location] = err
		return nil, err
	}

	if !f.budget.TryConsume() {
		cycle.failed[location] = wx.ErrBudgetExceeded
		return nil, wx.ErrBudgetExceeded
	}

	snap, err := f.source.Fetch(ctx, location)
	if err != nil {
		f.log.Warn().Str("location", location).Err(err).Msg("unable to fetch weather data")
		cycle.failed[location] = err
		return nil, err
	}

	cycle.snapshots[location] = snap
	return snap, nil
}
