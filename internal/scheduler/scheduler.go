// Package scheduler drives the poll cycle: decide when a cycle is due,
// fetch every distinct location once, run the category normalizers for each
// bound device, then evaluate triggers. One cycle is in flight at a time.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/budget"
	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/fetch"
	"github.com/wxtools/stationpoll/internal/normalize"
	"github.com/wxtools/stationpoll/internal/prefs"
	"github.com/wxtools/stationpoll/internal/trigger"
	"github.com/wxtools/stationpoll/internal/wx"
)

// Status is the scheduler's externally visible phase.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusDue        Status = "due"
	StatusFetching   Status = "fetching"
	StatusEvaluating Status = "evaluating"
)

// tickEvery is how often the due-condition is re-checked. Polling a short
// tick instead of sleeping the full interval lets an interval change or a
// forced refresh take effect promptly.
const tickEvery = 30 * time.Second

// BindingSource yields the current device bindings at the start of a cycle.
type BindingSource interface {
	Bindings() []device.Binding
}

// StaticBindings adapts a fixed binding list to BindingSource.
type StaticBindings []device.Binding

func (s StaticBindings) Bindings() []device.Binding { return s }

// Scheduler owns the shared mutable poll state. Budget, schedule and the
// per-cycle cache are only ever touched from inside the cycle lock.
type Scheduler struct {
	cron      *gocron.Scheduler
	fetcher   *fetch.Fetcher
	norm      *normalize.Normalizer
	budget    *budget.CallBudget
	bindings  BindingSource
	states    *device.StateStore
	evaluator *trigger.Evaluator
	prefs     *prefs.Store
	interval  time.Duration
	log       zerolog.Logger
	now       func() time.Time

	cycleMu sync.Mutex // held for the whole of one cycle

	mu         sync.RWMutex
	status     Status
	lastPollAt time.Time
	nextPollAt time.Time
	digests    map[string]string
}

func New(interval time.Duration, fetcher *fetch.Fetcher, norm *normalize.Normalizer, b *budget.CallBudget,
	bindings BindingSource, states *device.StateStore, evaluator *trigger.Evaluator, store *prefs.Store,
	log zerolog.Logger) *Scheduler {

	return &Scheduler{
		cron:      gocron.NewScheduler(time.Local),
		fetcher:   fetcher,
		norm:      norm,
		budget:    b,
		bindings:  bindings,
		states:    states,
		evaluator: evaluator,
		prefs:     store,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
		status:    StatusIdle,
		digests:   make(map[string]string),
	}
}

// Start restores persisted scheduling state and begins the tick loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.prefs != nil {
		sched, err := s.prefs.LoadSchedule(ctx)
		if err != nil {
			return err
		}
		s.budget.Restore(sched.CallsMadeToday, sched.CallDay, sched.LimitReached)
		s.mu.Lock()
		s.lastPollAt = sched.LastPollAt
		s.nextPollAt = sched.NextPollAt
		s.mu.Unlock()
	}

	if _, err := s.cron.Every(int(tickEvery.Seconds())).Seconds().Do(func() { s.tick(ctx) }); err != nil {
		return err
	}
	s.cron.StartAsync()
	s.log.Info().Dur("interval", s.interval).Msg("poll scheduler started")
	return nil
}

// Stop halts the tick loop and persists the schedule.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.persist(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	s.mu.RLock()
	due := !now.Before(s.nextPollAt)
	s.mu.RUnlock()

	if !due {
		return
	}
	s.setStatus(StatusDue)
	s.runCycle(ctx)
}

// RefreshNow forces a cycle without waiting for the schedule. The daily
// budget is still consulted, and a cycle already in flight wins.
func (s *Scheduler) RefreshNow(ctx context.Context) {
	s.log.Info().Msg("manual refresh requested")
	s.runCycle(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		s.log.Debug().Msg("cycle already in flight, skipping")
		return
	}
	defer s.cycleMu.Unlock()

	now := s.now()
	s.budget.RollIfNewDay(now)

	bindings := s.bindings.Bindings()

	s.setStatus(StatusFetching)
	cycle := fetch.NewCycle()

	budgetHit := false
	for _, loc := range distinctLocations(bindings) {
		if _, err := s.fetcher.Fetch(ctx, cycle, loc); errors.Is(err, wx.ErrBudgetExceeded) {
			budgetHit = true
		}
	}

	s.setStatus(StatusEvaluating)
	for _, b := range bindings {
		s.dispatch(cycle, b)
	}
	s.evaluator.Run(s.now())

	s.mu.Lock()
	s.lastPollAt = now
	if budgetHit || s.budget.LimitReached() {
		// Nothing more will succeed today; wake up just after midnight
		// when the counter rolls.
		s.nextPollAt = nextMidnight(now)
		s.log.Info().Time("next_poll", s.nextPollAt).Msg("budget exhausted, deferring to next day")
	} else {
		s.nextPollAt = now.Add(s.interval)
	}
	s.status = StatusIdle
	s.mu.Unlock()

	s.persist(ctx)
	s.log.Debug().Int("locations", cycle.Locations()).Int("devices", len(bindings)).Msg("cycle complete")
}

// dispatch runs the binding's category normalizer against the cycle cache
// and publishes the result. Fetch failures translate to short status
// displays; budget refusals leave the prior state untouched.
func (s *Scheduler) dispatch(cycle *fetch.Cycle, b device.Binding) {
	if !b.Enabled {
		s.states.MarkOffline(b.ID, "Disabled")
		return
	}
	if b.Location == "" || b.Category == device.CategoryNone {
		s.log.Debug().Str("device", b.DisplayName()).Msg("binding has no location or category, skipping")
		return
	}

	snap, ok := cycle.Snapshot(b.Location)
	if !ok {
		err, _ := cycle.Err(b.Location)
		switch {
		case errors.Is(err, wx.ErrBudgetExceeded):
			// Deferred, not failed. Prior state stands until tomorrow.
		case errors.Is(err, wx.ErrMissingAPIKey):
			s.states.MarkOffline(b.ID, "No key.")
		case errors.Is(err, wx.ErrBadLocation):
			s.states.MarkOffline(b.ID, "Bad Loc")
		default:
			s.states.MarkOffline(b.ID, "No comm")
		}
		return
	}
	if snap.BadLocation() {
		s.log.Error().Str("device", b.DisplayName()).Str("location", b.Location).Msg("provider cannot find location")
		s.states.MarkOffline(b.ID, "Bad Loc")
		return
	}

	switch b.Category {
	case device.CategoryWeather:
		rec, err := s.norm.Weather(snap, b, s.states.ObservationEpoch(b.ID))
		if err != nil {
			s.log.Debug().Str("device", b.DisplayName()).Err(err).Msg("weather update skipped")
			return
		}
		rec.Merge(s.norm.Alerts(snap, b))
		rec.Merge(s.norm.Forecast(snap, b))
		s.states.Publish(b.ID, rec)
		s.storeDigest(b.ID, s.norm.Digest(snap, b))
	case device.CategoryForecast:
		s.publishOnline(b.ID, s.norm.Forecast(snap, b))
	case device.CategoryHourly:
		s.publishOnline(b.ID, s.norm.Hourly(snap, b))
	case device.CategoryTenDay:
		s.publishOnline(b.ID, s.norm.TenDay(snap, b))
	case device.CategoryAlmanac:
		s.publishOnline(b.ID, s.norm.Almanac(snap, b))
	case device.CategoryAstronomy:
		s.publishOnline(b.ID, s.norm.Astronomy(snap, b))
	case device.CategoryTides:
		s.publishOnline(b.ID, s.norm.Tides(snap, b))
	case device.CategoryAlerts:
		s.publishOnline(b.ID, s.norm.Alerts(snap, b))
	}
}

// publishOnline marks a successfully normalized record online before it is
// published. Category normalizers that track their own status keep it.
func (s *Scheduler) publishOnline(deviceID string, rec *device.Record) {
	if _, ok := rec.Get("onOffState"); !ok {
		rec.SetOnline(true, " ")
	}
	s.states.Publish(deviceID, rec)
}

func (s *Scheduler) persist(ctx context.Context) {
	if s.prefs == nil {
		return
	}

	bs := s.budget.Snapshot()
	s.mu.RLock()
	sched := prefs.Schedule{
		LastPollAt:     s.lastPollAt,
		NextPollAt:     s.nextPollAt,
		CallsMadeToday: bs.CallsMadeToday,
		LimitReached:   bs.LimitReached,
		CallDay:        bs.Day,
	}
	s.mu.RUnlock()

	if err := s.prefs.SaveSchedule(ctx, sched); err != nil {
		s.log.Warn().Err(err).Msg("unable to persist schedule")
	}
}

func (s *Scheduler) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Status reports the scheduler phase and the poll timestamps.
func (s *Scheduler) Status() (Status, time.Time, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastPollAt, s.nextPollAt
}

func (s *Scheduler) storeDigest(deviceID, body string) {
	s.mu.Lock()
	s.digests[deviceID] = body
	s.mu.Unlock()
}

// Digest returns the latest daily summary composed for a weather device.
func (s *Scheduler) Digest(deviceID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.digests[deviceID]
	return d, ok
}

// distinctLocations preserves first-seen order so fetch logs follow the
// binding order.
func distinctLocations(bindings []device.Binding) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range bindings {
		if !b.Enabled || b.Location == "" {
			continue
		}
		if _, ok := seen[b.Location]; ok {
			continue
		}
		seen[b.Location] = struct{}{}
		out = append(out, b.Location)
	}
	return out
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 1, 0, now.Location())
}
