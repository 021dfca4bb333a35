package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/budget"
	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/fetch"
	"github.com/wxtools/stationpoll/internal/normalize"
	"github.com/wxtools/stationpoll/internal/trigger"
	"github.com/wxtools/stationpoll/internal/wx"
)

type countingSource struct {
	calls    map[string]int
	notReady error
}

func (c *countingSource) Ready() error {
	return c.notReady
}

func (c *countingSource) Fetch(ctx context.Context, location string) (*wx.Snapshot, error) {
	c.calls[location]++

	doc := map[string]any{
		"current_observation": map[string]any{
			"observation_time":  "Last Updated on August 28, 10:15 AM PDT",
			"observation_epoch": fmt.Sprintf("%d", time.Now().Unix()),
			"station_id":        "KCASANFR70",
			"temp_f":            61.3,
			"temp_c":            16.3,
		},
		"location": map[string]any{"city": "San Francisco"},
	}
	return &wx.Snapshot{Location: location, Doc: doc, FetchedAt: time.Now()}, nil
}

type noopInvoker struct{}

func (noopInvoker) Invoke(triggerID, deviceID string) {}

func newTestScheduler(bindings []device.Binding, callsMax int) (*Scheduler, *countingSource, *device.StateStore, *budget.CallBudget) {
	source := &countingSource{calls: make(map[string]int)}
	b := budget.New(callsMax, zerolog.Nop())
	fetcher := fetch.New(source, b, zerolog.Nop())
	norm := normalize.New(normalize.DefaultOptions(), zerolog.Nop())
	states := device.NewStateStore()
	evaluator := trigger.NewEvaluator(trigger.NewRegistry(), states, noopInvoker{}, zerolog.Nop())

	s := New(15*time.Minute, fetcher, norm, b, StaticBindings(bindings), states, evaluator, nil, zerolog.Nop())
	return s, source, states, b
}

// TestCycleFetchesDistinctLocationsOnce verifies that three devices over
// two locations cost exactly two provider calls per cycle.
func TestCycleFetchesDistinctLocationsOnce(t *testing.T) {
	bindings := []device.Binding{
		{ID: "dev1", Location: "autoip", Category: device.CategoryWeather, Enabled: true},
		{ID: "dev2", Location: "autoip", Category: device.CategoryAstronomy, Enabled: true},
		{ID: "dev3", Location: "pws:KCASANFR70", Category: device.CategoryWeather, Enabled: true},
	}
	s, source, states, _ := newTestScheduler(bindings, 100)

	s.RefreshNow(context.Background())

	if source.calls["autoip"] != 1 || source.calls["pws:KCASANFR70"] != 1 {
		t.Fatalf("expected one call per distinct location, got %v", source.calls)
	}
	for _, id := range []string{"dev1", "dev2", "dev3"} {
		if _, err := states.Get(id); err != nil {
			t.Fatalf("expected state published for %s: %v", id, err)
		}
	}

	status, lastPollAt, nextPollAt := s.Status()
	if status != StatusIdle {
		t.Fatalf("expected idle after cycle, got %s", status)
	}
	if !nextPollAt.After(lastPollAt) {
		t.Fatal("next poll must be scheduled after the cycle")
	}
}

func TestCycleDefersToMidnightOnBudgetExhaustion(t *testing.T) {
	bindings := []device.Binding{
		{ID: "dev1", Location: "autoip", Category: device.CategoryWeather, Enabled: true},
	}
	s, source, _, _ := newTestScheduler(bindings, 0)

	s.RefreshNow(context.Background())

	if source.calls["autoip"] != 0 {
		t.Fatal("exhausted budget must not reach the provider")
	}

	_, _, nextPollAt := s.Status()
	now := time.Now()
	if !nextPollAt.After(now) {
		t.Fatalf("expected next poll in the future, got %v", nextPollAt)
	}
	wantDay := now.AddDate(0, 0, 1).Day()
	if nextPollAt.Day() != wantDay {
		t.Fatalf("expected next poll on day %d, got %v", wantDay, nextPollAt)
	}
}

// TestMissingKeyShowsNoKeyWithoutCharging verifies that an unconfigured
// API key surfaces as the "No key." display on every device and leaves the
// daily budget untouched.
func TestMissingKeyShowsNoKeyWithoutCharging(t *testing.T) {
	bindings := []device.Binding{
		{ID: "dev1", Location: "autoip", Category: device.CategoryWeather, Enabled: true},
		{ID: "dev2", Location: "pws:KCASANFR70", Category: device.CategoryTides, Enabled: true},
	}
	s, source, states, b := newTestScheduler(bindings, 5)
	source.notReady = wx.ErrMissingAPIKey

	s.RefreshNow(context.Background())

	if got := b.Snapshot().CallsMadeToday; got != 0 {
		t.Fatalf("missing key must not charge the budget, got %d calls", got)
	}
	for _, id := range []string{"dev1", "dev2"} {
		st, err := states.Get(id)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", id, err)
		}
		if st.Online {
			t.Fatalf("%s must read offline without a key", id)
		}
		f, _ := st.Record.Get("onOffState")
		if f.Display != "No key." {
			t.Fatalf("expected No key. display for %s, got %q", id, f.Display)
		}
	}

	// The next poll stays on the normal interval; nothing was exhausted.
	_, lastPollAt, nextPollAt := s.Status()
	if !nextPollAt.After(lastPollAt) || nextPollAt.Sub(lastPollAt) > time.Hour {
		t.Fatalf("expected interval scheduling, got last=%v next=%v", lastPollAt, nextPollAt)
	}
}

func TestDisabledDevicePublishesDisabledDisplay(t *testing.T) {
	bindings := []device.Binding{
		{ID: "dev1", Location: "autoip", Category: device.CategoryWeather, Enabled: false},
	}
	s, source, states, _ := newTestScheduler(bindings, 100)

	s.RefreshNow(context.Background())

	if source.calls["autoip"] != 0 {
		t.Fatal("disabled bindings must not trigger fetches")
	}
	st, err := states.Get("dev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Online {
		t.Fatal("disabled device must read offline")
	}
	f, _ := st.Record.Get("onOffState")
	if f.Display != "Disabled" {
		t.Fatalf("expected Disabled display, got %q", f.Display)
	}
}

func TestWeatherDeviceMergesAlertAndForecastFields(t *testing.T) {
	bindings := []device.Binding{
		{ID: "dev1", Location: "autoip", Category: device.CategoryWeather, Enabled: true, SuppressAlerts: true},
	}
	s, _, states, _ := newTestScheduler(bindings, 100)

	s.RefreshNow(context.Background())

	st, err := states.Get("dev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.Record.Get("alertStatus"); !ok {
		t.Fatal("weather device must carry alert fields")
	}
	if _, ok := st.Record.Get("foreTextShort"); !ok {
		t.Fatal("weather device must carry forecast comparison fields")
	}
	if _, ok := s.Digest("dev1"); !ok {
		t.Fatal("weather device must compose a daily digest")
	}
}
