// Package trigger evaluates location-health and severe-alert conditions
// against the freshly published device states at the end of each poll cycle.
package trigger

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/device"
)

// coldFloor marks sensor data the provider has flagged invalid. Stations
// report variants of -99 °F for a dead sensor, which lands at or below
// -55 °C after conversion.
const coldFloor = -55.0

// OfflineBinding connects a device to the trigger fired when its
// observations go stale.
type OfflineBinding struct {
	DeviceID         string
	TriggerID        string
	ThresholdMinutes int
}

// AlertBinding connects a device to a trigger fired while the device has at
// least one active severe weather alert.
type AlertBinding struct {
	DeviceID  string
	TriggerID string
}

// Invoker is the host's trigger execution entry point. Delivery is a single
// synchronous call; the evaluator makes no guarantee beyond that.
type Invoker interface {
	Invoke(triggerID, deviceID string)
}

// Registry holds the registered trigger bindings. Offline bindings are
// limited to one per device; alert bindings are not.
type Registry struct {
	mu      sync.Mutex
	offline map[string]OfflineBinding
	alerts  []AlertBinding
}

func NewRegistry() *Registry {
	return &Registry{offline: make(map[string]OfflineBinding)}
}

// RegisterOffline adds an offline binding. A device can carry only one.
func (r *Registry) RegisterOffline(b OfflineBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.offline[b.DeviceID]; ok {
		return fmt.Errorf("device %s already bound to offline trigger %s", b.DeviceID, existing.TriggerID)
	}
	if b.ThresholdMinutes <= 0 {
		return fmt.Errorf("offline threshold must be positive, got %d", b.ThresholdMinutes)
	}
	r.offline[b.DeviceID] = b
	return nil
}

// UnregisterOffline removes the device's offline binding if present.
func (r *Registry) UnregisterOffline(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.offline, deviceID)
}

// RegisterAlert adds an alert binding. Multiple bindings per device are
// allowed and all fire.
func (r *Registry) RegisterAlert(b AlertBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, b)
}

func (r *Registry) snapshot() (map[string]OfflineBinding, []AlertBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offline := make(map[string]OfflineBinding, len(r.offline))
	for k, v := range r.offline {
		offline[k] = v
	}
	alerts := make([]AlertBinding, len(r.alerts))
	copy(alerts, r.alerts)
	return offline, alerts
}

// Evaluator runs the registered bindings against published device state.
// It reads derived scalars only, never raw provider documents.
type Evaluator struct {
	registry *Registry
	states   *device.StateStore
	invoker  Invoker
	log      zerolog.Logger
}

func NewEvaluator(registry *Registry, states *device.StateStore, invoker Invoker, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		registry: registry,
		states:   states,
		invoker:  invoker,
		log:      log.With().Str("component", "trigger").Logger(),
	}
}

// Run evaluates every binding once for the cycle that just completed. A
// device that stays offline across cycles re-fires its trigger each cycle;
// deduplication beyond once per cycle is deliberately absent.
func (e *Evaluator) Run(now time.Time) {
	offline, alerts := e.registry.snapshot()

	for deviceID, b := range offline {
		st, err := e.states.Get(deviceID)
		if err != nil {
			continue
		}

		threshold := time.Duration(b.ThresholdMinutes) * time.Minute
		elapsed := now.Sub(time.Unix(st.ObservationEpoch, 0))

		switch {
		case st.ObservationEpoch > 0 && elapsed >= threshold:
			e.states.MarkOffline(deviceID, "offline")
			e.log.Warn().
				Str("device", deviceID).
				Str("stale_for", staleFor(elapsed)).
				Msg("location appears to be offline")
			e.invoker.Invoke(b.TriggerID, deviceID)

		case st.Temperature <= coldFloor:
			e.states.MarkOffline(deviceID, "offline")
			e.log.Warn().
				Str("device", deviceID).
				Float64("temperature", st.Temperature).
				Msg("location appears to be offline, ambient temperature below floor")
			e.invoker.Invoke(b.TriggerID, deviceID)
		}
	}

	for _, b := range alerts {
		st, err := e.states.Get(b.DeviceID)
		if err != nil || !st.AlertActive {
			continue
		}
		e.log.Warn().Str("device", b.DeviceID).Msg("location has at least one severe weather alert")
		e.invoker.Invoke(b.TriggerID, b.DeviceID)
	}
}

// staleFor renders an elapsed duration as days, hours and minutes, dropping
// seconds.
func staleFor(d time.Duration) string {
	total := int(d.Seconds())
	days := total / (60 * 60 * 24)
	hours := total % (60 * 60 * 24) / (60 * 60)
	minutes := total % (60 * 60) / 60
	return fmt.Sprintf("%d days, %d hrs, %d mins", days, hours, minutes)
}
