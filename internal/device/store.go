package device

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// ErrNotFound is returned when no state has been published for a device.
var ErrNotFound = errors.New("no published state for device")

// State is the host-visible view of one device after a cycle: the full
// published record plus the derived scalars the trigger evaluator reads.
type State struct {
	Record           *Record
	ObservationEpoch int64
	Temperature      float64
	AlertActive      bool
	Online           bool
	UpdatedAt        time.Time
}

// StateStore is a concurrency-safe in-memory store of the latest published
// record per device. It keeps only what the next cycle needs to compare
// against; historical observations are not retained.
type StateStore struct {
	mu   sync.RWMutex
	data map[string]*State
}

func NewStateStore() *StateStore {
	return &StateStore{data: make(map[string]*State)}
}

// Publish replaces the device's entire state set with the new record and
// refreshes the derived scalars.
func (s *StateStore) Publish(deviceID string, rec *Record) {
	st := &State{
		Record:    rec,
		Online:    rec.Online(),
		UpdatedAt: time.Now(),
	}

	if f, ok := rec.Get("currentObservationEpoch"); ok {
		st.ObservationEpoch = epochValue(f.Value)
	}
	if f, ok := rec.Get("temp"); ok {
		if v, ok := f.Value.(float64); ok {
			st.Temperature = v
		}
	}
	if f, ok := rec.Get("alertStatus"); ok {
		st.AlertActive = f.Value == "true" || f.Value == true
	}

	s.mu.Lock()
	s.data[deviceID] = st
	s.mu.Unlock()
}

// MarkOffline flips the stored on/off state without touching the rest of
// the record, so prior data stays displayed alongside the offline flag.
func (s *StateStore) MarkOffline(deviceID, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[deviceID]
	if !ok {
		rec := NewRecord()
		rec.SetOnline(false, display)
		s.data[deviceID] = &State{Record: rec, UpdatedAt: time.Now()}
		return
	}
	st.Record.SetOnline(false, display)
	st.Online = false
}

// Get returns the latest state for a device.
func (s *StateStore) Get(deviceID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.data[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

// ObservationEpoch returns the stored epoch for a device, 0 when unknown.
// New devices have no epoch yet; 0 makes any real observation newer.
func (s *StateStore) ObservationEpoch(deviceID string) int64 {
	st, err := s.Get(deviceID)
	if err != nil {
		return 0
	}
	return st.ObservationEpoch
}

func epochValue(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
