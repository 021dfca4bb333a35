package wx

import "time"

// Snapshot is the raw provider-shaped document for one location plus its
// fetch timestamp. Snapshots are cycle-scoped: the fetcher owns at most one
// live snapshot per location, discarded when the cycle ends.
type Snapshot struct {
	Location  string
	Doc       any
	FetchedAt time.Time
}

// ObservationEpoch returns the current observation's epoch seconds, or 0
// when the document does not carry a usable value.
func (s *Snapshot) ObservationEpoch() int64 {
	raw := Lookup(s.Doc, nil, "current_observation", "observation_epoch")
	v, err := toFloat(raw)
	if err != nil {
		return 0
	}
	return int64(v)
}

// Estimated reports whether the provider marked the observation as
// estimated conditions. The key is absent entirely when conditions are real.
func (s *Snapshot) Estimated() bool {
	return CoerceInt(Lookup(s.Doc, nil, "current_observation", "estimated", "estimated")) == 1
}

// BadLocation reports whether the provider answered with a location-query
// error instead of weather data.
func (s *Snapshot) BadLocation() bool {
	return LookupString(s.Doc, "", "response", "error", "type") == "querynotfound"
}
