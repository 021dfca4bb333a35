package wx

import (
	"errors"
	"fmt"
)

// Failure kinds a poll cycle can see. None of them propagate out of a
// cycle: transport failures mark the location's devices offline, stale or
// budget-refused fetches defer to the next cycle, and bad configuration is
// reported per device.
var (
	ErrBudgetExceeded = errors.New("daily call budget exceeded")
	ErrStaleData      = errors.New("observation not newer than stored data")
	ErrEstimated      = errors.New("observation is estimated conditions")
	ErrBadLocation    = errors.New("location query not found")
	ErrMissingAPIKey  = errors.New("api key not configured")
)

// TransportError wraps a network-level fetch failure for one location.
type TransportError struct {
	Location string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Location, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
