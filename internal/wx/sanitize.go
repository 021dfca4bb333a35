package wx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel is published in place of unavailable or corrupted numeric data.
// The value could stand in for either an unknown positive or negative true
// value, so its display form is always SentinelDisplay.
const (
	Sentinel        = -99.0
	SentinelDisplay = "--"

	// corruptFloor is -99 °F expressed in °C. Personal weather stations
	// feed the provider values like "-999.0" and "-9999.0" for missing
	// sensors; anything below this floor is not a real observation.
	corruptFloor = -55.728
)

// SanitizeNumeric coerces raw to a float and remaps corrupted readings to
// the sentinel pair. Every numeric field must pass through here before it
// is published so device states never show raw provider artifacts.
func SanitizeNumeric(raw any) (float64, string) {
	v, err := toFloat(raw)
	if err != nil || v < corruptFloor {
		return Sentinel, SentinelDisplay
	}
	return v, strconv.FormatFloat(v, 'f', -1, 64)
}

// CoerceFloat is a best-effort float conversion for values that are
// summarized rather than displayed per-unit. Failure yields the sentinel.
func CoerceFloat(raw any) float64 {
	v, err := toFloat(raw)
	if err != nil {
		return Sentinel
	}
	return v
}

// CoerceInt truncates the coerced value, keeping the sentinel on failure.
func CoerceInt(raw any) int {
	return int(CoerceFloat(raw))
}

func toFloat(raw any) (float64, error) {
	switch t := raw.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case nil:
		return 0, fmt.Errorf("no value")
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

// Stringify renders a decoded JSON scalar the way the provider would have
// sent it as text.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
