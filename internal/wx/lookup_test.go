package wx

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unexpected error decoding document: %v", err)
	}
	return doc
}

// TestLookupListWrapping verifies that a step wrapped in a list is walked
// the same as a bare object, since the provider emits both shapes for the
// same logical field.
func TestLookupListWrapping(t *testing.T) {
	bare := decode(t, `{"history": {"dailysummary": {"maxtempm": "21"}}}`)
	wrapped := decode(t, `{"history": {"dailysummary": [{"maxtempm": "21"}]}}`)

	for _, doc := range []any{bare, wrapped} {
		got := Lookup(doc, nil, "history", "dailysummary", "maxtempm")
		if got != "21" {
			t.Fatalf("expected \"21\", got %v", got)
		}
	}
}

func TestLookupFirstCandidateWins(t *testing.T) {
	doc := decode(t, `{"days": [{"other": 1}, {"high": "12"}, {"high": "99"}]}`)

	if got := Lookup(doc, nil, "days", "high"); got != "12" {
		t.Fatalf("expected first element containing the key to win, got %v", got)
	}
}

func TestLookupMissingPathReturnsDefault(t *testing.T) {
	doc := decode(t, `{"current_observation": {"temp_f": 55.1}}`)

	if got := Lookup(doc, "fallback", "current_observation", "temp_c"); got != "fallback" {
		t.Fatalf("expected default for missing key, got %v", got)
	}
	if got := LookupString(doc, DefaultText, "no", "such", "path"); got != DefaultText {
		t.Fatalf("expected %q, got %q", DefaultText, got)
	}
}

func TestLookupListPromotesSingleObject(t *testing.T) {
	doc := decode(t, `{"alerts": {"type": "WRN"}}`)

	list := LookupList(doc, "alerts")
	if len(list) != 1 {
		t.Fatalf("expected single object promoted to one-element list, got %d elements", len(list))
	}
}

func TestSanitizeNumericCorruptFloor(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"standard missing marker", "-999.0", Sentinel},
		{"extended missing marker", "-9999.0", Sentinel},
		{"non numeric", "--", Sentinel},
		{"nil", nil, Sentinel},
		{"plain value", "55.1", 55.1},
		{"already float", 12.0, 12.0},
		{"cold but real", "-40", -40.0},
	}

	for _, tc := range cases {
		got, ui := SanitizeNumeric(tc.in)
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if got == Sentinel && ui != SentinelDisplay {
			t.Fatalf("%s: sentinel must display as %q, got %q", tc.name, SentinelDisplay, ui)
		}
	}
}

func TestSnapshotEstimated(t *testing.T) {
	real := &Snapshot{Doc: decode(t, `{"current_observation": {"observation_epoch": "1500000000"}}`)}
	if real.Estimated() {
		t.Fatal("observation without estimated block must not read as estimated")
	}

	est := &Snapshot{Doc: decode(t, `{"current_observation": {"estimated": {"estimated": 1}}}`)}
	if !est.Estimated() {
		t.Fatal("expected estimated observation")
	}

	if real.ObservationEpoch() != 1500000000 {
		t.Fatalf("expected epoch 1500000000, got %d", real.ObservationEpoch())
	}
}
