package normalize

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

func tidesSnapshot(t *testing.T, site string, observations int) *wx.Snapshot {
	t.Helper()

	summary := make([]any, 0, observations)
	for i := 0; i < observations; i++ {
		summary = append(summary, map[string]any{
			"date": map[string]any{"pretty": fmt.Sprintf("Observation %d", i+1)},
			"data": map[string]any{"height": "1.2 ft", "type": "High Tide"},
		})
	}

	raw, _ := json.Marshal(map[string]any{
		"current_observation": map[string]any{"observation_epoch": "1756400100"},
		"tide": map[string]any{
			"tideInfo":         []any{map[string]any{"tideSite": site}},
			"tideSummaryStats": []any{map[string]any{"minheight": -0.4, "maxheight": 5.6}},
			"tideSummary":      summary,
		},
	})
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error building document: %v", err)
	}
	return &wx.Snapshot{Location: "autoip", Doc: decoded}
}

func TestTidesCoastalLocation(t *testing.T) {
	n := testNormalizer()
	rec := n.Tides(tidesSnapshot(t, "San Francisco Bay", 3), device.Binding{ID: "dev1"})

	if got := rec.Value("tideSite"); got != "San Francisco Bay" {
		t.Fatalf("expected tide site, got %v", got)
	}
	if got := rec.Value("minHeight"); got != -0.4 {
		t.Fatalf("expected min height, got %v", got)
	}
	if got := rec.Value("p3_type"); got != "High Tide" {
		t.Fatalf("expected third observation, got %v", got)
	}
}

func TestTidesInlandLocation(t *testing.T) {
	n := testNormalizer()
	snap := tidesSnapshot(t, "", 0)

	doc := snap.Doc.(map[string]any)
	tide := doc["tide"].(map[string]any)
	tide["tideSummaryStats"] = []any{map[string]any{"minheight": float64(99), "maxheight": float64(-99)}}

	rec := n.Tides(snap, device.Binding{ID: "dev1"})
	if got := rec.Value("tideSite"); got != "No tide info." {
		t.Fatalf("expected inland fallback, got %v", got)
	}
	min, _ := rec.Get("minHeight")
	if min.Display != wx.SentinelDisplay {
		t.Fatalf("expected placeholder display for +99 min height, got %q", min.Display)
	}
	max, _ := rec.Get("maxHeight")
	if max.Display != wx.SentinelDisplay {
		t.Fatalf("expected placeholder display for -99 max height, got %q", max.Display)
	}
}

func TestTidesTruncatedToThirtyOne(t *testing.T) {
	n := testNormalizer()
	rec := n.Tides(tidesSnapshot(t, "Somewhere", 40), device.Binding{ID: "dev1"})

	if _, ok := rec.Get("p31_type"); !ok {
		t.Fatal("expected 31st observation present")
	}
	if _, ok := rec.Get("p32_type"); ok {
		t.Fatal("tide observations must stop at 31")
	}
}
