package normalize

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

func tenDaySnapshot(t *testing.T, days int) *wx.Snapshot {
	t.Helper()

	forecastDays := make([]any, 0, days)
	for i := 0; i < days; i++ {
		forecastDays = append(forecastDays, map[string]any{
			"date":        map[string]any{"weekday": "Friday", "epoch": "1756400100"},
			"conditions":  "Clear",
			"icon":        "clear",
			"pop":         "10",
			"maxhumidity": "70",
			"high":        map[string]any{"celsius": "21", "fahrenheit": "70"},
			"low":         map[string]any{"celsius": "12", "fahrenheit": "54"},
			"qpf_allday":  map[string]any{"mm": "1.0", "in": "0.04"},
			"snow_allday": map[string]any{"cm": "0.0", "in": "0.0"},
			"avewind":     map[string]any{"dir": "NW", "degrees": 310, "kph": "16", "mph": "10"},
			"maxwind":     map[string]any{"dir": "W", "degrees": 270, "kph": "32", "mph": "20"},
		})
	}

	raw, _ := json.Marshal(map[string]any{
		"current_observation": map[string]any{"observation_epoch": "1756400100"},
		"forecast": map[string]any{
			"simpleforecast": map[string]any{"forecastday": forecastDays},
		},
	})
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error building document: %v", err)
	}
	return &wx.Snapshot{Location: "autoip", Doc: decoded}
}

func TestTenDayWindSourceSelection(t *testing.T) {
	n := testNormalizer()
	snap := tenDaySnapshot(t, 1)

	avg := n.TenDay(snap, device.Binding{ID: "dev1", Units: device.UnitsStandard, WindSource: device.WindAverage})
	if got := avg.Value("d01_windDir"); got != "NW" {
		t.Fatalf("expected average wind direction, got %v", got)
	}
	if got := avg.Value("d01_windSpeed"); got != 10.0 {
		t.Fatalf("expected average wind speed, got %v", got)
	}

	max := n.TenDay(snap, device.Binding{ID: "dev1", Units: device.UnitsStandard, WindSource: device.WindMaximum})
	if got := max.Value("d01_windDir"); got != "W" {
		t.Fatalf("expected maximum wind direction, got %v", got)
	}
	if got := max.Value("d01_windDegrees"); got != 270 {
		t.Fatalf("expected maximum wind degrees, got %v", got)
	}
}

func TestTenDayTruncatedToTen(t *testing.T) {
	n := testNormalizer()
	rec := n.TenDay(tenDaySnapshot(t, 14), device.Binding{ID: "dev1", Units: device.UnitsStandard})

	if _, ok := rec.Get("d10_conditions"); !ok {
		t.Fatal("expected tenth day present")
	}
	if _, ok := rec.Get("d11_conditions"); ok {
		t.Fatal("forecast must stop at ten days")
	}
	want := time.Unix(1756400100, 0).Format("2006-01-02")
	if got := rec.Value("d01_date"); got != want {
		t.Fatalf("expected rendered forecast date %s, got %v", want, got)
	}
}

func TestHourlyTruncatedToTwentyFour(t *testing.T) {
	hours := make([]any, 0, 30)
	for i := 0; i < 30; i++ {
		hours = append(hours, map[string]any{
			"condition": "Clear",
			"icon":      "clear",
			"FCTTIME":   map[string]any{"civil": fmt.Sprintf("%d:00 PM", i%12+1)},
			"temp":      map[string]any{"english": "70", "metric": "21"},
			"wspd":      map[string]any{"english": "10", "metric": "16"},
			"wdir":      map[string]any{"dir": "NW", "degrees": "310"},
		})
	}

	raw, _ := json.Marshal(map[string]any{
		"current_observation": map[string]any{"observation_epoch": "1756400100"},
		"hourly_forecast":     hours,
	})
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error building document: %v", err)
	}

	n := testNormalizer()
	rec := n.Hourly(&wx.Snapshot{Location: "autoip", Doc: decoded}, device.Binding{ID: "dev1", Units: device.UnitsStandard})

	if _, ok := rec.Get("h24_temp"); !ok {
		t.Fatal("expected 24th hour present")
	}
	if _, ok := rec.Get("h25_temp"); ok {
		t.Fatal("hourly forecast must stop at 24 entries")
	}
}
