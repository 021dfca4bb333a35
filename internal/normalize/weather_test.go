package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

const sampleConditions = `{
	"current_observation": {
		"observation_time": "Last Updated on August 28, 10:15 AM PDT",
		"observation_epoch": "1756400100",
		"station_id": "KCASANFR70",
		"temp_f": 61.3,
		"temp_c": 16.3,
		"relative_humidity": "78%",
		"wind_dir": "WSW",
		"wind_degrees": 242,
		"wind_mph": 12.0,
		"wind_kph": 19.3,
		"wind_gust_mph": "18.0",
		"wind_gust_kph": "29.0",
		"pressure_mb": "1014",
		"pressure_in": "29.95",
		"pressure_trend": "+",
		"dewpoint_f": 54,
		"dewpoint_c": 12,
		"feelslike_f": "61.3",
		"feelslike_c": "16.3",
		"heat_index_f": "NA",
		"heat_index_c": "NA",
		"windchill_f": "NA",
		"windchill_c": "NA",
		"visibility_mi": "10.0",
		"visibility_km": "16.1",
		"solarradiation": "",
		"UV": "4",
		"precip_1hr_in": "0.00",
		"precip_1hr_metric": " 0",
		"precip_today_in": "0.02",
		"precip_today_metric": "0.5",
		"icon": "partlycloudy",
		"weather": "Partly Cloudy"
	},
	"location": {
		"city": "San Francisco",
		"nearby_weather_stations": {
			"pws": {
				"station": [
					{"id": "KCASANFR69", "neighborhood": "Mission"},
					{"id": "KCASANFR70", "neighborhood": "Inner Richmond"}
				]
			}
		}
	},
	"history": {
		"dailysummary": [{
			"date": {"pretty": "August 27, 2026"},
			"maxtempm": "22", "maxtempi": "72",
			"mintempm": "13", "mintempi": "55",
			"precipm": "0.0", "precipi": "0.00"
		}]
	}
}`

func sampleSnapshot(t *testing.T) *wx.Snapshot {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(sampleConditions), &doc); err != nil {
		t.Fatalf("unexpected error decoding sample: %v", err)
	}
	return &wx.Snapshot{Location: "pws:KCASANFR70", Doc: doc}
}

func testNormalizer() *Normalizer {
	return New(DefaultOptions(), zerolog.Nop())
}

func TestWeatherSkipsStaleObservation(t *testing.T) {
	n := testNormalizer()
	snap := sampleSnapshot(t)
	b := device.Binding{ID: "dev1", Location: snap.Location, Category: device.CategoryWeather, Enabled: true}

	// Equal epoch is not strictly newer and must be skipped too.
	if _, err := n.Weather(snap, b, 1756400100); !errors.Is(err, wx.ErrStaleData) {
		t.Fatalf("expected ErrStaleData for equal epoch, got %v", err)
	}
	if _, err := n.Weather(snap, b, 1756400101); !errors.Is(err, wx.ErrStaleData) {
		t.Fatalf("expected ErrStaleData for older observation, got %v", err)
	}
	if _, err := n.Weather(snap, b, 1756400099); err != nil {
		t.Fatalf("expected strictly newer observation to publish, got %v", err)
	}
}

func TestWeatherIgnoresEstimatedWhenConfigured(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreEstimated = true
	n := New(opts, zerolog.Nop())

	snap := sampleSnapshot(t)
	co := wx.Lookup(snap.Doc, nil, "current_observation").(map[string]any)
	co["estimated"] = map[string]any{"estimated": float64(1)}

	b := device.Binding{ID: "dev1", Location: snap.Location, Category: device.CategoryWeather, Enabled: true}
	if _, err := n.Weather(snap, b, 0); !errors.Is(err, wx.ErrEstimated) {
		t.Fatalf("expected ErrEstimated, got %v", err)
	}

	// Without the flag the record publishes, carrying the estimated marker.
	rec, err := testNormalizer().Weather(snap, b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Value("estimated"); got != "true" {
		t.Fatalf("expected estimated marker, got %v", got)
	}
}

func TestWeatherStandardUnits(t *testing.T) {
	n := testNormalizer()
	snap := sampleSnapshot(t)
	b := device.Binding{
		ID: "dev1", Location: snap.Location, Category: device.CategoryWeather,
		Units: device.UnitsStandard, Enabled: true,
		TemperatureUnits: " °F", PercentageUnits: "%",
	}

	rec, err := n.Weather(snap, b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.Value("temp"); got != 61.3 {
		t.Fatalf("expected standard temperature 61.3, got %v", got)
	}
	f, _ := rec.Get("temp")
	if f.Display != "61.3 °F" {
		t.Fatalf("expected display \"61.3 °F\", got %q", f.Display)
	}
	if got := rec.Value("relativeHumidity"); got != 78.0 {
		t.Fatalf("expected humidity stripped of %%, got %v", got)
	}
	if got := rec.Value("neighborhood"); got != "Inner Richmond" {
		t.Fatalf("expected station matched to neighborhood, got %v", got)
	}
	if got := rec.Value("pressureTrend"); got != "^" {
		t.Fatalf("expected text trend symbol, got %v", got)
	}
	// Empty solar radiation degrades to the sentinel pair.
	sr, _ := rec.Get("solarradiation")
	if sr.Value != wx.Sentinel || sr.Display != wx.SentinelDisplay {
		t.Fatalf("expected sentinel pair for empty radiation, got %v/%q", sr.Value, sr.Display)
	}
	if !rec.Online() {
		t.Fatal("published weather record must read online")
	}
}

func TestWeatherMetricSIWind(t *testing.T) {
	n := testNormalizer()
	snap := sampleSnapshot(t)
	b := device.Binding{
		ID: "dev1", Location: snap.Location, Category: device.CategoryWeather,
		Units: device.UnitsMetricSI, Enabled: true,
	}

	rec, err := n.Weather(snap, b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 19.3 kph * 0.277778 = 5.36, truncated to whole m/s.
	if got := rec.Value("windSpeed"); got != 5.0 {
		t.Fatalf("expected wind speed 5 m/s, got %v", got)
	}
	if got := rec.Value("temp"); got != 16.3 {
		t.Fatalf("expected metric temperature, got %v", got)
	}
}

// TestWeatherIdempotent verifies that normalizing the same snapshot twice
// yields identical records, field order included.
func TestWeatherIdempotent(t *testing.T) {
	n := testNormalizer()
	snap := sampleSnapshot(t)
	b := device.Binding{ID: "dev1", Location: snap.Location, Category: device.CategoryWeather, Units: device.UnitsMetric, Enabled: true}

	first, err := n.Weather(snap, b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := n.Weather(snap, b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, z := first.Fields(), second.Fields()
	if len(a) != len(z) {
		t.Fatalf("field count differs between runs: %d vs %d", len(a), len(z))
	}
	for i := range a {
		if a[i] != z[i] {
			t.Fatalf("field %d differs: %+v vs %+v", i, a[i], z[i])
		}
	}
}
