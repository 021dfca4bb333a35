// Package device holds the host-owned device bindings the core consumes and
// the published-state records it produces. Bindings are created and updated
// by the host; the core treats them as immutable snapshots per cycle.
package device

// Category selects which section of the provider document a device surfaces.
type Category string

const (
	CategoryWeather   Category = "weather"
	CategoryForecast  Category = "forecast"
	CategoryHourly    Category = "hourly"
	CategoryTenDay    Category = "tenday"
	CategoryAlmanac   Category = "almanac"
	CategoryAstronomy Category = "astronomy"
	CategoryTides     Category = "tides"
	CategoryAlerts    Category = "alerts"
	CategoryNone      Category = "none"
)

// UnitSystem selects which of the provider's parallel unit fields populate
// a record. The codes match the provider's configuration vocabulary.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "M"  // °C, kph, mm, km, mb
	UnitsMetricSI UnitSystem = "MS" // °C, m/s, mm, km, mb
	UnitsMixed    UnitSystem = "I"  // °C, mph, in, mi, mb
	UnitsStandard UnitSystem = "S"  // °F, mph, in, mi, inHg
)

// WindSource selects between the provider's average and maximum wind
// readings for multi-day forecasts.
type WindSource string

const (
	WindAverage WindSource = "AVG"
	WindMaximum WindSource = "MAX"
)

// Binding describes one device the host has bound to a weather location.
type Binding struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name"`
	Location string     `json:"location" validate:"required,excludes= ,excludes=0x5C"`
	Category Category   `json:"category" validate:"required,oneof=weather forecast hourly tenday almanac astronomy tides alerts none"`
	Units    UnitSystem `json:"units" validate:"omitempty,oneof=M MS I S"`
	Enabled  bool       `json:"enabled"`

	// Display preferences carried through to record formatting.
	TemperatureUnits string     `json:"temperatureUnits,omitempty"`
	PercentageUnits  string     `json:"percentageUnits,omitempty"`
	RainUnits        string     `json:"rainUnits,omitempty"`
	SnowUnits        string     `json:"snowUnits,omitempty"`
	WindUnits        string     `json:"windUnits,omitempty"`
	PressureUnits    string     `json:"pressureUnits,omitempty"`
	DistanceUnits    string     `json:"distanceUnits,omitempty"`
	WindSource       WindSource `json:"windSource,omitempty"`
	WindDirAsDegrees bool       `json:"windDirAsDegrees,omitempty"`
	SuppressAlerts   bool       `json:"suppressAlerts,omitempty"`
}

// DisplayName falls back to the device id for log lines.
func (b Binding) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}

// EffectiveUnits defaults to standard when the host left units unset.
func (b Binding) EffectiveUnits() UnitSystem {
	if b.Units == "" {
		return UnitsStandard
	}
	return b.Units
}

// Metricish reports whether temperatures come from the metric fields.
// Mixed (I) takes metric temperatures with standard lengths and speeds.
func (u UnitSystem) Metricish() bool {
	return u == UnitsMetric || u == UnitsMetricSI || u == UnitsMixed
}
