// Package normalize converts raw provider documents into unit-aware,
// display-ready state records, one normalizer per device category. The
// provider tries hard to be unhelpful: numerics arrive as strings, strings
// arrive as numerics, keys go missing, and stations feed impossible values.
// Every function here is total and idempotent; corrupted input degrades to
// sentinel values, never to an error.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wxtools/stationpoll/internal/device"
)

// PressureTrendStyle selects how the provider's raw "+", "0", "-" pressure
// trend is rendered.
type PressureTrendStyle string

const (
	TrendText         PressureTrendStyle = "text"   // ^  -  v
	TrendNative       PressureTrendStyle = "native" // +  0  -
	TrendGraphic      PressureTrendStyle = "graphic"
	TrendLowerLetters PressureTrendStyle = "lower_letters"
	TrendUpperLetters PressureTrendStyle = "upper_letters"
	TrendLowerWords   PressureTrendStyle = "lower_words"
	TrendUpperWords   PressureTrendStyle = "upper_words"
)

var pressureTrends = map[PressureTrendStyle]map[string]string{
	TrendGraphic:      {"+": "⬆", "-": "⬇", "0": "➡"},
	TrendLowerLetters: {"+": "r", "-": "f", "0": "s"},
	TrendLowerWords:   {"+": "rising", "-": "falling", "0": "steady"},
	TrendNative:       {"+": "+", "-": "-", "0": "0"},
	TrendText:         {"+": "^", "-": "v", "0": "-"},
	TrendUpperLetters: {"+": "R", "-": "F", "0": "S"},
	TrendUpperWords:   {"+": "Rising", "-": "Falling", "0": "Steady"},
}

// Options carries the display preferences shared by every normalizer.
type Options struct {
	TempDecimal     int
	HumidityDecimal int
	WindDecimal     int
	PressureTrend   PressureTrendStyle
	TimeLayout      string // layout for the 24-hour observation rendering
	IgnoreEstimated bool
}

func DefaultOptions() Options {
	return Options{
		TempDecimal:     1,
		HumidityDecimal: 1,
		WindDecimal:     1,
		PressureTrend:   TrendText,
		TimeLayout:      "2006-01-02 15:04",
	}
}

// Normalizer holds the options and logger shared by the per-category
// normalization functions.
type Normalizer struct {
	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

func New(opts Options, log zerolog.Logger) *Normalizer {
	if opts.TimeLayout == "" {
		opts.TimeLayout = "2006-01-02 15:04"
	}
	return &Normalizer{
		opts: opts,
		log:  log.With().Str("component", "normalize").Logger(),
		now:  time.Now,
	}
}

// placeholders pass through formatting untouched; they are already the
// display form of missing data.
func isPlaceholder(val string) bool {
	switch val {
	case "NA", "N/A", "--", "":
		return true
	}
	return false
}

// fmtTemperature renders a temperature display value with the configured
// precision and the device's unit suffix. Unparseable input renders "--".
func (n *Normalizer) fmtTemperature(b device.Binding, val string) string {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return "--"
	}
	return fmt.Sprintf("%.*f%s", n.opts.TempDecimal, f, b.TemperatureUnits)
}

// fmtPercentage renders humidity and probability-of-precipitation values.
func (n *Normalizer) fmtPercentage(b device.Binding, val string) string {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return val + b.PercentageUnits
	}
	return fmt.Sprintf("%.*f%s", n.opts.HumidityDecimal, f, b.PercentageUnits)
}

// fmtRain renders precipitation amounts; placeholders pass through.
func (n *Normalizer) fmtRain(b device.Binding, val string) string {
	if isPlaceholder(val) {
		return val
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return val
	}
	return fmt.Sprintf("%.2f%s", f, b.RainUnits)
}

// fmtSnow renders snow amounts without adjusting precision.
func (n *Normalizer) fmtSnow(b device.Binding, val string) string {
	if isPlaceholder(val) {
		return val
	}
	return val + b.SnowUnits
}

// fmtWind renders wind speeds with the configured precision.
func (n *Normalizer) fmtWind(b device.Binding, val string) string {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return val
	}
	return fmt.Sprintf("%.*f%s", n.opts.WindDecimal, f, b.WindUnits)
}

// fmtPressureTrend translates the provider's raw trend symbol into the
// configured symbology, leaving unrecognized input unchanged.
func (n *Normalizer) fmtPressureTrend(raw string) string {
	style := n.opts.PressureTrend
	if _, ok := pressureTrends[style]; !ok {
		style = TrendText
	}
	if out, ok := pressureTrends[style][raw]; ok {
		return out
	}
	return raw
}

// observationClock renders an epoch in the local 24-hour layout.
func (n *Normalizer) observationClock(epoch int64) string {
	if epoch <= 0 {
		return ""
	}
	return time.Unix(epoch, 0).Format(n.opts.TimeLayout)
}

// iconValue renders a numeric value as the digits-only form the host's
// icon selectors key on ("12.5" becomes "125").
func iconValue(val float64, precision int) string {
	return strings.ReplaceAll(strconv.FormatFloat(val, 'f', precision, 64), ".", "")
}

// roundInt rounds half away from zero, matching how forecast temperatures
// are published.
func roundInt(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// padCounter renders 1..n as "01".."09", "10"... for slotted state names.
func padCounter(i int) string {
	if i < 10 {
		return fmt.Sprintf("0%d", i)
	}
	return strconv.Itoa(i)
}
