package normalize

import (
	"fmt"
	"strings"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

const (
	maxTextForecastDays   = 8
	maxSimpleForecastDays = 4
)

// Forecast normalizes the text forecast (8 half-day blocks) and the simple
// forecast (4 days), then appends the comparison of today's forecast high
// against yesterday's. Values are rounded to whole degrees before display:
// stations occasionally forecast with sub-degree precision, which is noise.
func (n *Normalizer) Forecast(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	units := b.EffectiveUnits()

	textKey := "fcttext"
	if units.Metricish() {
		textKey = "fcttext_metric"
	}

	for i, day := range wx.LookupList(snap.Doc, "forecast", "txt_forecast", "forecastday") {
		if i >= maxTextForecastDays {
			break
		}
		slot := i + 1
		rec.SetText(fmt.Sprintf("foreText%d", slot), strings.TrimLeft(wx.LookupString(day, wx.DefaultText, textKey), "\n"))
		rec.SetText(fmt.Sprintf("icon%d", slot), wx.LookupString(day, wx.DefaultText, "icon"))
		rec.SetText(fmt.Sprintf("foreTitle%d", slot), wx.LookupString(day, wx.DefaultText, "title"))
	}

	for i, day := range wx.LookupList(snap.Doc, "forecast", "simpleforecast", "forecastday") {
		if i >= maxSimpleForecastDays {
			break
		}
		n.simpleForecastDay(rec, day, b, i+1)
	}

	n.forecastComparison(rec, snap, b)
	return rec
}

func (n *Normalizer) simpleForecastDay(rec *device.Record, day any, b device.Binding, slot int) {
	units := b.EffectiveUnits()

	windKey := "mph"
	if units == device.UnitsMetric || units == device.UnitsMetricSI {
		windKey = "kph"
	}
	tempKey := "fahrenheit"
	if units.Metricish() {
		tempKey = "celsius"
	}

	wind, windUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "avewind", windKey))
	if units == device.UnitsMetricSI {
		wind *= kphToMps
		windUI = n.fmtWind(b, fmt.Sprintf("%v", wind))
	} else {
		windUI = n.fmtWind(b, windUI)
	}
	rec.Set(fmt.Sprintf("foreWind%d", slot), roundInt(wind), windUI)

	rec.SetText(fmt.Sprintf("conditions%d", slot), wx.LookupString(day, wx.DefaultText, "conditions"))
	rec.SetText(fmt.Sprintf("foreDay%d", slot), wx.LookupString(day, wx.DefaultText, "date", "weekday"))

	high, highUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "high", tempKey))
	rec.Set(fmt.Sprintf("foreHigh%d", slot), roundInt(high), n.fmtTemperature(b, highUI))

	low, lowUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "low", tempKey))
	rec.Set(fmt.Sprintf("foreLow%d", slot), roundInt(low), n.fmtTemperature(b, lowUI))

	humidity, humidityUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "maxhumidity"))
	rec.Set(fmt.Sprintf("foreHum%d", slot), roundInt(humidity), n.fmtPercentage(b, humidityUI))

	rec.SetText(fmt.Sprintf("foreIcon%d", slot), wx.LookupString(day, wx.DefaultText, "icon"))

	pop, popUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "pop"))
	rec.Set(fmt.Sprintf("forePop%d", slot), roundInt(pop), n.fmtPercentage(b, popUI))
}

// forecastComparison classifies today's forecast high against yesterday's
// actual high. The cutoffs are fixed at ±1 and ±5 degrees in whichever
// unit system the device displays.
func (n *Normalizer) forecastComparison(rec *device.Record, snap *wx.Snapshot, b device.Binding) {
	historyKey := "maxtempi"
	if b.EffectiveUnits().Metricish() {
		historyKey = "maxtempm"
	}
	historyHigh := wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "history", "dailysummary", historyKey))

	difference := wx.Sentinel
	if f, ok := rec.Get("foreHigh1"); ok && historyHigh != wx.Sentinel {
		if high, ok := f.Value.(int); ok {
			difference = float64(high) - historyHigh
		}
	}

	var diffText string
	switch {
	case difference == wx.Sentinel:
		diffText = "unknown"
	case difference <= -5:
		diffText = "much colder"
	case difference <= -1:
		diffText = "colder"
	case difference <= 1:
		diffText = "about the same"
	case difference <= 5:
		diffText = "warmer"
	default:
		diffText = "much warmer"
	}

	rec.SetText("foreTextShort", diffText)
	if diffText == "unknown" {
		rec.SetText("foreTextLong", "Unable to compare today's forecast with yesterday's high temperature.")
	} else {
		rec.SetText("foreTextLong", fmt.Sprintf("Today is forecast to be %s than yesterday.", diffText))
	}
}
