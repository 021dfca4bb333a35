package normalize

import (
	"fmt"
	"strings"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

// Digest builds the once-a-day plain text weather summary for a binding.
// Transport is the caller's problem; this only composes the body.
func (n *Normalizer) Digest(snap *wx.Snapshot, b device.Binding) string {
	units := b.EffectiveUnits()
	metric := units.Metricish()

	days := wx.LookupList(snap.Doc, "forecast", "txt_forecast", "forecastday")
	textKey := "fcttext"
	if metric {
		textKey = "fcttext_metric"
	}
	todayTitle, todayText := digestForecastDay(days, 0, textKey)
	tomorrowTitle, tomorrowText := digestForecastDay(days, 1, textKey)

	tempSuffix, qpfSuffix := "F", "in."
	if metric {
		tempSuffix = "C"
	}
	if units == device.UnitsMetric || units == device.UnitsMetricSI {
		qpfSuffix = "mm."
	}

	// The mixed preference keeps celsius temperatures but imperial rainfall.
	tempKey, recordKey := "fahrenheit", "F"
	if metric {
		tempKey, recordKey = "celsius", "C"
	}
	qpfKey, histTempSuffix, histQPFKey := "in", "i", "precipi"
	if units == device.UnitsMetric || units == device.UnitsMetricSI {
		qpfKey, histQPFKey = "mm", "precipm"
	}
	if metric {
		histTempSuffix = "m"
	}

	high := digestTemp(wx.Lookup(snap.Doc, nil, "forecast", "simpleforecast", "forecastday", "high", tempKey), tempSuffix)
	low := digestTemp(wx.Lookup(snap.Doc, nil, "forecast", "simpleforecast", "forecastday", "low", tempKey), tempSuffix)
	humidity := wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "forecast", "simpleforecast", "forecastday", "maxhumidity"))
	qpf := fmt.Sprintf("%v %s", wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "forecast", "simpleforecast", "forecastday", "qpf_allday", qpfKey)), qpfSuffix)

	recordHigh := digestTemp(wx.Lookup(snap.Doc, nil, "almanac", "temp_high", "record", recordKey), tempSuffix)
	recordHighYear := wx.CoerceInt(wx.Lookup(snap.Doc, nil, "almanac", "temp_high", "recordyear"))
	recordLow := digestTemp(wx.Lookup(snap.Doc, nil, "almanac", "temp_low", "record", recordKey), tempSuffix)
	recordLowYear := wx.CoerceInt(wx.Lookup(snap.Doc, nil, "almanac", "temp_low", "recordyear"))

	yHigh := digestTemp(wx.Lookup(snap.Doc, nil, "history", "dailysummary", "maxtemp"+histTempSuffix), tempSuffix)
	yLow := digestTemp(wx.Lookup(snap.Doc, nil, "history", "dailysummary", "mintemp"+histTempSuffix), tempSuffix)
	yQPF := fmt.Sprintf("%v %s", wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "history", "dailysummary", histQPFKey)), qpfSuffix)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", b.DisplayName())
	sb.WriteString("-------------------------------------------\n\n")
	fmt.Fprintf(&sb, "%s:\n%s\n\n", todayTitle, todayText)
	fmt.Fprintf(&sb, "%s:\n%s\n\n", tomorrowTitle, tomorrowText)
	sb.WriteString("Today:\n-------------------------\n")
	fmt.Fprintf(&sb, "High: %s\n", high)
	fmt.Fprintf(&sb, "Low: %s\n", low)
	fmt.Fprintf(&sb, "Humidity: %v%%\n", humidity)
	fmt.Fprintf(&sb, "Precipitation total: %s\n\n", qpf)
	sb.WriteString("Record:\n-------------------------\n")
	fmt.Fprintf(&sb, "High: %s (%d)\n", recordHigh, recordHighYear)
	fmt.Fprintf(&sb, "Low: %s (%d)\n\n", recordLow, recordLowYear)
	sb.WriteString("Yesterday:\n-------------------------\n")
	fmt.Fprintf(&sb, "High: %s\n", yHigh)
	fmt.Fprintf(&sb, "Low: %s\n", yLow)
	fmt.Fprintf(&sb, "Precipitation: %s\n\n", yQPF)

	return sb.String()
}

func digestForecastDay(days []any, idx int, textKey string) (title, text string) {
	if idx >= len(days) {
		return wx.SentinelDisplay, wx.SentinelDisplay
	}
	title = wx.LookupString(days[idx], wx.SentinelDisplay, "title")
	text = wx.LookupString(days[idx], wx.SentinelDisplay, textKey)
	if title == "" {
		title = wx.SentinelDisplay
	}
	if text == "" {
		text = wx.SentinelDisplay
	}
	return title, text
}

func digestTemp(raw any, suffix string) string {
	return fmt.Sprintf("%.0f%s", wx.CoerceFloat(raw), suffix)
}
