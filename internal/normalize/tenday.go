package normalize

import (
	"fmt"
	"time"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

const maxTenDayForecasts = 10

// TenDay normalizes the ten day simple forecast into d01..d10 slots.
// The wind source preference selects between the average and maximum
// wind observation for the direction and speed fields.
func (n *Normalizer) TenDay(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	n.stampObservation(rec, snap)

	days := wx.LookupList(snap.Doc, "forecast", "simpleforecast", "forecastday")
	for i, day := range days {
		if i >= maxTenDayForecasts {
			break
		}
		n.tenDayEntry(rec, day, b, padCounter(i+1))
	}

	return rec
}

func (n *Normalizer) tenDayEntry(rec *device.Record, day any, b device.Binding, slot string) {
	units := b.EffectiveUnits()

	rec.SetText(fmt.Sprintf("d%s_conditions", slot), wx.LookupString(day, wx.DefaultText, "conditions"))
	rec.SetText(fmt.Sprintf("d%s_day", slot), wx.LookupString(day, wx.DefaultText, "date", "weekday"))
	rec.SetText(fmt.Sprintf("d%s_icon", slot), wx.LookupString(day, wx.DefaultText, "icon"))

	if epoch := wx.CoerceFloat(wx.Lookup(day, nil, "date", "epoch")); epoch > 0 {
		date := time.Unix(int64(epoch), 0).Format("2006-01-02")
		rec.SetText(fmt.Sprintf("d%s_date", slot), date)
	} else {
		rec.SetText(fmt.Sprintf("d%s_date", slot), wx.DefaultText)
	}

	pop, popUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "pop"))
	rec.Set(fmt.Sprintf("d%s_pop", slot), pop, n.fmtPercentage(b, popUI))

	humidity, humidityUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "maxhumidity"))
	rec.Set(fmt.Sprintf("d%s_humidity", slot), humidity, n.fmtPercentage(b, humidityUI))

	windKey := "maxwind"
	if b.WindSource == device.WindAverage {
		windKey = "avewind"
	}

	windDegrees, _ := wx.SanitizeNumeric(wx.Lookup(day, nil, windKey, "degrees"))
	rec.Set(fmt.Sprintf("d%s_windDegrees", slot), int(windDegrees), fmt.Sprintf("%d", int(windDegrees)))

	windDir := wx.LookupString(day, wx.DefaultText, windKey, "dir")
	rec.SetText(fmt.Sprintf("d%s_windDir", slot), windDir)
	rec.SetText(fmt.Sprintf("d%s_windDirLong", slot), windLongName(windDir))

	// The ten day feed reports high and low in celsius for the imperial
	// mixed preference as well as the metric ones.
	tempKey := "fahrenheit"
	if units != device.UnitsStandard {
		tempKey = "celsius"
	}
	high, highUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "high", tempKey))
	rec.Set(fmt.Sprintf("d%s_high", slot), high, n.fmtTemperature(b, highUI))
	low, lowUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "low", tempKey))
	rec.Set(fmt.Sprintf("d%s_low", slot), low, n.fmtTemperature(b, lowUI))

	metric := units == device.UnitsMetric || units == device.UnitsMetricSI

	qpfKey, snowKey, speedKey := "in", "in", "mph"
	if metric {
		qpfKey, snowKey, speedKey = "mm", "cm", "kph"
	}

	qpf, qpfUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "qpf_allday", qpfKey))
	rec.Set(fmt.Sprintf("d%s_qpf", slot), qpf, n.fmtRain(b, qpfUI))

	snow, snowUI := wx.SanitizeNumeric(wx.Lookup(day, nil, "snow_allday", snowKey))
	rec.Set(fmt.Sprintf("d%s_snow", slot), snow, n.fmtSnow(b, snowUI))

	windSpeed, windSpeedUI := wx.SanitizeNumeric(wx.Lookup(day, nil, windKey, speedKey))
	if units == device.UnitsMetricSI {
		windSpeed, windSpeedUI = wx.SanitizeNumeric(windSpeed * kphToMps)
	}
	rec.Set(fmt.Sprintf("d%s_windSpeed", slot), windSpeed, n.fmtWind(b, windSpeedUI))
	rec.SetText(fmt.Sprintf("d%s_windSpeedIcon", slot), iconValue(windSpeed, -1))
}
