package normalize

import (
	"fmt"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

const maxHourlyForecasts = 24

// Hourly normalizes the hourly forecast, truncated to 24 entries. Slot
// names carry a leading zero (h01..h24) so they sort in the host UI.
func (n *Normalizer) Hourly(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	n.stampObservation(rec, snap)

	for i, hour := range wx.LookupList(snap.Doc, "hourly_forecast") {
		if i >= maxHourlyForecasts {
			break
		}
		n.hourlyEntry(rec, hour, b, padCounter(i+1))
	}

	return rec
}

func (n *Normalizer) hourlyEntry(rec *device.Record, hour any, b device.Binding, slot string) {
	units := b.EffectiveUnits()

	condition := wx.LookupString(hour, wx.DefaultText, "condition")
	icon := wx.LookupString(hour, wx.DefaultText, "icon")
	civilTime := wx.LookupString(hour, wx.DefaultText, "FCTTIME", "civil")
	windDir := wx.LookupString(hour, wx.DefaultText, "wdir", "dir")

	rec.SetText(fmt.Sprintf("h%s_cond", slot), condition)
	rec.SetText(fmt.Sprintf("h%s_icon", slot), icon)
	rec.SetText(fmt.Sprintf("h%s_proper_icon", slot), icon)
	rec.SetText(fmt.Sprintf("h%s_time", slot), civilTime)
	rec.SetText(fmt.Sprintf("h%s_windDirLong", slot), windLongName(windDir))

	windDegrees, _ := wx.SanitizeNumeric(wx.Lookup(hour, nil, "wdir", "degrees"))
	rec.Set(fmt.Sprintf("h%s_windDegrees", slot), int(windDegrees), fmt.Sprintf("%d", int(windDegrees)))

	timeLong := fmt.Sprintf("%s-%s-%s %s:%s",
		wx.LookupString(hour, "", "FCTTIME", "year"),
		wx.LookupString(hour, "", "FCTTIME", "mon_padded"),
		wx.LookupString(hour, "", "FCTTIME", "mday_padded"),
		wx.LookupString(hour, "", "FCTTIME", "hour_padded"),
		wx.LookupString(hour, "", "FCTTIME", "min"))
	rec.SetText(fmt.Sprintf("h%s_timeLong", slot), timeLong)

	humidity, humidityUI := wx.SanitizeNumeric(wx.Lookup(hour, nil, "humidity"))
	rec.Set(fmt.Sprintf("h%s_humidity", slot), humidity, n.fmtPercentage(b, humidityUI))

	pop, popUI := wx.SanitizeNumeric(wx.Lookup(hour, nil, "pop"))
	rec.Set(fmt.Sprintf("h%s_precip", slot), pop, n.fmtPercentage(b, popUI))

	tempKey := "english"
	if units.Metricish() {
		tempKey = "metric"
	}
	temp, tempUI := wx.SanitizeNumeric(wx.Lookup(hour, nil, "temp", tempKey))
	rec.Set(fmt.Sprintf("h%s_temp", slot), temp, n.fmtTemperature(b, tempUI))

	measureKey := "english"
	if units == device.UnitsMetric || units == device.UnitsMetricSI {
		measureKey = "metric"
	}
	qpf, qpfUI := wx.SanitizeNumeric(wx.Lookup(hour, nil, "qpf", measureKey))
	rec.Set(fmt.Sprintf("h%s_qpf", slot), qpf, n.fmtRain(b, qpfUI))
	snow, snowUI := wx.SanitizeNumeric(wx.Lookup(hour, nil, "snow", measureKey))
	rec.Set(fmt.Sprintf("h%s_snow", slot), snow, n.fmtSnow(b, snowUI))

	windSpeed, windSpeedUI := wx.SanitizeNumeric(wx.Lookup(hour, nil, "wspd", measureKey))
	if units == device.UnitsMetricSI {
		windSpeed, windSpeedUI = wx.SanitizeNumeric(windSpeed * kphToMps)
	}
	rec.Set(fmt.Sprintf("h%s_windSpeed", slot), windSpeed, n.fmtWind(b, windSpeedUI))
	rec.SetText(fmt.Sprintf("h%s_windSpeedIcon", slot), iconValue(windSpeed, -1))

	if b.WindDirAsDegrees {
		rec.Set(fmt.Sprintf("h%s_windDir", slot), int(windDegrees), fmt.Sprintf("%d", int(windDegrees)))
	} else {
		rec.SetText(fmt.Sprintf("h%s_windDir", slot), windDir)
	}
}
