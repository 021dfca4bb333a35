package normalize

import (
	"fmt"
	"strings"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

// Weather normalizes the current-conditions section into the device's full
// state record. prevEpoch is the observation epoch the device already
// holds: the provider has been known to resend observations months old, so
// anything not strictly newer is discarded with ErrStaleData and the prior
// state stays published. With IgnoreEstimated set, observations the
// provider marks as estimated are skipped with ErrEstimated.
func (n *Normalizer) Weather(snap *wx.Snapshot, b device.Binding, prevEpoch int64) (*device.Record, error) {
	newEpoch := snap.ObservationEpoch()
	if newEpoch <= prevEpoch {
		n.log.Info().Str("device", b.DisplayName()).Msg("latest data are older than data we already have, skipping update")
		return nil, wx.ErrStaleData
	}

	estimated := snap.Estimated()
	if estimated {
		n.log.Warn().Str("device", b.DisplayName()).Msg("these are estimated conditions, there may be other functioning weather stations nearby")
		if n.opts.IgnoreEstimated {
			return nil, wx.ErrEstimated
		}
	}

	rec := device.NewRecord()
	units := b.EffectiveUnits()
	doc := snap.Doc

	// Item-list temperature and on/off display.
	tempC, tempCUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "temp_c"))
	tempF, tempFUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "temp_f"))

	if units.Metricish() {
		rec.Set("temp", tempC, n.fmtTemperature(b, tempCUI))
		rec.SetText("tempIcon", iconValue(tempC, 0))
	} else {
		rec.Set("temp", tempF, n.fmtTemperature(b, tempFUI))
		rec.SetText("tempIcon", iconValue(tempF, 0))
	}

	tempVal, _ := rec.Get("temp")
	rec.SetOnline(true, tempVal.Display)

	rec.SetText("locationCity", wx.LookupString(doc, wx.DefaultText, "location", "city"))
	rec.SetText("stationID", stationID(snap))
	rec.SetText("neighborhood", neighborhood(snap))
	if estimated {
		rec.Set("estimated", "true", "True")
	} else {
		rec.Set("estimated", "false", "False")
	}

	// The provider's icon value does not distinguish day and night; both
	// forms are published so the host can pick per its daylight flag.
	icon := wx.LookupString(doc, wx.DefaultText, "current_observation", "icon")
	rec.SetText("properIconNameAllDay", icon)
	rec.SetText("properIconName", icon)

	n.stampObservation(rec, snap)
	rec.SetText("currentWeather", wx.LookupString(doc, wx.DefaultText, "current_observation", "weather"))

	trend := n.fmtPressureTrend(wx.LookupString(doc, "", "current_observation", "pressure_trend"))
	rec.SetText("pressureTrend", trend)

	// Not all stations report radiation or UV, and some report them as "".
	sRad, sRadUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "solarradiation"))
	rec.Set("solarradiation", sRad, sRadUI)
	uv, uvUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "UV"))
	rec.Set("uv", uv, uvUI)

	windDir := wx.LookupString(doc, wx.DefaultText, "current_observation", "wind_dir")
	rec.SetText("windDIR", windDir)
	rec.SetText("windDIRlong", windLongName(windDir))

	windDegrees, _ := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "wind_degrees"))
	rec.Set("windDegrees", int(windDegrees), fmt.Sprintf("%d", int(windDegrees)))

	humidityRaw := wx.LookupString(doc, "", "current_observation", "relative_humidity")
	humidity, humidityUI := wx.SanitizeNumeric(strings.TrimSuffix(humidityRaw, "%"))
	rec.Set("relativeHumidity", humidity, n.fmtPercentage(b, humidityUI))

	n.weatherWind(rec, snap, b)
	n.weatherHistory(rec, snap, b)

	// Temperature-adjacent readings share the metric/standard split.
	suffix := "_f"
	if units.Metricish() {
		suffix = "_c"
	}
	for _, t := range []struct{ key, field string }{
		{"dewpoint", "dewpoint"},
		{"feelslike", "feelslike"},
		{"heatIndex", "heat_index"},
		{"windchill", "windchill"},
	} {
		v, ui := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", t.field+suffix))
		rec.Set(t.key, v, n.fmtTemperature(b, ui))
	}

	if units.Metricish() {
		visibility, _ := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "visibility_km"))
		rec.Set("visibility", visibility, fmt.Sprintf("%d%s", roundInt(visibility), b.DistanceUnits))

		pressure, pressureUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "pressure_mb"))
		rec.Set("pressure", pressure, pressureUI+b.PressureUnits)
		rec.SetText("pressureIcon", fmt.Sprintf("%d", roundInt(pressure)))
	} else {
		visibility, _ := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "visibility_mi"))
		rec.Set("visibility", visibility, fmt.Sprintf("%d%s", roundInt(visibility), b.DistanceUnits))

		pressure, pressureUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "pressure_in"))
		rec.Set("pressure", pressure, pressureUI+b.PressureUnits)
		rec.SetText("pressureIcon", strings.ReplaceAll(pressureUI, ".", ""))
	}

	if units == device.UnitsMetric || units == device.UnitsMetricSI {
		precipToday, precipTodayUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "precip_today_metric"))
		rec.Set("precip_today", precipToday, n.fmtRain(b, precipTodayUI))
		precip1hr, precip1hrUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "precip_1hr_metric"))
		rec.Set("precip_1hr", precip1hr, n.fmtRain(b, precip1hrUI))
	} else {
		precipToday, precipTodayUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "precip_today_in"))
		rec.Set("precip_today", precipToday, n.fmtRain(b, precipTodayUI))
		precip1hr, precip1hrUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "precip_1hr_in"))
		rec.Set("precip_1hr", precip1hr, n.fmtRain(b, precip1hrUI))
	}

	return rec, nil
}

// weatherWind publishes the wind speed and gust family: numeric values,
// icon forms, and the three composite strings.
func (n *Normalizer) weatherWind(rec *device.Record, snap *wx.Snapshot, b device.Binding) {
	doc := snap.Doc
	windDir := wx.LookupString(doc, wx.DefaultText, "current_observation", "wind_dir")

	gustKph, gustKphUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "wind_gust_kph"))
	gustMph, gustMphUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "wind_gust_mph"))
	speedKph, speedKphUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "wind_kph"))
	speedMph, speedMphUI := wx.SanitizeNumeric(wx.Lookup(doc, nil, "current_observation", "wind_mph"))
	gustMps, gustMpsUI := wx.SanitizeNumeric(float64(int(gustKph * kphToMps)))
	speedMps, speedMpsUI := wx.SanitizeNumeric(float64(int(speedKph * kphToMps)))

	set := func(gust, speed float64, gustUI, speedUI, unitName string) {
		rec.Set("windGust", gust, n.fmtWind(b, gustUI))
		rec.Set("windSpeed", speed, n.fmtWind(b, speedUI))
		rec.SetText("windGustIcon", iconValue(gust, 1))
		rec.SetText("windSpeedIcon", iconValue(speed, 1))
		rec.SetText("windString", fmt.Sprintf("From the %s at %v %s Gusting to %v %s", windDir, speed, unitName, gust, unitName))
		rec.SetText("windShortString", fmt.Sprintf("%s at %v", windDir, speed))
	}

	switch b.EffectiveUnits() {
	case device.UnitsMetric:
		set(gustKph, speedKph, gustKphUI, speedKphUI, "KPH")
		rec.SetText("windStringMetric", fmt.Sprintf("From the %s at %v KPH Gusting to %v KPH", windDir, speedKph, gustKph))
	case device.UnitsMetricSI:
		set(gustMps, speedMps, gustMpsUI, speedMpsUI, "MPS")
		rec.SetText("windStringMetric", fmt.Sprintf("From the %s at %v KPH Gusting to %v KPH", windDir, speedKph, gustKph))
	default:
		set(gustMph, speedMph, gustMphUI, speedMphUI, "MPH")
		rec.SetText("windStringMetric", " ")
	}
}

// weatherHistory publishes yesterday's summary. Not every location
// supports history; missing data degrade to sentinels.
func (n *Normalizer) weatherHistory(rec *device.Record, snap *wx.Snapshot, b device.Binding) {
	history := wx.Lookup(snap.Doc, nil, "history", "dailysummary")
	if history == nil {
		n.log.Info().Str("device", b.DisplayName()).Msg("history data not supported for location")
		return
	}

	rec.SetText("historyDate", wx.LookupString(history, "", "date", "pretty"))

	units := b.EffectiveUnits()

	highKey, lowKey := "maxtempi", "mintempi"
	if units.Metricish() {
		highKey, lowKey = "maxtempm", "mintempm"
	}
	high, highUI := wx.SanitizeNumeric(wx.Lookup(history, nil, highKey))
	rec.Set("historyHigh", high, n.fmtTemperature(b, highUI))
	low, lowUI := wx.SanitizeNumeric(wx.Lookup(history, nil, lowKey))
	rec.Set("historyLow", low, n.fmtTemperature(b, lowUI))

	precipKey := "precipi"
	if units == device.UnitsMetric || units == device.UnitsMetricSI {
		precipKey = "precipm"
	}
	precip, precipUI := wx.SanitizeNumeric(wx.Lookup(history, nil, precipKey))
	rec.Set("historyPop", precip, n.fmtRain(b, precipUI))
}

// neighborhood resolves the colloquial name of the reporting station by
// matching its id against the geolookup nearby-station list.
func neighborhood(snap *wx.Snapshot) string {
	station := stationID(snap)
	stations := wx.LookupList(snap.Doc, "location", "nearby_weather_stations", "pws", "station")

	for _, entry := range stations {
		if wx.LookupString(entry, "", "id") == station {
			return wx.LookupString(entry, "", "neighborhood")
		}
	}
	return "Location not found."
}
