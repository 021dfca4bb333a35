package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

// Astronomy normalizes moon phase and sun phase data. The provider
// publishes sunrise and sunset twice with slightly different values; both
// copies are kept, and the combined timestamp states are derived from the
// moon phase pair.
func (n *Normalizer) Astronomy(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	n.stampObservation(rec, snap)

	texts := []struct {
		key  string
		path []string
	}{
		{"ageOfMoon", []string{"moon_phase", "ageOfMoon"}},
		{"currentTimeHour", []string{"moon_phase", "current_time", "hour"}},
		{"currentTimeMinute", []string{"moon_phase", "current_time", "minute"}},
		{"hemisphere", []string{"moon_phase", "hemisphere"}},
		{"phaseOfMoon", []string{"moon_phase", "phaseofMoon"}},
		{"sunriseHourMoonphase", []string{"moon_phase", "sunrise", "hour"}},
		{"sunriseHourSunphase", []string{"sun_phase", "sunrise", "hour"}},
		{"sunriseMinuteMoonphase", []string{"moon_phase", "sunrise", "minute"}},
		{"sunriseMinuteSunphase", []string{"sun_phase", "sunrise", "minute"}},
		{"sunsetHourMoonphase", []string{"moon_phase", "sunset", "hour"}},
		{"sunsetHourSunphase", []string{"sun_phase", "sunset", "hour"}},
		{"sunsetMinuteMoonphase", []string{"moon_phase", "sunset", "minute"}},
		{"sunsetMinuteSunphase", []string{"sun_phase", "sunset", "minute"}},
	}
	for _, t := range texts {
		rec.SetText(t.key, wx.LookupString(snap.Doc, wx.DefaultText, t.path...))
	}

	phase := wx.Stringify(rec.Value("phaseOfMoon"))
	rec.SetText("phaseOfMoonIcon", strings.ReplaceAll(phase, " ", "_"))

	illuminated := wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "moon_phase", "percentIlluminated"))
	rec.Set("percentIlluminated", illuminated, strconv.FormatFloat(illuminated, 'f', -1, 64))

	n.sunEvent(rec, snap.Doc, "sunrise")
	n.sunEvent(rec, snap.Doc, "sunset")

	rec.SetOnline(true, " ")

	return rec
}

// sunEvent projects the moon phase hour and minute pair onto today's date
// and publishes the rendered timestamp plus its epoch.
func (n *Normalizer) sunEvent(rec *device.Record, doc any, name string) {
	hour := wx.CoerceInt(wx.Lookup(doc, nil, "moon_phase", name, "hour"))
	minute := wx.CoerceInt(wx.Lookup(doc, nil, "moon_phase", name, "minute"))
	if hour < 0 || minute < 0 {
		return
	}

	today := n.now()
	at := time.Date(today.Year(), today.Month(), today.Day(), hour, minute, 0, 0, today.Location())

	rec.SetText(name+"String", at.Format(n.opts.TimeLayout))
	rec.Set(name+"Epoch", at.Unix(), strconv.FormatInt(at.Unix(), 10))
}
