package normalize

import (
	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

// Almanac normalizes historical temperature records and normals for the
// reporting airport station.
func (n *Normalizer) Almanac(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	n.stampObservation(rec, snap)

	rec.SetText("airportCode", wx.LookupString(snap.Doc, wx.DefaultText, "almanac", "airport_code"))

	highYear, highYearUI := wx.SanitizeNumeric(wx.Lookup(snap.Doc, nil, "almanac", "temp_high", "recordyear"))
	rec.Set("tempHighRecordYear", int(highYear), highYearUI)
	lowYear, lowYearUI := wx.SanitizeNumeric(wx.Lookup(snap.Doc, nil, "almanac", "temp_low", "recordyear"))
	rec.Set("tempLowRecordYear", int(lowYear), lowYearUI)

	temps := []struct {
		key  string
		path []string
	}{
		{"tempHighNormalC", []string{"almanac", "temp_high", "normal", "C"}},
		{"tempHighNormalF", []string{"almanac", "temp_high", "normal", "F"}},
		{"tempHighRecordC", []string{"almanac", "temp_high", "record", "C"}},
		{"tempHighRecordF", []string{"almanac", "temp_high", "record", "F"}},
		{"tempLowNormalC", []string{"almanac", "temp_low", "normal", "C"}},
		{"tempLowNormalF", []string{"almanac", "temp_low", "normal", "F"}},
		{"tempLowRecordC", []string{"almanac", "temp_low", "record", "C"}},
		{"tempLowRecordF", []string{"almanac", "temp_low", "record", "F"}},
	}
	for _, t := range temps {
		val, valUI := wx.SanitizeNumeric(wx.Lookup(snap.Doc, nil, t.path...))
		rec.Set(t.key, val, n.fmtTemperature(b, valUI))
	}

	rec.SetOnline(true, " ")

	return rec
}
