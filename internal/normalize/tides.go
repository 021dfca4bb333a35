package normalize

import (
	"fmt"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

const maxTideObservations = 31

// Tides normalizes the tide summary. Coverage is coastal only; inland
// locations come back with an empty site name and ±99 summary heights,
// which are published with placeholder displays rather than dropped.
func (n *Normalizer) Tides(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	n.stampObservation(rec, snap)

	site := wx.LookupString(snap.Doc, "", "tide", "tideInfo", "tideSite")
	if site == "" || site == " " {
		rec.SetText("tideSite", "No tide info.")
	} else {
		rec.SetText("tideSite", site)
	}

	minHeight := wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "tide", "tideSummaryStats", "minheight"))
	if minHeight == 99 {
		rec.Set("minHeight", minHeight, wx.SentinelDisplay)
	} else {
		rec.Set("minHeight", minHeight, fmt.Sprintf("%v", minHeight))
	}

	maxHeight := wx.CoerceFloat(wx.Lookup(snap.Doc, nil, "tide", "tideSummaryStats", "maxheight"))
	if maxHeight == -99 {
		rec.Set("maxHeight", maxHeight, wx.SentinelDisplay)
	} else {
		rec.Set("maxHeight", maxHeight, fmt.Sprintf("%v", maxHeight))
	}

	for i, obs := range wx.LookupList(snap.Doc, "tide", "tideSummary") {
		if i >= maxTideObservations {
			break
		}
		slot := i + 1
		rec.SetText(fmt.Sprintf("p%d_pretty", slot), wx.LookupString(obs, wx.DefaultText, "date", "pretty"))
		rec.SetText(fmt.Sprintf("p%d_height", slot), wx.LookupString(obs, wx.DefaultText, "data", "height"))
		rec.SetText(fmt.Sprintf("p%d_type", slot), wx.LookupString(obs, wx.DefaultText, "data", "type"))
	}

	rec.SetOnline(true, " ")

	return rec
}
