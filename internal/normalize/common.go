package normalize

import (
	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

// stampObservation publishes the observation header every category record
// carries: the provider's human-readable observation time, its epoch, and
// a local 24-hour rendering.
func (n *Normalizer) stampObservation(rec *device.Record, snap *wx.Snapshot) {
	obsTime := wx.LookupString(snap.Doc, wx.DefaultText, "current_observation", "observation_time")
	obsEpoch := wx.LookupString(snap.Doc, "", "current_observation", "observation_epoch")

	rec.SetText("currentObservation", obsTime)
	rec.SetText("currentObservationEpoch", obsEpoch)
	rec.SetText("currentObservation24hr", n.observationClock(snap.ObservationEpoch()))
}

// stationID returns the reporting station for the location; the host uses
// it as the device address.
func stationID(snap *wx.Snapshot) string {
	return wx.LookupString(snap.Doc, "", "current_observation", "station_id")
}
