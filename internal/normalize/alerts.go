package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wxtools/stationpoll/internal/device"
	"github.com/wxtools/stationpoll/internal/wx"
)

const maxAlerts = 5

var htmlTags = regexp.MustCompile(`(<!--.*?-->|<[^>]*>)`)

// Alerts normalizes severe weather alerts. All five slots are cleared on
// every cycle and then repopulated so expired alerts do not linger in the
// published state.
func (n *Normalizer) Alerts(snap *wx.Snapshot, b device.Binding) *device.Record {
	rec := device.NewRecord()
	n.stampObservation(rec, snap)

	for slot := 1; slot <= maxAlerts; slot++ {
		rec.SetText(fmt.Sprintf("alertDescription%d", slot), " ")
		rec.SetText(fmt.Sprintf("alertExpires%d", slot), " ")
		rec.SetText(fmt.Sprintf("alertMessage%d", slot), " ")
		rec.SetText(fmt.Sprintf("alertType%d", slot), " ")
	}

	city := wx.LookupString(snap.Doc, wx.DefaultText, "location", "city")
	alerts := wx.LookupList(snap.Doc, "alerts")

	if len(alerts) == 0 {
		rec.Set("alertStatus", "false", "False")
		if !b.SuppressAlerts {
			n.log.Info().Str("location", b.Location).Msgf("no severe weather alerts for the %s location", city)
		}
		return rec
	}

	rec.Set("alertStatus", "true", "True")

	if !b.SuppressAlerts {
		if len(alerts) == 1 {
			n.log.Info().Str("location", b.Location).Msgf("1 severe weather alert for the %s location", city)
		} else {
			n.log.Info().Str("location", b.Location).Msgf("%d severe weather alerts for the %s location", len(alerts), city)
		}
		if len(alerts) > maxAlerts {
			n.log.Info().Msgf("only the first %d alerts are retained", maxAlerts)
		}
	}

	attribution := ""
	for i, alert := range alerts {
		// Attribution is required for the European alert source. It often
		// arrives wrapped in markup, so strip tags before logging.
		if raw := wx.LookupString(alert, "", "attribution"); raw != "" {
			attribution = "European weather alert " + strings.TrimSpace(htmlTags.ReplaceAllString(raw, ""))
		}

		if i >= maxAlerts {
			continue
		}
		slot := i + 1
		message := strings.TrimSpace(wx.LookupString(alert, wx.DefaultText, "message"))
		rec.SetText(fmt.Sprintf("alertType%d", slot), wx.LookupString(alert, wx.DefaultText, "type"))
		rec.SetText(fmt.Sprintf("alertDescription%d", slot), wx.LookupString(alert, wx.DefaultText, "description"))
		rec.SetText(fmt.Sprintf("alertMessage%d", slot), message)
		rec.SetText(fmt.Sprintf("alertExpires%d", slot), wx.LookupString(alert, wx.DefaultText, "expires"))

		if !b.SuppressAlerts {
			n.log.Info().Msg(message)
		}
	}

	if attribution != "" {
		n.log.Info().Msg(attribution)
	}

	return rec
}
