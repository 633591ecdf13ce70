package tray

import (
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/config"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/lang"
)

// notification is one row of the notification table. Rows are checked in
// order and the first match wins, so more urgent rows come first.
type notification struct {
	name        string
	message     lang.Key
	withPercent bool
	match       func(prev, cur headset.Status, conf config.Config) bool
}

var notifications = []notification{
	{
		name:        "critical",
		message:     lang.BatteryCritical,
		withPercent: true,
		match: func(prev, cur headset.Status, conf config.Config) bool {
			return crossedDown(prev, cur, conf.CriticalThreshold())
		},
	},
	{
		name:        "low",
		message:     lang.BatteryLow,
		withPercent: true,
		match: func(prev, cur headset.Status, conf config.Config) bool {
			return crossedDown(prev, cur, conf.LowThreshold())
		},
	},
	{
		name:    "charge-complete",
		message: lang.ChargeComplete,
		match: func(prev, cur headset.Status, _ config.Config) bool {
			return prev.Charging && !cur.Charging && cur.Connected && cur.Level == headset.Level100
		},
	},
	{
		name:        "charging-started",
		message:     lang.ChargingStarted,
		withPercent: true,
		match: func(prev, cur headset.Status, conf config.Config) bool {
			return conf.NotifyChargingStarted() && !prev.Charging && cur.Charging && cur.Connected
		},
	},
}

// crossedDown is true only on the sample where the percentage first drops to
// or below threshold.
func crossedDown(prev, cur headset.Status, threshold int) bool {
	if !cur.Connected || cur.Charging || cur.Percent < 0 {
		return false
	}
	return prev.Percent > threshold && cur.Percent <= threshold
}

func selectNotification(prev, cur headset.Status, conf config.Config) (notification, bool) {
	for _, n := range notifications {
		if n.match(prev, cur, conf) {
			return n, true
		}
	}
	return notification{}, false
}
