package tray

import (
	"fmt"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/lang"
)

// maxTooltipRunes is the size of the Windows notify icon tooltip buffer minus
// the terminator.
const maxTooltipRunes = 127

var errorTooltips = map[headset.Kind]lang.Key{
	headset.KindNoDevice:           lang.NoAdapterFound,
	headset.KindExecutableNotFound: lang.ExecutableNotFound,
	headset.KindProcessFailed:      lang.ProcessFailed,
	headset.KindParseFailed:        lang.OutputUnreadable,
	headset.KindTimeout:            lang.ToolTimeout,
}

func productName(s headset.Status) string {
	if s.Product != "" {
		return s.Product
	}
	return "Headset"
}

// Tooltip renders the tray tooltip for a poll result.
func Tooltip(tr *lang.Translator, r headset.Result) string {
	if r.Kind != headset.KindOK {
		key, ok := errorTooltips[r.Kind]
		if !ok {
			key = lang.ProcessFailed
		}
		return truncate(tr.T(key))
	}

	s := r.Status
	name := productName(s)
	var text string
	switch {
	case !s.Connected:
		text = fmt.Sprintf("%s %s", name, tr.T(lang.DeviceDisconnected))
	case s.Percent < 0:
		text = fmt.Sprintf("%s %s", name, tr.T(lang.BatteryUnavailable))
	default:
		text = fmt.Sprintf("%s: %d%% %s", name, s.Percent, tr.T(lang.BatteryRemaining))
	}
	if s.Connected && s.Charging {
		text += " " + tr.T(lang.DeviceCharging)
	}
	return truncate(text)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxTooltipRunes {
		return s
	}
	return string(r[:maxTooltipRunes-3]) + "..."
}
