package headset

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
)

// Battery states as printed by headsetcontrol.
const (
	batteryAvailable   = "BATTERY_AVAILABLE"
	batteryCharging    = "BATTERY_CHARGING"
	batteryUnavailable = "BATTERY_UNAVAILABLE"
)

// rawOutput mirrors the parts of `headsetcontrol -o json` we care about.
// Everything else is ignored so newer tool versions keep working.
type rawOutput struct {
	DeviceCount *int        `json:"device_count"`
	Devices     []rawDevice `json:"devices"`
}

type rawDevice struct {
	Status  string      `json:"status"`
	Device  string      `json:"device"`
	Vendor  string      `json:"vendor"`
	Product string      `json:"product"`
	Battery *rawBattery `json:"battery"`
}

type rawBattery struct {
	Status string `json:"status"`
	Level  *int   `json:"level"`
}

// ParseOutput parses the JSON report of headsetcontrol into a device list.
// An empty list is a valid result meaning no supported device was found.
func ParseOutput(out []byte) ([]Device, error) {
	start := reportStart(out)
	if start < 0 {
		return nil, pkgerrors.Wrapf(ErrOutputParse, "no JSON object in output %q", excerpt(out))
	}

	var raw rawOutput
	if err := json.Unmarshal(out[start:], &raw); err != nil {
		return nil, pkgerrors.Wrapf(ErrOutputParse, "%v", err)
	}
	if raw.DeviceCount == nil && raw.Devices == nil {
		return nil, pkgerrors.Wrapf(ErrOutputParse, "no device list in output %q", excerpt(out))
	}
	if raw.DeviceCount != nil && *raw.DeviceCount != len(raw.Devices) {
		return nil, pkgerrors.Wrapf(ErrOutputParse, "device_count is %d but %d devices are listed", *raw.DeviceCount, len(raw.Devices))
	}

	devices := make([]Device, 0, len(raw.Devices))
	for _, d := range raw.Devices {
		devices = append(devices, d.toDevice())
	}

	return devices, nil
}

// reportStart returns the offset of the first line that starts with '{'.
// Older builds may print warnings before the report, and those can contain
// braces themselves.
func reportStart(out []byte) int {
	offset := 0
	for len(out) > 0 {
		line := out
		next := len(out)
		if i := bytes.IndexByte(out, '\n'); i >= 0 {
			line, next = out[:i], i+1
		}
		trimmed := bytes.TrimLeft(line, " \t\r\ufeff")
		if len(trimmed) > 0 && trimmed[0] == '{' {
			return offset + len(line) - len(trimmed)
		}
		out = out[next:]
		offset += next
	}
	return -1
}

func (d rawDevice) toDevice() Device {
	product := d.Product
	if product == "" {
		product = d.Device
	}

	st := Status{
		Level:   LevelUnknown,
		Percent: -1,
		Product: product,
	}

	if d.Battery != nil {
		switch d.Battery.Status {
		case batteryAvailable:
			st.Connected = true
		case batteryCharging:
			st.Connected = true
			st.Charging = true
		case batteryUnavailable:
			// Adapter present, headset switched off or out of range.
		}

		if st.Connected && d.Battery.Level != nil && *d.Battery.Level >= 0 {
			st.Percent = min(*d.Battery.Level, 100)
			st.Level = BucketLevel(st.Percent)
		}
	}

	return Device{
		Product: product,
		Vendor:  d.Vendor,
		Battery: st,
	}
}

func excerpt(b []byte) string {
	const maxLen = 120
	b = bytes.TrimSpace(b)
	if len(b) > maxLen {
		return string(b[:maxLen]) + "..."
	}
	return string(b)
}
