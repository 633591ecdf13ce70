package headset

import (
	"fmt"
	"slices"
)

// Level is a battery percentage bucketed to the coarse steps headsets report.
type Level int

const (
	LevelUnknown Level = -1
	Level0       Level = 0
	Level25      Level = 25
	Level50      Level = 50
	Level75      Level = 75
	Level100     Level = 100
)

// BucketLevel maps a raw percentage onto a Level. Negative values mean the
// headset did not report a level.
func BucketLevel(percent int) Level {
	switch {
	case percent < 0:
		return LevelUnknown
	case percent <= 12:
		return Level0
	case percent <= 37:
		return Level25
	case percent <= 62:
		return Level50
	case percent <= 87:
		return Level75
	default:
		return Level100
	}
}

func (l Level) String() string {
	if l == LevelUnknown {
		return "unknown"
	}
	return fmt.Sprintf("%d%%", int(l))
}

// Status is the battery state of a single headset.
type Status struct {
	Level     Level  `json:"level"`
	Percent   int    `json:"percent"`
	Charging  bool   `json:"charging"`
	Connected bool   `json:"connected"`
	Product   string `json:"product,omitempty"`
}

// Device is one entry of the device list reported by headsetcontrol.
type Device struct {
	Product string `json:"product"`
	Vendor  string `json:"vendor,omitempty"`
	Battery Status `json:"battery"`
}

// Name returns a human-readable name for the device.
func (d Device) Name() string {
	if d.Product != "" {
		return d.Product
	}
	if d.Vendor != "" {
		return d.Vendor
	}
	return "Headset"
}

// Kind classifies the outcome of a single read.
type Kind int

const (
	KindOK Kind = iota
	KindNoDevice
	KindExecutableNotFound
	KindProcessFailed
	KindParseFailed
	KindTimeout
)

var kindNames = map[Kind]string{
	KindOK:                 "ok",
	KindNoDevice:           "no-device",
	KindExecutableNotFound: "executable-not-found",
	KindProcessFailed:      "process-failed",
	KindParseFailed:        "parse-failed",
	KindTimeout:            "timeout",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", b)
}

// IsError reports whether the kind is a failure rather than a valid status.
func (k Kind) IsError() bool {
	return k != KindOK && k != KindNoDevice
}

// Result is the outcome of one ReadStatus call: a status for the selected
// device, or an error classification.
type Result struct {
	Kind    Kind     `json:"kind"`
	Status  Status   `json:"status"`
	Devices []Device `json:"devices,omitempty"`
	// Selected is the index of the device Status describes.
	Selected int `json:"selected"`
	// Err is the underlying error. It is not carried across the event hub;
	// use Message there.
	Err     error  `json:"-"`
	Message string `json:"message,omitempty"`
}

// Equal compares two results for change detection. Error messages are not
// compared, only their classification.
func (r Result) Equal(o Result) bool {
	return r.Kind == o.Kind &&
		r.Status == o.Status &&
		r.Selected == o.Selected &&
		slices.Equal(r.Devices, o.Devices)
}

// ErrorResult builds a result for a failed read.
func ErrorResult(err error) Result {
	return Result{
		Kind:    Classify(err),
		Status:  Status{Level: LevelUnknown, Percent: -1},
		Err:     err,
		Message: err.Error(),
	}
}
