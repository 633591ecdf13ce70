package config

import (
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/poller"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/utils/ptr"
)

var (
	defaultRawConfig = &RawConfig{
		NotificationsEnabled:  ptr.To(false),
		LowThreshold:          ptr.To(25),
		CriticalThreshold:     ptr.To(5),
		NotifyChargingStarted: ptr.To(false),
		PollInterval:          ptr.To(poller.DefaultInterval),
		ReadTimeout:           ptr.To("5s"),
		HeadsetControlPath:    ptr.To(""),
		SelectedDevice:        ptr.To(0),
	}
)

// RawConfig is the serialized form of the settings. Nil fields fall back to
// their defaults, so older files keep working when settings are added.
type RawConfig struct {
	NotificationsEnabled  *bool   `json:"notificationsEnabled,omitempty"`
	LowThreshold          *int    `json:"lowThreshold,omitempty"`
	CriticalThreshold     *int    `json:"criticalThreshold,omitempty"`
	NotifyChargingStarted *bool   `json:"notifyChargingStarted,omitempty"`
	PollInterval          *string `json:"pollInterval,omitempty"`
	ReadTimeout           *string `json:"readTimeout,omitempty"`
	HeadsetControlPath    *string `json:"headsetControlPath,omitempty"`
	SelectedDevice        *int    `json:"selectedDevice,omitempty"`
}

// Validate checks the values that are set.
func (c *RawConfig) Validate() error {
	low := *defaultRawConfig.LowThreshold
	if c.LowThreshold != nil {
		low = *c.LowThreshold
	}
	if low < 0 || low > 100 {
		return pkgerrors.Errorf("low battery threshold %d is not between 0 and 100", low)
	}

	if c.CriticalThreshold != nil && (*c.CriticalThreshold < 0 || *c.CriticalThreshold > low) {
		return pkgerrors.Errorf("critical battery threshold %d is not between 0 and the low threshold %d", *c.CriticalThreshold, low)
	}

	if c.PollInterval != nil {
		if _, err := poller.ParseSchedule(*c.PollInterval); err != nil {
			return pkgerrors.Wrapf(err, "invalid poll interval %q", *c.PollInterval)
		}
	}

	if c.ReadTimeout != nil {
		d, err := time.ParseDuration(*c.ReadTimeout)
		if err != nil {
			return pkgerrors.Wrapf(err, "invalid read timeout %q", *c.ReadTimeout)
		}
		if d <= 0 {
			return pkgerrors.Errorf("read timeout %s must be positive", d)
		}
	}

	if c.SelectedDevice != nil && *c.SelectedDevice < 0 {
		return pkgerrors.Errorf("selected device %d is negative", *c.SelectedDevice)
	}

	return nil
}

// values implements the getters and setters shared by every backend.
type values struct {
	c  *RawConfig
	mu *sync.RWMutex
}

func newValues(c *RawConfig) values {
	if c == nil {
		c = &RawConfig{}
	}
	return values{c: c, mu: &sync.RWMutex{}}
}

func (v values) NotificationsEnabled() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.NotificationsEnabled != nil {
		return *v.c.NotificationsEnabled
	}
	return *defaultRawConfig.NotificationsEnabled
}

func (v values) LowThreshold() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.LowThreshold != nil {
		return *v.c.LowThreshold
	}
	return *defaultRawConfig.LowThreshold
}

func (v values) CriticalThreshold() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.CriticalThreshold != nil {
		return *v.c.CriticalThreshold
	}
	return *defaultRawConfig.CriticalThreshold
}

func (v values) NotifyChargingStarted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.NotifyChargingStarted != nil {
		return *v.c.NotifyChargingStarted
	}
	return *defaultRawConfig.NotifyChargingStarted
}

func (v values) PollInterval() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.PollInterval != nil && *v.c.PollInterval != "" {
		return *v.c.PollInterval
	}
	return *defaultRawConfig.PollInterval
}

func (v values) ReadTimeout() time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()

	raw := *defaultRawConfig.ReadTimeout
	if v.c.ReadTimeout != nil {
		raw = *v.c.ReadTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(*defaultRawConfig.ReadTimeout)
	}
	return d
}

func (v values) HeadsetControlPath() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.HeadsetControlPath != nil {
		return *v.c.HeadsetControlPath
	}
	return *defaultRawConfig.HeadsetControlPath
}

func (v values) SelectedDevice() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.c.SelectedDevice != nil {
		return *v.c.SelectedDevice
	}
	return *defaultRawConfig.SelectedDevice
}

func (v values) SetNotificationsEnabled(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.NotificationsEnabled = &b
}

func (v values) SetLowThreshold(i int) {
	if i < 0 || i > 100 {
		panic("low threshold must be between 0 and 100")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.LowThreshold = &i
}

func (v values) SetCriticalThreshold(i int) {
	if i < 0 || i > v.LowThreshold() {
		panic("critical threshold must be between 0 and the low threshold")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.CriticalThreshold = &i
}

func (v values) SetNotifyChargingStarted(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.NotifyChargingStarted = &b
}

func (v values) SetPollInterval(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.PollInterval = &s
}

func (v values) SetReadTimeout(d time.Duration) {
	s := d.String()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.ReadTimeout = &s
}

func (v values) SetHeadsetControlPath(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.HeadsetControlPath = &s
}

func (v values) SetSelectedDevice(i int) {
	if i < 0 {
		i = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.c.SelectedDevice = &i
}

// replace swaps in a freshly loaded config.
func (v values) replace(c *RawConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()
	*v.c = *c
}

// snapshot returns a copy of the raw config.
func (v values) snapshot() RawConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return *v.c
}

func (v values) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"notificationsEnabled":  v.NotificationsEnabled(),
		"lowThreshold":          v.LowThreshold(),
		"criticalThreshold":     v.CriticalThreshold(),
		"notifyChargingStarted": v.NotifyChargingStarted(),
		"pollInterval":          v.PollInterval(),
		"readTimeout":           v.ReadTimeout().String(),
		"headsetControlPath":    v.HeadsetControlPath(),
		"selectedDevice":        v.SelectedDevice(),
	}
}
