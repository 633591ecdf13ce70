package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	NotificationsEnabled() bool
	LowThreshold() int
	CriticalThreshold() int
	NotifyChargingStarted() bool
	PollInterval() string
	ReadTimeout() time.Duration
	HeadsetControlPath() string
	SelectedDevice() int

	SetNotificationsEnabled(bool)
	SetLowThreshold(int)
	SetCriticalThreshold(int)
	SetNotifyChargingStarted(bool)
	SetPollInterval(string)
	SetReadTimeout(time.Duration)
	SetHeadsetControlPath(string)
	SetSelectedDevice(int)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
