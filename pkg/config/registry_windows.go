//go:build windows

package config

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"
)

// RegistryKeyPath is where the settings live under HKEY_CURRENT_USER. The
// NotificationsEnabled DWORD is compatible with earlier releases.
const RegistryKeyPath = `Software\HeadsetBatteryIndicator`

var _ Config = &Registry{}

// Registry stores the settings as values of a per-user registry key.
type Registry struct {
	values
	keyPath string
}

func NewRegistry(keyPath string) (*Registry, error) {
	if keyPath == "" {
		keyPath = RegistryKeyPath
	}
	r := &Registry{
		values:  newValues(nil),
		keyPath: keyPath,
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) openKey() (registry.Key, error) {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, r.keyPath, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to open registry key HKCU\\%s", r.keyPath)
	}
	return key, nil
}

func (r *Registry) Load() error {
	key, err := r.openKey()
	if err != nil {
		return err
	}
	defer key.Close()

	conf := RawConfig{}
	if conf.NotificationsEnabled, err = readBool(key, "NotificationsEnabled"); err != nil {
		return err
	}
	if conf.LowThreshold, err = readInt(key, "LowThreshold"); err != nil {
		return err
	}
	if conf.CriticalThreshold, err = readInt(key, "CriticalThreshold"); err != nil {
		return err
	}
	if conf.NotifyChargingStarted, err = readBool(key, "NotifyChargingStarted"); err != nil {
		return err
	}
	if conf.PollInterval, err = readString(key, "PollInterval"); err != nil {
		return err
	}
	if conf.ReadTimeout, err = readString(key, "ReadTimeout"); err != nil {
		return err
	}
	if conf.HeadsetControlPath, err = readString(key, "HeadsetControlPath"); err != nil {
		return err
	}
	if conf.SelectedDevice, err = readInt(key, "SelectedDevice"); err != nil {
		return err
	}

	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid settings in HKCU\\%s", r.keyPath)
	}
	r.replace(&conf)
	return nil
}

func (r *Registry) Save() error {
	key, err := r.openKey()
	if err != nil {
		return err
	}
	defer key.Close()

	conf := r.snapshot()
	writes := []error{
		writeBool(key, "NotificationsEnabled", conf.NotificationsEnabled),
		writeInt(key, "LowThreshold", conf.LowThreshold),
		writeInt(key, "CriticalThreshold", conf.CriticalThreshold),
		writeBool(key, "NotifyChargingStarted", conf.NotifyChargingStarted),
		writeString(key, "PollInterval", conf.PollInterval),
		writeString(key, "ReadTimeout", conf.ReadTimeout),
		writeString(key, "HeadsetControlPath", conf.HeadsetControlPath),
		writeInt(key, "SelectedDevice", conf.SelectedDevice),
	}
	if err := errors.Join(writes...); err != nil {
		return pkgerrors.Wrapf(err, "failed to save settings to HKCU\\%s", r.keyPath)
	}
	return nil
}

func readInt(key registry.Key, name string) (*int, error) {
	v, _, err := key.GetIntegerValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read %s", name)
	}
	i := int(v)
	return &i, nil
}

func readBool(key registry.Key, name string) (*bool, error) {
	i, err := readInt(key, name)
	if i == nil || err != nil {
		return nil, err
	}
	b := *i != 0
	return &b, nil
}

func readString(key registry.Key, name string) (*string, error) {
	v, _, err := key.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read %s", name)
	}
	return &v, nil
}

func writeInt(key registry.Key, name string, v *int) error {
	if v == nil {
		return nil
	}
	return key.SetDWordValue(name, uint32(*v))
}

func writeBool(key registry.Key, name string, v *bool) error {
	if v == nil {
		return nil
	}
	var d uint32
	if *v {
		d = 1
	}
	return key.SetDWordValue(name, d)
}

func writeString(key registry.Key, name string, v *string) error {
	if v == nil {
		return nil
	}
	return key.SetStringValue(name, *v)
}
