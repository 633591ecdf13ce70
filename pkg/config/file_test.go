package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/utils/ptr"
)

func TestNewFileDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if f.NotificationsEnabled() {
		t.Errorf("NotificationsEnabled() = true, want false")
	}
	if got := f.LowThreshold(); got != 25 {
		t.Errorf("LowThreshold() = %d, want 25", got)
	}
	if got := f.CriticalThreshold(); got != 5 {
		t.Errorf("CriticalThreshold() = %d, want 5", got)
	}
	if got := f.PollInterval(); got != "@every 10s" {
		t.Errorf("PollInterval() = %q", got)
	}
	if got := f.ReadTimeout(); got != 5*time.Second {
		t.Errorf("ReadTimeout() = %v", got)
	}
}

func TestFileSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	f := NewFileFromConfig(nil, path)
	f.SetNotificationsEnabled(true)
	f.SetLowThreshold(30)
	f.SetCriticalThreshold(10)
	f.SetSelectedDevice(2)
	f.SetReadTimeout(3 * time.Second)
	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if !loaded.NotificationsEnabled() || loaded.LowThreshold() != 30 || loaded.CriticalThreshold() != 10 ||
		loaded.SelectedDevice() != 2 || loaded.ReadTimeout() != 3*time.Second {
		t.Fatalf("loaded config does not match saved one: %v", loaded.LogrusFields())
	}
	// Untouched settings keep their defaults.
	if loaded.NotifyChargingStarted() {
		t.Errorf("NotifyChargingStarted() = true, want default false")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestFileLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if got := f.LowThreshold(); got != 25 {
		t.Errorf("LowThreshold() = %d, want 25", got)
	}
}

func TestFileLoadInvalidKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"lowThreshold": 40}`), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	for _, content := range []string{
		`{"lowThreshold": 140}`,
		`{"lowThreshold": 20, "criticalThreshold": 30}`,
		`{"pollInterval": "whenever"}`,
		`{"readTimeout": "-1s"}`,
		`{"lowThreshold": "forty"}`,
		`{`,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := f.Load(); err == nil {
			t.Errorf("Load(%s) succeeded, want error", content)
		}
		if got := f.LowThreshold(); got != 40 {
			t.Errorf("after Load(%s) LowThreshold() = %d, want previous 40", content, got)
		}
	}
}

func TestRawConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       RawConfig
		wantErr bool
	}{
		{name: "empty", c: RawConfig{}},
		{name: "duration interval", c: RawConfig{PollInterval: ptr.To("30s")}},
		{name: "cron interval", c: RawConfig{PollInterval: ptr.To("*/20 * * * * *")}},
		{name: "critical equals low", c: RawConfig{LowThreshold: ptr.To(10), CriticalThreshold: ptr.To(10)}},
		{name: "critical above default low", c: RawConfig{CriticalThreshold: ptr.To(30)}, wantErr: true},
		{name: "negative low", c: RawConfig{LowThreshold: ptr.To(-1)}, wantErr: true},
		{name: "negative device", c: RawConfig{SelectedDevice: ptr.To(-2)}, wantErr: true},
		{name: "sub-second interval", c: RawConfig{PollInterval: ptr.To("200ms")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	f := NewFileFromConfig(nil, path)
	if err := f.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 8)
	w, err := Watch(f, func() { reloaded <- struct{}{} })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`{"notificationsEnabled": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	if !f.NotificationsEnabled() {
		t.Errorf("NotificationsEnabled() = false after reload")
	}
}
