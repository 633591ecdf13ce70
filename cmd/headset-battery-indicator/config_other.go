//go:build !windows

package main

import (
	"path/filepath"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/config"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/logging"
)

func defaultConfigLocation() string {
	dir, err := logging.DataDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(dir, "config.json")
}

func loadConfig() (config.Config, *config.File, error) {
	path := configPath
	if path == "" {
		path = defaultConfigLocation()
	}

	f, err := config.NewFile(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
