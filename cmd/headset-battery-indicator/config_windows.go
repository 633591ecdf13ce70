package main

import (
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/config"
)

func defaultConfigLocation() string {
	return `HKCU\` + config.RegistryKeyPath
}

// loadConfig uses the registry unless --config names a file. The returned
// *config.File is nil for the registry backend.
func loadConfig() (config.Config, *config.File, error) {
	if configPath != "" {
		f, err := config.NewFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	}

	r, err := config.NewRegistry(config.RegistryKeyPath)
	if err != nil {
		return nil, nil, err
	}
	return r, nil, nil
}
