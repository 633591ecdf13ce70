//go:build !windows

package tray

import "github.com/headset-battery-indicator/headset-battery-indicator/pkg/icon"

func DetectTheme() icon.Theme {
	return icon.ThemeDark
}
