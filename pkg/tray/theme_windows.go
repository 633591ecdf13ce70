package tray

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/icon"
)

const personalizeKey = `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`

// DetectTheme reads whether the taskbar uses the light theme. Any failure
// falls back to dark, which is the Windows default for the taskbar.
func DetectTheme() icon.Theme {
	k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, registry.QUERY_VALUE)
	if err != nil {
		logrus.WithError(err).Debug("failed to open personalize key")
		return icon.ThemeDark
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue("SystemUsesLightTheme")
	if err != nil {
		logrus.WithError(err).Debug("failed to read SystemUsesLightTheme")
		return icon.ThemeDark
	}
	if v == 1 {
		return icon.ThemeLight
	}
	return icon.ThemeDark
}
