package tray

import (
	"fmt"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/lang"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/version"
)

// maxDeviceSlots is how many device entries the menu can show. systray
// cannot insert items later, so the slots are created up front and hidden.
const maxDeviceSlots = 8

// MenuActions are invoked from the menu goroutine when items are clicked.
type MenuActions struct {
	SelectDevice  func(idx int)
	Notifications func(enabled bool)
	ViewLogs      func()
	ViewUpdates   func()
	Quit          func()
}

// SystemTray forwards to the systray package.
type SystemTray struct{}

func (SystemTray) SetIcon(b []byte)    { systray.SetIcon(b) }
func (SystemTray) SetTooltip(s string) { systray.SetTooltip(s) }

type Menu struct {
	tr      *lang.Translator
	actions MenuActions

	version       *systray.MenuItem
	devices       []*systray.MenuItem
	notifications *systray.MenuItem
	viewLogs      *systray.MenuItem
	viewUpdates   *systray.MenuItem
	quit          *systray.MenuItem

	selectCh chan int
	// done is closed when the click loop exits.
	done chan struct{}
}

// NewMenu builds the tray menu. It must be called from systray's onReady.
func NewMenu(tr *lang.Translator, notificationsEnabled bool, actions MenuActions) *Menu {
	c := &Menu{
		tr:       tr,
		actions:  actions,
		selectCh: make(chan int),
		done:     make(chan struct{}),
	}

	c.version = systray.AddMenuItem(fmt.Sprintf("%s %s", tr.T(lang.Version), version.Version), "")
	c.version.Disable()
	systray.AddSeparator()

	for i := 0; i < maxDeviceSlots; i++ {
		item := systray.AddMenuItemCheckbox("", "", false)
		item.Hide()
		c.devices = append(c.devices, item)
		go func(idx int, item *systray.MenuItem) {
			for range item.ClickedCh {
				if !c.forwardSelect(idx) {
					return
				}
			}
		}(i, item)
	}
	systray.AddSeparator()

	c.notifications = systray.AddMenuItemCheckbox(tr.T(lang.Notifications), "", notificationsEnabled)
	c.viewLogs = systray.AddMenuItem(tr.T(lang.ViewLogs), "")
	c.viewUpdates = systray.AddMenuItem(tr.T(lang.ViewUpdates), version.ReleasesURL)
	systray.AddSeparator()
	c.quit = systray.AddMenuItem(tr.T(lang.QuitProgram), "")

	go c.loop()
	return c
}

// forwardSelect hands a device click to the loop. It returns false once the
// loop has exited.
func (c *Menu) forwardSelect(idx int) bool {
	select {
	case c.selectCh <- idx:
		return true
	case <-c.done:
		return false
	}
}

func (c *Menu) loop() {
	defer close(c.done)

	call := func(f func()) {
		if f != nil {
			f()
		}
	}

	for {
		select {
		case idx := <-c.selectCh:
			logrus.WithField("device", idx).Info("device selected from menu")
			if c.actions.SelectDevice != nil {
				c.actions.SelectDevice(idx)
			}
		case <-c.notifications.ClickedCh:
			enabled := !c.notifications.Checked()
			c.SetNotificationsChecked(enabled)
			logrus.WithField("enabled", enabled).Info("notifications toggled from menu")
			if c.actions.Notifications != nil {
				c.actions.Notifications(enabled)
			}
		case <-c.viewLogs.ClickedCh:
			call(c.actions.ViewLogs)
		case <-c.viewUpdates.ClickedCh:
			call(c.actions.ViewUpdates)
		case <-c.quit.ClickedCh:
			call(c.actions.Quit)
			return
		}
	}
}

// SetNotificationsChecked syncs the checkbox with the settings.
func (c *Menu) SetNotificationsChecked(enabled bool) {
	if enabled {
		c.notifications.Check()
	} else {
		c.notifications.Uncheck()
	}
}

// SetDevices shows one checkbox per reported device with the selected one
// ticked.
func (c *Menu) SetDevices(devices []headset.Device, selected int) {
	if len(devices) > len(c.devices) {
		logrus.WithField("devices", len(devices)).Debug("more devices than menu slots, hiding the rest")
	}
	for i, item := range c.devices {
		if i >= len(devices) {
			item.Hide()
			continue
		}
		item.SetTitle(DeviceLabel(c.tr, devices[i]))
		if i == selected {
			item.Check()
		} else {
			item.Uncheck()
		}
		item.Show()
	}
}

// DeviceLabel is the menu text for a device.
func DeviceLabel(tr *lang.Translator, d headset.Device) string {
	b := d.Battery
	switch {
	case !b.Connected:
		return fmt.Sprintf("%s %s", d.Name(), tr.T(lang.DeviceDisconnected))
	case b.Percent < 0:
		return fmt.Sprintf("%s %s", d.Name(), tr.T(lang.BatteryUnavailable))
	case b.Charging:
		return fmt.Sprintf("%s (%d%%) %s", d.Name(), b.Percent, tr.T(lang.DeviceCharging))
	default:
		return fmt.Sprintf("%s (%d%%)", d.Name(), b.Percent)
	}
}
