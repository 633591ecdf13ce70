package main

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/getlantern/systray"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/config"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/events"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/icon"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/lang"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/logging"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/notify"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/poller"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/tray"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/version"
)

// pollSettings are the settings that need a new reader and poller when they
// change.
type pollSettings struct {
	interval string
	timeout  time.Duration
	path     string
}

type app struct {
	ctx    context.Context
	cancel context.CancelFunc

	conf     config.Config
	file     *config.File
	watcher  *config.Watcher
	tr       *lang.Translator
	hub      *events.EventHub
	notifier *notify.Notifier
	menu     *tray.Menu

	mu       sync.Mutex
	reader   *headset.Reader
	poller   *poller.Poller
	applied  pollSettings
	selected int
}

func runTray(ctx context.Context) error {
	logrus.WithField("version", version.Version).
		WithField("gitCommit", version.GitCommit).
		WithField("goos", runtime.GOOS).
		Info("headset battery indicator")

	conf, file, err := loadConfig()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to load settings")
	}
	logrus.WithFields(conf.LogrusFields()).Info("settings loaded")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := &app{
		ctx:      ctx,
		cancel:   cancel,
		conf:     conf,
		file:     file,
		tr:       lang.NewTranslator(lang.Detect(langOverride)),
		hub:      events.NewEventHub(),
		notifier: notify.New(conf.NotificationsEnabled()),
	}

	systray.Run(a.onReady, a.onExit)
	return nil
}

func (a *app) onReady() {
	a.menu = tray.NewMenu(a.tr, a.conf.NotificationsEnabled(), tray.MenuActions{
		SelectDevice:  a.selectDevice,
		Notifications: a.setNotifications,
		ViewLogs:      a.viewLogs,
		ViewUpdates: func() {
			if err := tray.Open(version.ReleasesURL); err != nil {
				logrus.WithError(err).Error("failed to open releases page")
			}
		},
		Quit: a.cancel,
	})

	presenter := tray.New(tray.Options{
		Tray:       tray.SystemTray{},
		Notifier:   a.notifier,
		Config:     a.conf,
		Translator: a.tr,
		Icons:      icon.NewNativeCache(),
		Theme:      tray.DetectTheme,
		Menu:       a.menu,
	})
	presenter.ShowLoading()

	ch := a.hub.Subscribe()
	go presenter.Run(a.ctx, ch)

	a.mu.Lock()
	a.startPollerLocked()
	a.mu.Unlock()

	if a.file != nil {
		w, err := config.Watch(a.file, a.onConfigReload)
		if err != nil {
			logrus.WithError(err).Warn("failed to watch settings file, changes need a restart")
		} else {
			a.mu.Lock()
			a.watcher = w
			a.mu.Unlock()
		}
	}

	go func() {
		<-a.ctx.Done()
		logrus.Info("shutting down")
		systray.Quit()
	}()
}

func (a *app) onExit() {
	a.cancel()

	a.mu.Lock()
	if a.poller != nil {
		a.poller.Stop()
	}
	watcher := a.watcher
	a.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	a.hub.Close()
	logrus.Info("tray exited")
}

func (a *app) currentPollSettings() pollSettings {
	return pollSettings{
		interval: a.conf.PollInterval(),
		timeout:  a.conf.ReadTimeout(),
		path:     effectiveHeadsetControlPath(a.conf.HeadsetControlPath()),
	}
}

func (a *app) startPollerLocked() {
	settings := a.currentPollSettings()

	schedule, err := poller.ParseSchedule(settings.interval)
	if err != nil {
		logrus.WithError(err).WithField("pollInterval", settings.interval).Warn("invalid poll interval, using default")
		schedule = nil
	}

	a.reader = headset.NewReader(headset.Options{
		Path:    settings.path,
		Timeout: settings.timeout,
	})
	a.selected = a.conf.SelectedDevice()
	a.reader.SetSelected(a.selected)

	a.poller = poller.New(a.reader, a.hub, schedule)
	a.poller.Start(a.ctx)
	a.applied = settings
}

func (a *app) onConfigReload() {
	logrus.WithFields(a.conf.LogrusFields()).Info("settings reloaded")

	a.notifier.SetEnabled(a.conf.NotificationsEnabled())
	if a.menu != nil {
		a.menu.SetNotificationsChecked(a.conf.NotificationsEnabled())
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentPollSettings() != a.applied {
		logrus.Info("poll settings changed, restarting poller")
		a.poller.Stop()
		a.startPollerLocked()
		return
	}
	if sel := a.conf.SelectedDevice(); sel != a.selected {
		a.selected = sel
		a.reader.SetSelected(sel)
		a.poller.Refresh()
	}
}

func (a *app) selectDevice(idx int) {
	a.conf.SetSelectedDevice(idx)
	if err := a.conf.Save(); err != nil {
		logrus.WithError(err).Error("failed to save selected device")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.poller == nil {
		return
	}
	a.selected = idx
	a.reader.SetSelected(idx)
	a.poller.Refresh()
}

func (a *app) setNotifications(enabled bool) {
	a.conf.SetNotificationsEnabled(enabled)
	if err := a.conf.Save(); err != nil {
		logrus.WithError(err).Error("failed to save notification setting")
	}
	a.notifier.SetEnabled(enabled)
}

func (a *app) viewLogs() {
	dir, err := logging.LogDir()
	if err != nil {
		logrus.WithError(err).Error("failed to locate log directory")
		return
	}
	if err := tray.Open(dir); err != nil {
		logrus.WithError(err).Error("failed to open log directory")
	}
}
