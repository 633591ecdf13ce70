// Package tray shows poll results in the system tray: the battery glyph, a
// localized tooltip, the menu and desktop notifications.
package tray

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/config"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/events"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/icon"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/lang"
)

// themeCheckInterval is how often the taskbar theme is re-read between
// status changes.
const themeCheckInterval = 30 * time.Second

const notifyIconSize = 64

// Tray is the part of the OS tray the presenter draws on.
type Tray interface {
	SetIcon(b []byte)
	SetTooltip(s string)
}

type Notifier interface {
	Notify(title, message string, icon []byte)
}

// DeviceMenu lists the reported devices. Optional.
type DeviceMenu interface {
	SetDevices(devices []headset.Device, selected int)
}

type Options struct {
	Tray       Tray
	Notifier   Notifier
	Config     config.Config
	Translator *lang.Translator
	Icons      *icon.Cache
	// NotifyIcons renders the images attached to notifications. Defaults to
	// PNGs of notifyIconSize.
	NotifyIcons *icon.Cache
	// Theme reports the current taskbar theme. Defaults to dark.
	Theme func() icon.Theme
	Menu  DeviceMenu
}

// Presenter is not safe for concurrent use. All calls must come from the
// goroutine running Run, or happen before it starts.
type Presenter struct {
	tray        Tray
	notifier    Notifier
	conf        config.Config
	tr          *lang.Translator
	icons       *icon.Cache
	notifyIcons *icon.Cache
	themeFn     func() icon.Theme
	menu        DeviceMenu

	theme   icon.Theme
	iconKey icon.Key
	hasIcon bool
	tooltip string

	last    headset.Result
	hasLast bool

	// prev is the last OK sample, used for notification edges.
	prev         headset.Status
	prevSelected int
	hasPrev      bool
}

func New(opts Options) *Presenter {
	if opts.Tray == nil || opts.Config == nil {
		panic("tray and config cannot be nil")
	}
	if opts.Translator == nil {
		opts.Translator = lang.NewTranslator(lang.En)
	}
	if opts.Icons == nil {
		opts.Icons = icon.NewNativeCache()
	}
	if opts.NotifyIcons == nil {
		opts.NotifyIcons = icon.NewCache(notifyIconSize, icon.FormatPNG)
	}
	if opts.Theme == nil {
		opts.Theme = func() icon.Theme { return icon.ThemeDark }
	}

	return &Presenter{
		tray:        opts.Tray,
		notifier:    opts.Notifier,
		conf:        opts.Config,
		tr:          opts.Translator,
		icons:       opts.Icons,
		notifyIcons: opts.NotifyIcons,
		themeFn:     opts.Theme,
		menu:        opts.Menu,
		theme:       opts.Theme(),
	}
}

// ShowLoading puts the tray into its initial state before the first result.
func (p *Presenter) ShowLoading() {
	p.setIcon(icon.UnavailableKey(p.theme))
	p.setTooltip(p.tr.T(lang.Loading))
}

// Run consumes status-changed events until ctx is done or ch is closed.
func (p *Presenter) Run(ctx context.Context, ch <-chan events.Event) {
	themeTicker := time.NewTicker(themeCheckInterval)
	defer themeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Name != events.StatusChanged {
				continue
			}
			payload, err := events.DecodeAs[events.StatusChangedEvent](ev)
			if err != nil {
				logrus.WithError(err).Error("failed to decode status event")
				continue
			}
			logrus.WithField("seq", payload.Seq).WithField("kind", payload.Result.Kind.String()).Trace("status event received")
			p.Handle(payload.Result)
		case <-themeTicker.C:
			p.RefreshTheme()
		}
	}
}

// Handle applies one poll result to the tray.
func (p *Presenter) Handle(r headset.Result) {
	p.last, p.hasLast = r, true

	p.setIcon(p.keyFor(r))
	p.setTooltip(Tooltip(p.tr, r))
	if p.menu != nil {
		p.menu.SetDevices(r.Devices, r.Selected)
	}
	p.maybeNotify(r)
}

// RefreshTheme redraws the icon if the taskbar theme changed.
func (p *Presenter) RefreshTheme() {
	theme := p.themeFn()
	if theme == p.theme {
		return
	}
	logrus.WithField("theme", theme.String()).Info("taskbar theme changed")
	p.theme = theme
	if p.hasLast {
		p.setIcon(p.keyFor(p.last))
	} else {
		p.setIcon(icon.UnavailableKey(theme))
	}
}

func (p *Presenter) keyFor(r headset.Result) icon.Key {
	if r.Kind != headset.KindOK {
		return icon.UnavailableKey(p.theme)
	}
	return icon.KeyFor(r.Status, p.theme)
}

func (p *Presenter) setIcon(k icon.Key) {
	if p.hasIcon && k == p.iconKey {
		return
	}
	b, err := p.icons.Get(k)
	if err != nil {
		logrus.WithError(err).Error("failed to render tray icon")
		return
	}
	p.tray.SetIcon(b)
	p.iconKey, p.hasIcon = k, true
	logrus.WithField("level", k.Level.String()).
		WithField("charging", k.Charging).
		WithField("connected", k.Connected).
		WithField("theme", k.Theme.String()).
		Debug("tray icon updated")
}

func (p *Presenter) setTooltip(s string) {
	if s == p.tooltip {
		return
	}
	p.tray.SetTooltip(s)
	p.tooltip = s
}

func (p *Presenter) maybeNotify(r headset.Result) {
	// errors and missing devices leave the remembered sample alone
	if r.Kind != headset.KindOK {
		return
	}
	cur := r.Status

	first := !p.hasPrev || p.prevSelected != r.Selected || p.prev.Product != cur.Product
	prev := p.prev
	p.prev, p.prevSelected, p.hasPrev = cur, r.Selected, true
	if first {
		return
	}

	n, ok := selectNotification(prev, cur, p.conf)
	if !ok {
		return
	}

	msg := p.tr.T(n.message)
	if n.withPercent {
		msg = p.tr.Tf(n.message, cur.Percent)
	}
	logrus.WithField("notification", n.name).
		WithField("from", prev.Percent).
		WithField("to", cur.Percent).
		Info("battery notification triggered")

	if p.notifier == nil || !p.conf.NotificationsEnabled() {
		return
	}
	img, err := p.notifyIcons.Get(icon.KeyFor(cur, p.theme))
	if err != nil {
		logrus.WithError(err).Warn("failed to render notification icon")
		img = nil
	}
	p.notifier.Notify(productName(cur), msg, img)
}
