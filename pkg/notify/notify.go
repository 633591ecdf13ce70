// Package notify sends desktop notifications through beeep.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/sirupsen/logrus"
)

// Sender is the function that actually shows a notification. Replaced in tests.
type Sender func(title, message string, icon any) error

type Notifier struct {
	mu      sync.RWMutex
	enabled bool
	send    Sender
}

func New(enabled bool) *Notifier {
	beeep.AppName = "Headset Battery Indicator"
	return &Notifier{
		enabled: enabled,
		send:    beeep.Notify,
	}
}

// NewWithSender is New with a custom Sender.
func NewWithSender(enabled bool, send Sender) *Notifier {
	return &Notifier{enabled: enabled, send: send}
}

func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Notify shows a notification unless notifications are disabled. icon is a
// PNG shown next to the text; nil uses the default. Failures are logged and
// otherwise ignored.
func (n *Notifier) Notify(title, message string, icon []byte) {
	n.mu.RLock()
	enabled, send := n.enabled, n.send
	n.mu.RUnlock()

	if !enabled {
		logrus.WithField("title", title).Debug("notifications disabled, dropping")
		return
	}

	var iconArg any = ""
	if len(icon) > 0 {
		iconArg = icon
	}
	if err := send(title, message, iconArg); err != nil {
		logrus.WithError(err).WithField("title", title).Warn("failed to send notification")
		return
	}
	logrus.WithField("title", title).WithField("message", message).Info("notification sent")
}
