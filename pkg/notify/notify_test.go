package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sent struct {
	title, message string
	icon           any
}

func TestNotify(t *testing.T) {
	var got []sent
	n := NewWithSender(false, func(title, message string, icon any) error {
		got = append(got, sent{title, message, icon})
		return nil
	})

	n.Notify("Arctis", "Battery low (20%)", nil)
	assert.Empty(t, got, "disabled notifier must not send")

	n.SetEnabled(true)
	assert.True(t, n.IsEnabled())
	n.Notify("Arctis", "Battery low (20%)", nil)
	assert.Equal(t, []sent{{"Arctis", "Battery low (20%)", ""}}, got)

	n.Notify("Arctis", "Battery full", []byte{1, 2, 3})
	assert.Len(t, got, 2)
	assert.Equal(t, []byte{1, 2, 3}, got[1].icon)
}

func TestNotifySendErrorIsSwallowed(t *testing.T) {
	calls := 0
	n := NewWithSender(true, func(string, string, any) error {
		calls++
		return errors.New("no notification daemon")
	})
	assert.NotPanics(t, func() { n.Notify("a", "b", nil) })
	assert.Equal(t, 1, calls)
}
