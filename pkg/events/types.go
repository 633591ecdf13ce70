package events

import (
	"encoding/json"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
)

// Event name constants
const (
	StatusChanged = "status.changed"
)

// Event is a named message published on the hub.
type Event struct {
	Name string          // event name
	Data json.RawMessage // Raw JSON payload
}

// StatusChangedEvent is the typed payload for status.changed. It carries a
// copy of the poll result; subscribers never see the poller's own value.
type StatusChangedEvent struct {
	Result headset.Result `json:"result"`
	// Seq increases by one for every emitted change.
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.StatusChangedEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Result.Status.Percent)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
