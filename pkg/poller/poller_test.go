package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/events"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
)

// fastSchedule fires every d without the one-second floor of cron descriptors.
type fastSchedule time.Duration

func (s fastSchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(s)) }

type fakeReader struct {
	mu      sync.Mutex
	results []headset.Result
	calls   atomic.Int32
	// block, when set, makes ReadStatus wait until it is closed or ctx is done.
	block chan struct{}
}

func (f *fakeReader) ReadStatus(ctx context.Context) headset.Result {
	n := int(f.calls.Add(1))
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return headset.ErrorResult(pkgerrors.Wrap(headset.ErrTimeout, "cancelled"))
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.results) {
		return f.results[len(f.results)-1]
	}
	return f.results[n-1]
}

func status(percent int, charging bool) headset.Result {
	return headset.BuildResult([]headset.Device{{
		Product: "Arctis",
		Battery: headset.Status{
			Level:     headset.BucketLevel(percent),
			Percent:   percent,
			Charging:  charging,
			Connected: true,
			Product:   "Arctis",
		},
	}}, 0)
}

func drain(ch chan events.Event) []events.StatusChangedEvent {
	var out []events.StatusChangedEvent
	for {
		select {
		case ev := <-ch:
			payload, err := events.DecodeAs[events.StatusChangedEvent](ev)
			if err == nil {
				out = append(out, payload)
			}
		default:
			return out
		}
	}
}

func TestParseSchedule(t *testing.T) {
	for _, expr := range []string{"", "@every 10s", "30s", "*/15 * * * * *", "1m"} {
		_, err := ParseSchedule(expr)
		assert.NoError(t, err, expr)
	}
	for _, expr := range []string{"every now and then", "100ms", "-5s"} {
		_, err := ParseSchedule(expr)
		assert.Error(t, err, expr)
	}
}

func TestPollEmitsOnlyOnChange(t *testing.T) {
	reader := &fakeReader{results: []headset.Result{
		status(75, false),
		status(75, false),
		status(75, false),
		status(50, false),
		headset.ErrorResult(pkgerrors.Wrap(headset.ErrOutputParse, "garbage")),
		headset.ErrorResult(pkgerrors.Wrap(headset.ErrOutputParse, "other garbage")),
		status(50, false),
	}}
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	p := New(reader, hub, nil)

	var changes []bool
	for i := 0; i < len(reader.results); i++ {
		changed, ran := p.Poll(context.Background())
		require.True(t, ran)
		changes = append(changes, changed)
	}

	assert.Equal(t, []bool{true, false, false, true, true, false, true}, changes)

	got := drain(ch)
	require.Len(t, got, 4)
	assert.Equal(t, 75, got[0].Result.Status.Percent)
	assert.Equal(t, 50, got[1].Result.Status.Percent)
	assert.Equal(t, headset.KindParseFailed, got[2].Result.Kind)
	assert.Equal(t, headset.KindOK, got[3].Result.Kind)
	for i, ev := range got {
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
}

func TestPollSkipsWhileReadInFlight(t *testing.T) {
	reader := &fakeReader{results: []headset.Result{status(75, false)}, block: make(chan struct{})}
	p := New(reader, events.NewEventHub(), nil)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, ran := p.Poll(context.Background())
		assert.True(t, ran)
	}()

	require.Eventually(t, func() bool { return reader.calls.Load() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 3; i++ {
		_, ran := p.Poll(context.Background())
		assert.False(t, ran)
	}
	assert.Equal(t, int32(1), reader.calls.Load())

	close(reader.block)
	<-firstDone

	_, ran := p.Poll(context.Background())
	assert.True(t, ran)
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestPollerKeepsTickingOnErrors(t *testing.T) {
	reader := &fakeReader{results: []headset.Result{
		headset.ErrorResult(pkgerrors.Wrap(headset.ErrExecutableNotFound, "not in PATH")),
	}}
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	p := New(reader, hub, fastSchedule(5*time.Millisecond))

	p.Start(context.Background())
	require.Eventually(t, func() bool { return reader.calls.Load() >= 5 }, 2*time.Second, time.Millisecond)
	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}

	got := drain(ch)
	require.Len(t, got, 1)
	assert.Equal(t, headset.KindExecutableNotFound, got[0].Result.Kind)
}

func TestPollerSlowReadDoesNotOverlap(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	reader := &slowReader{delay: 30 * time.Millisecond, inFlight: &inFlight, max: &maxInFlight}
	p := New(reader, events.NewEventHub(), fastSchedule(2*time.Millisecond))

	p.Start(context.Background())
	require.Eventually(t, func() bool { return reader.calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	p.Stop()
	<-p.Done()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestStopCancelsInFlightRead(t *testing.T) {
	reader := &fakeReader{results: []headset.Result{status(75, false)}, block: make(chan struct{})}
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	p := New(reader, hub, nil)

	p.Start(context.Background())
	require.Eventually(t, func() bool { return reader.calls.Load() == 1 }, time.Second, time.Millisecond)

	p.Stop()
	<-p.Done()

	// The cancelled read must not surface as a change.
	require.Eventually(t, func() bool { return p.readMu.TryLock() }, time.Second, time.Millisecond)
	p.readMu.Unlock()
	assert.Empty(t, drain(ch))
}

func TestStartAfterStopDoesNothing(t *testing.T) {
	reader := &fakeReader{results: []headset.Result{status(75, false)}}
	p := New(reader, events.NewEventHub(), fastSchedule(time.Hour))

	p.Start(context.Background())
	require.Eventually(t, func() bool { return reader.calls.Load() == 1 }, time.Second, time.Millisecond)
	p.Stop()
	<-p.Done()

	assert.NotPanics(t, func() {
		p.Start(context.Background())
		p.Stop()
		p.Stop()
	})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), reader.calls.Load(), "a stopped poller must not read again")
}

func TestRefreshPollsImmediately(t *testing.T) {
	reader := &fakeReader{results: []headset.Result{status(75, false), status(50, false)}}
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	p := New(reader, hub, fastSchedule(time.Hour))

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool { return reader.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return p.readMu.TryLock() }, time.Second, time.Millisecond)
	p.readMu.Unlock()

	p.Refresh()
	require.Eventually(t, func() bool { return reader.calls.Load() == 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(ch) == 2 }, time.Second, time.Millisecond)
}

type slowReader struct {
	delay    time.Duration
	calls    atomic.Int32
	inFlight *atomic.Int32
	max      *atomic.Int32
}

func (s *slowReader) ReadStatus(ctx context.Context) headset.Result {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.max.Load()
		if n <= m || s.max.CompareAndSwap(m, n) {
			break
		}
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
	return status(60, false)
}

func TestStatusChangeLogFields(t *testing.T) {
	hook := logtest.NewGlobal()
	defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	prev := logrus.GetLevel()
	logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetLevel(prev)

	p := New(&fakeReader{results: []headset.Result{status(40, false)}}, events.NewEventHub(), nil)
	changed, _ := p.Poll(context.Background())
	require.True(t, changed)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, headset.Level50.String(), entry.Data["bucket"])
	assert.Equal(t, 40, entry.Data["percent"])
	// "level" is reserved for the entry's own severity.
	assert.NotContains(t, entry.Data, "level")
}
