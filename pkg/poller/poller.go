// Package poller periodically reads the headset status and publishes a
// status.changed event whenever the result differs from the previous one.
package poller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/events"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
)

const (
	// DefaultInterval is the poll schedule used when none is configured.
	DefaultInterval = "@every 10s"

	recorderSize = 60
	// missedTickWindow is how far back tick continuity is checked.
	missedTickWindow = 2 * time.Minute
)

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule accepts a cron expression or descriptor ("@every 10s") or a
// plain Go duration ("10s").
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultInterval
	}
	if d, err := time.ParseDuration(expr); err == nil {
		if d < time.Second {
			return nil, fmt.Errorf("poll interval %s is shorter than one second", d)
		}
		expr = "@every " + d.String()
	}
	return parser.Parse(expr)
}

// Poller owns the last poll result. Nothing outside the poller goroutine
// reads or writes it; subscribers get copies through the event hub.
type Poller struct {
	reader   headset.StatusReader
	hub      *events.EventHub
	schedule cron.Schedule
	interval time.Duration
	recorder *TimeSeriesRecorder

	// readMu is held for the whole duration of a poll. Ticks that cannot
	// acquire it are skipped, so reads never overlap.
	readMu sync.Mutex
	last   *headset.Result
	seq    uint64

	refreshCh chan struct{}

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(reader headset.StatusReader, hub *events.EventHub, schedule cron.Schedule) *Poller {
	if reader == nil {
		panic("reader cannot be nil")
	}
	if schedule == nil {
		schedule, _ = ParseSchedule(DefaultInterval)
	}

	now := time.Now()
	next := schedule.Next(now)

	return &Poller{
		reader:    reader,
		hub:       hub,
		schedule:  schedule,
		interval:  schedule.Next(next).Sub(next),
		recorder:  NewTimeSeriesRecorder(recorderSize),
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start runs the poll loop in the background until ctx is cancelled or Stop
// is called. The first poll happens immediately. A Poller runs at most once;
// later calls, including after Stop, do nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)
}

// Stop stops scheduling ticks and cancels an in-flight read. It does not wait
// for that read to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Done is closed when the poll loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Refresh requests an out-of-band poll. Requests made while one is pending
// are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer func() {
		close(p.done)
		logrus.Debug("poller stopped")
	}()

	logrus.WithField("interval", p.interval.String()).Debug("poller started")

	go p.tick(ctx)

	for {
		timer := time.NewTimer(time.Until(p.schedule.Next(time.Now())))

		select {
		case <-timer.C:
			p.checkMissedTicks()
			p.recorder.AddRecord(time.Now())
			go p.tick(ctx)
		case <-p.refreshCh:
			timer.Stop()
			go p.tick(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, ran := p.Poll(ctx); !ran {
		logrus.Debug("previous read still in flight, skipping this tick")
	}
}

// Poll reads the status once and publishes a change event if the result
// differs from the last one. It returns ran=false without reading when another
// poll is still in flight.
func (p *Poller) Poll(ctx context.Context) (changed bool, ran bool) {
	if !p.readMu.TryLock() {
		return false, false
	}
	defer p.readMu.Unlock()

	if ctx.Err() != nil {
		return false, true
	}

	res := p.reader.ReadStatus(ctx)
	if ctx.Err() != nil {
		// Shutting down; the result of a killed read is meaningless.
		return false, true
	}

	fields := logrus.Fields{
		"kind":      res.Kind.String(),
		"bucket":    res.Status.Level.String(),
		"percent":   res.Status.Percent,
		"charging":  res.Status.Charging,
		"connected": res.Status.Connected,
		"product":   res.Status.Product,
	}
	if res.Message != "" {
		fields["message"] = res.Message
	}

	if p.last != nil && res.Equal(*p.last) {
		logrus.WithFields(fields).Trace("headset status unchanged")
		return false, true
	}

	p.seq++
	p.last = &res

	entry := logrus.WithFields(fields)
	if res.Kind.IsError() {
		entry.Warn("headset status changed")
	} else {
		entry.Info("headset status changed")
	}

	p.hub.Publish(events.StatusChanged, events.StatusChangedEvent{
		Result: res,
		Seq:    p.seq,
		Ts:     time.Now().Unix(),
	})

	return true, true
}

func (p *Poller) checkMissedTicks() {
	if p.interval <= 0 {
		return
	}
	expected := int(missedTickWindow / p.interval)
	if expected < 2 || p.recorder.Len() < expected {
		return
	}

	count := p.recorder.GetRecordsIn(missedTickWindow, p.interval)
	if count < expected-1 {
		logrus.WithFields(logrus.Fields{
			"tickCount":         count,
			"expectedTickCount": expected,
			"lastTick":          p.recorder.GetLastRecord().Format(time.RFC3339),
		}).Info("possibly missed poll ticks, the system was probably asleep")
	}
}
