package headset

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out   []byte
	err   error
	delay time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	args     []string
	mu       sync.Mutex
}

func (f *fakeRunner) Run(ctx context.Context, _ string, args ...string) ([]byte, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.args = args
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(ErrTimeout, "fake")
		}
	}
	return f.out, f.err
}

func newTestReader(r Runner) *Reader {
	reader := NewReader(Options{Path: "/opt/headsetcontrol", Runner: r})
	reader.stat = func(string) (os.FileInfo, error) { return nil, nil }
	return reader
}

func TestReadStatusOK(t *testing.T) {
	runner := &fakeRunner{out: []byte(singleDeviceOutput)}
	r := newTestReader(runner)

	res := r.ReadStatus(context.Background())

	require.Equal(t, KindOK, res.Kind)
	assert.Equal(t, Status{Level: Level75, Percent: 75, Connected: true, Product: "Arctis Nova 7"}, res.Status)
	assert.Len(t, res.Devices, 1)
	assert.Equal(t, []string{"-b", "-o", "json"}, runner.args)
}

func TestReadStatusNoDevice(t *testing.T) {
	r := newTestReader(&fakeRunner{out: []byte(`{"device_count":0,"devices":[]}`)})

	res := r.ReadStatus(context.Background())

	assert.Equal(t, KindNoDevice, res.Kind)
	assert.False(t, res.Kind.IsError())
	assert.Equal(t, LevelUnknown, res.Status.Level)
}

func TestReadStatusNonZeroExitWithReport(t *testing.T) {
	r := newTestReader(&fakeRunner{
		out: []byte(`{"device_count":0,"devices":[]}`),
		err: pkgerrors.Wrap(ErrProcessFailed, "exit status 1"),
	})

	res := r.ReadStatus(context.Background())

	assert.Equal(t, KindNoDevice, res.Kind)
}

func TestReadStatusProcessFailed(t *testing.T) {
	r := newTestReader(&fakeRunner{err: pkgerrors.Wrap(ErrProcessFailed, "exit status 2")})

	res := r.ReadStatus(context.Background())

	assert.Equal(t, KindProcessFailed, res.Kind)
	assert.True(t, res.Kind.IsError())
	assert.NotEmpty(t, res.Message)
}

func TestReadStatusParseFailed(t *testing.T) {
	r := newTestReader(&fakeRunner{out: []byte("Segmentation fault")})

	res := r.ReadStatus(context.Background())

	assert.Equal(t, KindParseFailed, res.Kind)
}

func TestReadStatusTimeout(t *testing.T) {
	r := NewReader(Options{Path: "/opt/headsetcontrol", Runner: &fakeRunner{delay: time.Minute}, Timeout: 20 * time.Millisecond})
	r.stat = func(string) (os.FileInfo, error) { return nil, nil }

	start := time.Now()
	res := r.ReadStatus(context.Background())

	assert.Equal(t, KindTimeout, res.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestReadStatusExecutableMissing(t *testing.T) {
	runner := &fakeRunner{out: []byte(singleDeviceOutput)}
	r := NewReader(Options{Runner: runner})
	r.executable = func() (string, error) { return "/nonexistent/app/indicator", nil }
	r.stat = func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }
	r.lookPath = func(string) (string, error) { return "", os.ErrNotExist }

	for i := 0; i < 3; i++ {
		res := r.ReadStatus(context.Background())
		assert.Equal(t, KindExecutableNotFound, res.Kind)
	}
	assert.Zero(t, runner.calls.Load())
}

func TestReadStatusConfiguredPathMissing(t *testing.T) {
	r := NewReader(Options{Path: "/definitely/not/here/headsetcontrol", Runner: &fakeRunner{}})

	res := r.ReadStatus(context.Background())

	assert.Equal(t, KindExecutableNotFound, res.Kind)
}

func TestReadStatusPrefersExecutableNextToApp(t *testing.T) {
	var statted []string
	r := NewReader(Options{Runner: &fakeRunner{out: []byte(singleDeviceOutput)}})
	r.executable = func() (string, error) { return "/app/indicator", nil }
	r.stat = func(p string) (os.FileInfo, error) {
		statted = append(statted, p)
		return nil, nil
	}
	r.lookPath = func(string) (string, error) {
		t.Fatal("PATH lookup should not happen")
		return "", nil
	}

	res := r.ReadStatus(context.Background())

	require.Equal(t, KindOK, res.Kind)
	require.Len(t, statted, 1)
	assert.Contains(t, statted[0], executableName)
}

func TestReadStatusSharesInFlightProcess(t *testing.T) {
	runner := &fakeRunner{out: []byte(singleDeviceOutput), delay: 100 * time.Millisecond}
	r := newTestReader(runner)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, KindOK, r.ReadStatus(context.Background()).Kind)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), runner.maxSeen.Load())
}

func TestBuildResultSelection(t *testing.T) {
	devices := []Device{
		{Product: "A", Battery: Status{Level: Level25, Percent: 30, Connected: true, Product: "A"}},
		{Product: "B", Battery: Status{Level: Level100, Percent: 100, Connected: true, Product: "B"}},
	}

	assert.Equal(t, "A", BuildResult(devices, 0).Status.Product)
	assert.Equal(t, "B", BuildResult(devices, 1).Status.Product)

	clamped := BuildResult(devices, 7)
	assert.Equal(t, 1, clamped.Selected)
	assert.Equal(t, "B", clamped.Status.Product)
}

func TestResultEqual(t *testing.T) {
	a := BuildResult([]Device{{Product: "A", Battery: Status{Level: Level25, Percent: 30, Connected: true}}}, 0)
	b := BuildResult([]Device{{Product: "A", Battery: Status{Level: Level25, Percent: 30, Connected: true}}}, 0)
	assert.True(t, a.Equal(b))

	c := BuildResult([]Device{{Product: "A", Battery: Status{Level: Level25, Percent: 29, Connected: true}}}, 0)
	assert.False(t, a.Equal(c))

	e1 := ErrorResult(pkgerrors.Wrap(ErrTimeout, "first"))
	e2 := ErrorResult(pkgerrors.Wrap(ErrTimeout, "second"))
	assert.True(t, e1.Equal(e2))
	assert.False(t, e1.Equal(a))
}
