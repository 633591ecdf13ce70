package headset

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout bounds a single headsetcontrol invocation.
	DefaultTimeout = 5 * time.Second

	executableName = "headsetcontrol"
)

// batteryArgs asks headsetcontrol for a battery report in JSON.
var batteryArgs = []string{"-b", "-o", "json"}

// StatusReader is anything that can produce a Result. The poller depends on
// this so tests never spawn processes.
type StatusReader interface {
	ReadStatus(ctx context.Context) Result
}

// Options configures a Reader.
type Options struct {
	// Path to headsetcontrol. Empty means next to our executable, then PATH.
	Path string
	// Timeout for a single read. Zero means DefaultTimeout.
	Timeout time.Duration
	// Runner runs the process. Nil means ExecRunner.
	Runner Runner
}

// Reader reads headset battery state by running headsetcontrol.
type Reader struct {
	path    string
	timeout time.Duration
	runner  Runner

	selected atomic.Int64
	group    singleflight.Group

	// Overridable for tests.
	lookPath   func(string) (string, error)
	executable func() (string, error)
	stat       func(string) (os.FileInfo, error)
}

var _ StatusReader = &Reader{}

func NewReader(opts Options) *Reader {
	r := &Reader{
		path:       opts.Path,
		timeout:    opts.Timeout,
		runner:     opts.Runner,
		lookPath:   exec.LookPath,
		executable: os.Executable,
		stat:       os.Stat,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.runner == nil {
		r.runner = ExecRunner{}
	}
	return r
}

// SetSelected chooses which device of the list the headline status describes.
func (r *Reader) SetSelected(idx int) {
	if idx < 0 {
		idx = 0
	}
	r.selected.Store(int64(idx))
}

// Selected returns the selected device index.
func (r *Reader) Selected() int {
	return int(r.selected.Load())
}

// ReadStatus runs headsetcontrol once and converts its report into a Result.
// It never panics and never returns a nil-kind failure; all problems are
// reported through Result.Kind. Concurrent callers share one process.
func (r *Reader) ReadStatus(ctx context.Context) Result {
	v, _, _ := r.group.Do("read", func() (any, error) {
		return r.read(ctx), nil
	})
	return v.(Result)
}

func (r *Reader) read(ctx context.Context) Result {
	path, err := r.resolve()
	if err != nil {
		return ErrorResult(err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	out, err := r.runner.Run(ctx, path, batteryArgs...)
	logger := logrus.WithFields(logrus.Fields{
		"path":    path,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	})

	if err != nil {
		// Some versions exit non-zero when no headset is attached but still
		// print a valid report.
		if Classify(err) == KindProcessFailed && len(out) > 0 {
			if devices, perr := ParseOutput(out); perr == nil {
				logger.WithError(err).Debug("headsetcontrol exited non-zero with a valid report")
				return BuildResult(devices, r.Selected())
			}
		}
		logger.WithError(err).Debug("headsetcontrol failed")
		return ErrorResult(err)
	}

	devices, err := ParseOutput(out)
	if err != nil {
		logger.WithError(err).Debug("unparsable headsetcontrol output")
		return ErrorResult(err)
	}

	logger.WithField("devices", len(devices)).Trace("headsetcontrol read")
	return BuildResult(devices, r.Selected())
}

// BuildResult picks the selected device out of devices. The index is clamped
// to the list so a vanished device falls back to the last one.
func BuildResult(devices []Device, selected int) Result {
	if len(devices) == 0 {
		return Result{
			Kind:   KindNoDevice,
			Status: Status{Level: LevelUnknown, Percent: -1},
		}
	}

	idx := max(0, min(selected, len(devices)-1))
	return Result{
		Kind:     KindOK,
		Status:   devices[idx].Battery,
		Devices:  devices,
		Selected: idx,
	}
}

// resolve locates headsetcontrol. It is done on every read so installing the
// tool while we are running is picked up on the next tick.
func (r *Reader) resolve() (string, error) {
	if r.path != "" {
		if _, err := r.stat(r.path); err != nil {
			return "", pkgerrors.Wrapf(ErrExecutableNotFound, "%s: %v", r.path, err)
		}
		return r.path, nil
	}

	name := executableName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	if self, err := r.executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), name)
		if _, err := r.stat(candidate); err == nil {
			return candidate, nil
		}
	}

	path, err := r.lookPath(name)
	if err != nil {
		return "", pkgerrors.Wrapf(ErrExecutableNotFound, "%s is neither next to the application nor in PATH", name)
	}
	return path, nil
}
