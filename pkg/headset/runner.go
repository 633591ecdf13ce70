package headset

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Runner runs an external program and returns what it printed on stdout.
// Implementations must not leave the process running after Run returns.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// waitDelay bounds how long Run waits for output pipes after the process was
// killed, in case it spawned children that inherited them.
const waitDelay = time.Second

func (ExecRunner) Run(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	hideWindow(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrapf(ErrTimeout, "%s did not exit in time", path)
		}
		return nil, pkgerrors.Wrapf(ErrProcessFailed, "%s cancelled: %v", path, ctxErr)
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.Wrapf(ErrExecutableNotFound, "%s: %v", path, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), pkgerrors.Wrapf(ErrProcessFailed, "%s exited with code %d: %s", path, exitErr.ExitCode(), excerpt(stderr.Bytes()))
	}

	return nil, pkgerrors.Wrapf(ErrProcessFailed, "%s: %v", path, err)
}
