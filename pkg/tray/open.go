package tray

import (
	"os/exec"
	"runtime"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Open opens a directory or URL with the desktop's default handler.
func Open(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	if err := cmd.Start(); err != nil {
		return pkgerrors.Wrapf(err, "failed to open %s", target)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logrus.WithError(err).WithField("target", target).Debug("opener exited with error")
		}
	}()
	return nil
}
