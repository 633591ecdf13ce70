// Package logging routes logrus output to a rotating file in the local data
// directory, and to stderr when it is attached to a terminal.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	AppDirName  = "HeadsetBatteryIndicator"
	LogFileName = "headset-battery-indicator.log"
)

// DataDir is <LocalAppData>/HeadsetBatteryIndicator on Windows and the
// matching user cache directory elsewhere.
func DataDir() (string, error) {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		var err error
		base, err = os.UserCacheDir()
		if err != nil {
			return "", pkgerrors.Wrap(err, "failed to locate user data directory")
		}
	}
	return filepath.Join(base, AppDirName), nil
}

// LogDir is where the rotating log files live.
func LogDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

type Options struct {
	Level string
	// Dir overrides LogDir. Used by tests.
	Dir string
	// Stderr forces the terminal writer on or off. nil means auto-detect.
	Stderr *bool
}

// Setup configures the standard logrus logger. The returned io.Closer closes
// the log file and must be called on exit.
func Setup(opts Options) (io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to parse log level %q", opts.Level)
		}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = LogDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create log directory %s", dir)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	toStderr := term.IsTerminal(int(os.Stderr.Fd()))
	if opts.Stderr != nil {
		toStderr = *opts.Stderr
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   true,
	})
	if toStderr {
		logrus.SetOutput(io.MultiWriter(file, os.Stderr))
	} else {
		logrus.SetOutput(file)
	}

	logrus.WithField("file", file.Filename).WithField("level", level.String()).Debug("logging configured")
	return file, nil
}
