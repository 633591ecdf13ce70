package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/logging"
)

var (
	logLevel           = "info"
	configPath         = ""
	headsetControlPath = ""
	langOverride       = ""

	logCloser io.Closer
)

func setupLogger() error {
	closer, err := logging.Setup(logging.Options{Level: logLevel})
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func main() {
	// systray runs the message loop on the thread that calls systray.Run.
	runtime.LockOSThread()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := NewCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headset-battery-indicator",
		Short: "Show the battery level of your headset in the system tray",
		Long: `Show the battery level of your headset in the system tray.

Battery information is read with headsetcontrol, which must be placed next to
this program or be available on PATH.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTray(cmd.Context())
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "settings file path (default: "+defaultConfigLocation()+")")
	globalFlags.StringVar(&headsetControlPath, "headsetcontrol", "", "path to the headsetcontrol executable")
	globalFlags.StringVar(&langOverride, "lang", "", "language to use instead of the OS locale (en, fi, de, it)")

	cmd.AddCommand(
		NewStatusCommand(),
		NewVersionCommand(),
	)

	return cmd
}

// effectiveHeadsetControlPath lets the flag override the stored setting.
func effectiveHeadsetControlPath(stored string) string {
	if headsetControlPath != "" {
		return headsetControlPath
	}
	return stored
}
