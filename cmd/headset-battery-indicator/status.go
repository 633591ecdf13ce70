package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/config"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/lang"
	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/tray"
)

type statusJSON struct {
	Result   headset.Result     `json:"result"`
	Settings statusSettingsJSON `json:"settings"`
}

type statusSettingsJSON struct {
	NotificationsEnabled  bool   `json:"notificationsEnabled"`
	LowThreshold          int    `json:"lowThreshold"`
	CriticalThreshold     int    `json:"criticalThreshold"`
	NotifyChargingStarted bool   `json:"notifyChargingStarted"`
	PollInterval          string `json:"pollInterval"`
	ReadTimeout           string `json:"readTimeout"`
	HeadsetControlPath    string `json:"headsetControlPath,omitempty"`
	SelectedDevice        int    `json:"selectedDevice"`
}

func newStatusJSON(res headset.Result, conf config.Config) statusJSON {
	return statusJSON{
		Result: res,
		Settings: statusSettingsJSON{
			NotificationsEnabled:  conf.NotificationsEnabled(),
			LowThreshold:          conf.LowThreshold(),
			CriticalThreshold:     conf.CriticalThreshold(),
			NotifyChargingStarted: conf.NotifyChargingStarted(),
			PollInterval:          conf.PollInterval(),
			ReadTimeout:           conf.ReadTimeout().String(),
			HeadsetControlPath:    effectiveHeadsetControlPath(conf.HeadsetControlPath()),
			SelectedDevice:        conf.SelectedDevice(),
		},
	}
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Read the headset battery once and print it",
		Long: `Run headsetcontrol once and print the battery status of every headset it
reports, followed by the current settings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := loadConfig()
			if err != nil {
				return err
			}

			reader := headset.NewReader(headset.Options{
				Path:    effectiveHeadsetControlPath(conf.HeadsetControlPath()),
				Timeout: conf.ReadTimeout(),
			})
			reader.SetSelected(conf.SelectedDevice())
			res := reader.ReadStatus(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(newStatusJSON(res, conf)); err != nil {
					return err
				}
			} else {
				printStatus(cmd, lang.NewTranslator(lang.Detect(langOverride)), res, conf)
			}

			if res.Kind.IsError() {
				return fmt.Errorf("failed to read headset status: %s", res.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")

	return cmd
}

func printStatus(cmd *cobra.Command, tr *lang.Translator, res headset.Result, conf config.Config) {
	cmd.Println(bold("Headset status:"))
	cmd.Printf("  %s\n", tray.Tooltip(tr, res))

	if len(res.Devices) > 0 {
		cmd.Println()
		cmd.Println(bold("Devices:"))
		for i, d := range res.Devices {
			marker := " "
			if i == res.Selected {
				marker = color.New(color.Bold, color.FgGreen).Sprint("*")
			}
			label := tray.DeviceLabel(tr, d)
			if d.Battery.Connected && d.Battery.Percent >= 0 && d.Battery.Percent <= conf.LowThreshold() && !d.Battery.Charging {
				label = color.RedString(label)
			}
			cmd.Printf("  %s %d: %s\n", marker, i, label)
		}
	}

	cmd.Println()
	cmd.Println(bold("Settings:"))
	cmd.Printf("  Notifications: %s\n", bool2Text(conf.NotificationsEnabled()))
	cmd.Printf("  Low battery threshold: %s\n", bold("%d%%", conf.LowThreshold()))
	cmd.Printf("  Critical battery threshold: %s\n", bold("%d%%", conf.CriticalThreshold()))
	cmd.Printf("  Notify when charging starts: %s\n", bool2Text(conf.NotifyChargingStarted()))
	cmd.Printf("  Poll interval: %s\n", bold("%s", conf.PollInterval()))
	cmd.Printf("  Read timeout: %s\n", bold("%s", conf.ReadTimeout()))
	if p := effectiveHeadsetControlPath(conf.HeadsetControlPath()); p != "" {
		cmd.Printf("  headsetcontrol: %s\n", bold("%s", p))
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
