package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/internal/logging"
	"github.com/actionsum/focustime/pkg/detector"
	"github.com/actionsum/focustime/pkg/utils"
)

func main() {
	var (
		backend  string
		interval time.Duration
		duration time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "focustime-probe",
		Short: "Print what the active window probe observes",
		Long: `focustime-probe polls the active window probe and prints each observation.
Switch between applications while it runs to check detection.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewNop().Logger
			if verbose {
				cfg := logging.DefaultConfig()
				cfg.Level = "debug"
				cfg.Development = true
				l, err := logging.New(cfg)
				if err != nil {
					return err
				}
				logger = l.Logger
			}
			return monitor(cmd, backend, interval, duration, logger)
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", detector.BackendAuto,
		fmt.Sprintf("probe backend, one of %v", detector.Backends))
	cmd.Flags().DurationVarP(&interval, "interval", "i", 2*time.Second, "time between observations")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 30*time.Second, "how long to monitor")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log probe diagnostics to stderr")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func monitor(cmd *cobra.Command, backend string, interval, duration time.Duration, logger *zap.Logger) error {
	out := cmd.OutOrStdout()

	probe, err := detector.New(backend, logger)
	if err != nil {
		return err
	}
	defer probe.Close()

	fmt.Fprintln(out, "Active window probe")
	fmt.Fprintln(out, "===================")
	fmt.Fprintf(out, "\nDisplay Server: %s\n", detector.DetectDisplayServer())
	fmt.Fprintf(out, "Probe:          %s\n", probe.Name())
	fmt.Fprintf(out, "Is Available:   %v\n\n", probe.IsAvailable())
	fmt.Fprintf(out, "Monitoring active window for %s...\n\n", duration)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	timeout := time.After(duration)
	count := 0

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case <-timeout:
			fmt.Fprintln(out, "\nMonitoring completed!")
			return nil

		case <-ticker.C:
			count++
			title, ok := probe.ActiveTitle()
			if !ok {
				fmt.Fprintf(out, "[%d] No window detected\n", count)
				continue
			}
			fmt.Fprintf(out, "[%d] Title: %-60s\n", count, utils.Truncate(title, 60))
		}
	}
}
