// shakectl inspects and changes shakelock settings, tests the lock and
// feedback actions, and shows a live shake gauge.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/shakelock/app"
	"github.com/taigrr/shakelock/config"
	"github.com/taigrr/shakelock/detector"
)

var version = "dev"

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "shakectl",
		Short: "Control shakelock",
		Long: `shakectl reads and writes the shakelock state file. A running shakelock
daemon picks up changes immediately.

Commands:
  threshold get        Show the shake threshold
  threshold set <g>    Set the threshold in g (0.50-3.00)
  status               Show threshold and whether the daemon is running
  stop                 Ask a running daemon to exit
  pulse                Fire the configured feedback pulse once
  lock                 Run the configured lock action now
  dash                 Live shake gauge (needs sensord)`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: user config dir)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		thresholdCmd(),
		statusCmd(),
		stopCmd(),
		pulseCmd(),
		lockCmd(),
		dashCmd(),
	)

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return app.LoadConfig(configPath, verbose)
}

func thresholdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Get or set the shake threshold",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := config.LoadState(cfg.StatePath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatThreshold(st.ThresholdG))
			return nil
		},
	}

	var position bool
	set := &cobra.Command{
		Use:   "set <value>",
		Short: "Set the threshold in g, or as a 0-250 position with --position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseThreshold(args[0], position)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := config.UpdateState(cfg.StatePath, func(s *config.State) { s.ThresholdG = g })
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatThreshold(st.ThresholdG))
			return nil
		},
	}
	set.Flags().BoolVarP(&position, "position", "p", false, "value is a slider position (0-250)")

	cmd.AddCommand(get, set)
	return cmd
}

// parseThreshold accepts a value in g, or a slider position when pos is set.
// Out-of-range values are clamped.
func parseThreshold(arg string, pos bool) (float64, error) {
	if pos {
		p, err := strconv.Atoi(arg)
		if err != nil {
			return 0, fmt.Errorf("invalid position: %w", err)
		}
		return detector.ThresholdFromPosition(p), nil
	}
	g, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold: %w", err)
	}
	return detector.ClampThreshold(g), nil
}

func formatThreshold(g float64) string {
	return fmt.Sprintf("Threshold: %.2f g (position %d/%d)", g, detector.PositionFromThreshold(g), detector.MaxPosition)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show threshold and daemon state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := config.LoadState(cfg.StatePath)
			if err != nil {
				return err
			}
			running := "stopped"
			if st.Running {
				running = "running"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatThreshold(st.ThresholdG))
			fmt.Fprintf(out, "Daemon: %s\n", running)
			fmt.Fprintf(out, "State: %s\n", cfg.StatePath)
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask a running daemon to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, err = config.UpdateState(cfg.StatePath, func(s *config.State) { s.Running = false })
			return err
		},
	}
}

func pulseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pulse",
		Short: "Fire the configured feedback pulse once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p := app.NewPulser(cfg.Pulse)
			if p == nil {
				return errors.New("no pulse enabled in the [pulse] config section")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			return p.Pulse(ctx)
		},
	}
}

func lockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Run the configured lock action now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.NewDispatcher(cfg.Lock, os.Stdin, os.Stdout).Lock(cmd.Context())
		},
	}
}
