//go:build darwin || linux

// shakelock locks the session when the laptop is shaken. It reads samples
// from shared memory (written by sensord), runs the shake detector and
// dispatches the lock and feedback pulse actions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/taigrr/shakelock/app"
	"github.com/taigrr/shakelock/config"
	"github.com/taigrr/shakelock/daemon"
	"github.com/taigrr/shakelock/detector"
	"github.com/taigrr/shakelock/screen"
	"github.com/taigrr/shakelock/shm"
)

var version = "dev"

var (
	configPath string
	verbose    bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "shakelock",
		Short: "Lock the screen when the laptop is shaken",
		Long: `shakelock reads accelerometer data from shared memory (created by sensord)
and locks the session when a shake stronger than the configured threshold
is detected. A short feedback pulse (keyboard backlight flash or tone)
acknowledges each shake. Shakes while the display is off are ignored.

The threshold can be changed while running with "shakectl threshold set";
"shakectl stop" shuts the daemon down.

Requires:
  - sensord running to provide sensor data`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: user config dir)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := app.LoadConfig(configPath, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	accel, err := shm.OpenRing(shm.NameAccel)
	if err != nil {
		return fmt.Errorf("opening accel shm (is sensord running?): %w", err)
	}
	defer accel.Close()

	st, err := config.UpdateState(cfg.StatePath, func(s *config.State) { s.Running = true })
	if err != nil {
		return fmt.Errorf("marking running: %w", err)
	}
	defer func() {
		if _, err := config.UpdateState(cfg.StatePath, func(s *config.State) { s.Running = false }); err != nil {
			log.WithError(err).Warn("could not clear running flag")
		}
	}()

	threshold := detector.NewThreshold(st.ThresholdG)
	err = config.WatchState(ctx, cfg.StatePath, func(s config.State) {
		if !s.Running {
			log.Info("stop requested")
			cancel()
			return
		}
		log.WithField("threshold", threshold.Store(s.ThresholdG)).Info("threshold updated")
	})
	if err != nil {
		log.WithError(err).Warn("not watching state, threshold changes will not apply")
	}

	mon := newMonitor(cfg.Screen)
	go mon.Run(ctx, app.PollInterval(cfg.Screen))

	rate := app.SampleRate(cfg.Sensor)
	d := &daemon.Daemon{
		Source: daemon.CursorSource(shm.NewCursor(accel)),
		Rate:   rate,
		Pipeline: detector.NewPipeline(detector.PipelineConfig{
			Threshold:     threshold,
			Screen:        mon,
			LockCooldown:  cfg.Detector.LockCooldown(),
			PulseCooldown: cfg.Detector.PulseCooldown(),
			HistoryLen:    cfg.Detector.HistorySeconds * rate,
		}),
		Locker: app.NewDispatcher(cfg.Lock, os.Stdin, os.Stdout),
		Pulser: app.NewPulser(cfg.Pulse),
		Clock:  detector.SystemClock{},
	}

	log.WithFields(log.Fields{
		"threshold": threshold.Load(),
		"restarts":  accel.Restarts(),
	}).Info("shakelock: listening for shakes (ctrl+c to quit)")

	start := time.Now()
	err = d.Run(ctx)
	log.WithFields(log.Fields{
		"samples": d.Pipeline.SampleCount,
		"events":  len(d.Pipeline.Events),
		"dropped": d.Dropped(),
		"uptime":  time.Since(start).Round(time.Second),
	}).Info("bye!")
	return err
}

// newMonitor adds the lid probe when sensord publishes a lid angle.
func newMonitor(cfg config.ScreenConfig) *screen.Monitor {
	var lid screen.AngleReader
	if cfg.UseLid {
		if snap, err := shm.OpenSnapshot(shm.NameLid, shm.LidSize); err == nil {
			lid = snap
		} else {
			log.WithError(err).Debug("no lid angle available")
		}
	}
	return app.NewMonitor(cfg, lid)
}
