//go:build darwin || linux

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/taigrr/shakelock/app"
	"github.com/taigrr/shakelock/config"
	"github.com/taigrr/shakelock/daemon"
	"github.com/taigrr/shakelock/detector"
	"github.com/taigrr/shakelock/shm"
)

func dashCmd() *cobra.Command {
	var withPulse bool
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Live shake gauge",
		Long: `dash reads accelerometer data from shared memory (created by sensord) and
shows the shake intensity against the current threshold. Use it to pick a
threshold: shake the laptop and watch for "WILL LOCK". Nothing is locked
while the dashboard runs; with --pulse the feedback pulse fires on each
threshold crossing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd.Context(), withPulse)
		},
	}
	cmd.Flags().BoolVar(&withPulse, "pulse", false, "fire the feedback pulse on each crossing")
	return cmd
}

func runDash(ctx context.Context, withPulse bool) error {
	cfg, err := loadConfig()
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

	st, err := config.LoadState(cfg.StatePath)
	if err != nil {
		return err
	}
	threshold := detector.NewThreshold(st.ThresholdG)
	if err := config.WatchState(ctx, cfg.StatePath, func(s config.State) {
		threshold.Store(s.ThresholdG)
	}); err != nil {
		log.WithError(err).Debug("not watching state")
	}

	rate := app.SampleRate(cfg.Sensor)
	d := &daemon.Daemon{
		Source: daemon.CursorSource(shm.NewCursor(accel)),
		Rate:   rate,
		Pipeline: detector.NewPipeline(detector.PipelineConfig{
			Threshold:     threshold,
			LockCooldown:  cfg.Detector.LockCooldown(),
			PulseCooldown: cfg.Detector.PulseCooldown(),
			HistoryLen:    cfg.Detector.HistorySeconds * rate,
		}),
		Clock: detector.SystemClock{},
	}
	if withPulse {
		d.Pulser = app.NewPulser(cfg.Pulse)
	}

	// Keep log lines from tearing the frame.
	prev := log.GetLevel()
	log.SetLevel(log.ErrorLevel)
	defer log.SetLevel(prev)

	fmt.Print(altOn + hideCur)
	defer fmt.Print(showCur + altOff + "\n")

	start := time.Now()
	ticker := time.NewTicker(daemon.DefaultInterval)
	defer ticker.Stop()
	var lastDraw time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			d.Step(ctx)
			if now.Sub(lastDraw) < 100*time.Millisecond {
				continue
			}
			lastDraw = now
			p := d.Pipeline
			res := p.Last
			if p.SampleCount == 0 {
				res.Threshold = threshold.Load()
			}
			fmt.Print(clear + render(frame{
				Elapsed: time.Since(start),
				Samples: p.SampleCount,
				Dropped: d.Dropped(),
				Result:  res,
				History: p.History.Slice(),
				Events:  p.Events,
			}))
		}
	}
}
