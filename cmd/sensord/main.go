//go:build darwin || linux

// sensord reads the accelerometer (and the lid angle on Apple Silicon) and
// writes it to POSIX shared memory for shakelock and shakectl dash.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/charmbracelet/fang"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/taigrr/shakelock/config"
	"github.com/taigrr/shakelock/sensor"
	"github.com/taigrr/shakelock/shm"
)

var version = "dev"

var (
	configPath string
	verbose    bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "sensord",
		Short: "Accelerometer sensor daemon",
		Long: `sensord reads the accelerometer and writes samples to POSIX shared
memory for consumption by shakelock and shakectl.

On Apple Silicon MacBooks it reads the SPU IMU and lid angle via IOKit HID
and requires root privileges (sudo). On Linux it polls an ADXL345 over I2C
using the [sensor] section of the config file.`,
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
	if runtime.GOOS == "darwin" && os.Geteuid() != 0 {
		return fmt.Errorf("sensord requires root privileges, run with: sudo sensord")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.SetupLogging(cfg.LogLevel, verbose); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Segments are left in place on exit so that running readers pick up
	// the next sensord without reopening.
	accel, err := shm.CreateRing(shm.NameAccel)
	if err != nil {
		return fmt.Errorf("creating accel shm: %w", err)
	}
	defer accel.Close()

	var lid *shm.Snapshot
	if runtime.GOOS == "darwin" {
		lid, err = shm.CreateSnapshot(shm.NameLid, shm.LidSize)
		if err != nil {
			return fmt.Errorf("creating lid shm: %w", err)
		}
		defer lid.Close()
	}

	log.WithFields(log.Fields{"restarts": accel.Restarts(), "os": runtime.GOOS}).Info("sensord: streaming accelerometer (ctrl+c to stop)")

	return sensor.Run(ctx, sensor.Config{
		Accel:  accel,
		Lid:    lid,
		Bus:    cfg.Sensor.Bus,
		Addr:   cfg.Sensor.Addr,
		RateHz: cfg.Sensor.RateHz,
	})
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.Load(path)
}
