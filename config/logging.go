package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger. verbose forces debug
// regardless of level.
func SetupLogging(level string, verbose bool) error {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	if verbose {
		log.SetLevel(log.DebugLevel)
		return nil
	}
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	return nil
}
