//go:build !darwin && !linux

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func dashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Live shake gauge (macOS and Linux only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("dash needs POSIX shared memory from sensord")
		},
	}
}
