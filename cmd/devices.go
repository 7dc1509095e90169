package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/arvrtise/haus/internal/devices"
	"github.com/arvrtise/haus/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Probe and list capture devices",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	enum := devices.NewEnumerator()
	err := enum.RequestPermissionAndPopulateDevices(ctx)
	ui.NewWithWriter(cmd.OutOrStdout(), false).Devices(enum.Devices(), err)
	if errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
