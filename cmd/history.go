package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/history"
	"github.com/arvrtise/haus/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List spaces joined from this machine",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum entries to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	ui.NewWithWriter(cmd.OutOrStdout(), false).History(entries)
	return nil
}
