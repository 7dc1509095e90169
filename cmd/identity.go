package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/identity"
	"github.com/arvrtise/haus/internal/ui"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Inspect or change the shared participant identity",
}

var identityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the participant identity",
	Long: `Prints the saved participant identity. With --watch, keeps running and
prints the identity again whenever another process changes it.`,
	Args: cobra.NoArgs,
	RunE: runIdentityShow,
}

var identitySetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Save the participant name",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitySet,
}

func init() {
	identityShowCmd.Flags().Bool("watch", false, "print again on every external change")
	identitySetCmd.Flags().Bool("interaction-required", false, "also set the interaction-required flag")
	identityCmd.AddCommand(identityShowCmd, identitySetCmd)
	rootCmd.AddCommand(identityCmd)
}

func openIdentity() (*identity.FileStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := identity.OpenFileStore(cfg.IdentityFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity: %w", err)
	}
	return store, nil
}

func runIdentityShow(cmd *cobra.Command, _ []string) error {
	store, err := openIdentity()
	if err != nil {
		return err
	}
	printer := ui.NewWithWriter(cmd.OutOrStdout(), false)
	printer.Identity(store.Snapshot())

	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}

	w, err := identity.NewWatcher(store)
	if err != nil {
		return fmt.Errorf("failed to create identity watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch identity: %w", err)
	}
	defer w.Stop()

	ctx, stop := signalContext(cmd)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-w.Changes:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printer.Identity(id)
		}
	}
}

func runIdentitySet(cmd *cobra.Command, args []string) error {
	store, err := openIdentity()
	if err != nil {
		return err
	}
	if err := store.SetParticipantName(args[0]); err != nil {
		return err
	}
	if cmd.Flags().Changed("interaction-required") {
		required, _ := cmd.Flags().GetBool("interaction-required")
		if err := store.SetInteractionRequired(required); err != nil {
			return err
		}
	}
	ui.NewWithWriter(cmd.OutOrStdout(), false).Identity(store.Snapshot())
	return nil
}
