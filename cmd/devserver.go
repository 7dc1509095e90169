package cmd

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/devserver"
	"github.com/arvrtise/haus/internal/ui"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run an in-memory development backend",
	Long: `Serves POST /api/spaces and friends from memory so the join flow can be
exercised locally. Create requests return 401 unless both
devserver.token_id and devserver.token_secret are configured
(HAUS_DEVSERVER_TOKEN_ID, HAUS_DEVSERVER_TOKEN_SECRET), and 419 once
devserver.max_active spaces exist.`,
	Args: cobra.NoArgs,
	RunE: runDevServer,
}

func init() {
	devserverCmd.Flags().String("addr", "", "listen address (overrides devserver.addr)")
	devserverCmd.Flags().Int("max-active", 0, "active space cap (overrides devserver.max_active)")
	_ = viper.BindPFlag("devserver.addr", devserverCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("devserver.max_active", devserverCmd.Flags().Lookup("max-active"))
	rootCmd.AddCommand(devserverCmd)
}

func runDevServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	printer := ui.New()
	dc := cfg.DevServer
	srv := devserver.NewServer(dc)
	return srv.ListenAndServe(ctx, dc.Addr, func(addr net.Addr) {
		printer.Listening(addr.String(), dc.MaxActive, dc.TokenID != "" && dc.TokenSecret != "")
	})
}
