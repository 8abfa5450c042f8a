package cmd

import (
	"context"
	"log/slog"

	"github.com/gaze-network/spool-explorer/internal/config"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:          "spool",
	Long:         `Explore the provenance of digital works registered with the SPOOL protocol on Bitcoin`,
	SilenceUsage: true,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "mainnet", "network to connect to, E.g. `mainnet` or `testnet`")
	flags.String("datasource", "esplora", "transaction source, E.g. `esplora` or `bitcoin-node`")

	// Bind flags to configuration
	config.BindPFlag("network", flags.Lookup("network"))
	config.BindPFlag("spool.datasource", flags.Lookup("datasource"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		config := config.Parse(configFile)

		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	cmd.AddCommand(
		NewVersionCommand(),
		NewRunCommand(),
		NewHistoryCommand(),
		NewHashCommand(),
		NewVerbCommand(),
	)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute command", slogx.Error(err))
	}
}
