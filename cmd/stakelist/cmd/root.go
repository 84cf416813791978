package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ssargent/stakelist/pkg/config"
	"github.com/ssargent/stakelist/pkg/di"
	"github.com/ssargent/stakelist/pkg/logging"
	"github.com/ssargent/stakelist/pkg/store"
)

type containerKey struct{}

// NewRootCmd builds the stakelist command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stakelist",
		Short: "stakelist - fixed-capacity validator stake ledger",
		Long: `stakelist stores validator stake records in a fixed-size, memory-mapped
buffer: a little-endian record count followed by 17-byte records.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logging.ConfigureRuntime(cfg.Logging.Level, cfg.Logging.Format)

			c := di.NewContainer(cfg, log.Logger)
			cmd.SetContext(withContainer(cmd.Context(), c))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default ~/.config/stakelist/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides config)")

	rootCmd.AddCommand(
		newInitCmd(),
		newAppendCmd(),
		newListCmd(),
		newGetCmd(),
		newStatsCmd(),
		newVerifyCmd(),
		newCompactCmd(),
		newSnapshotCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// Execute runs root and releases whatever the executed command opened, including
// when it failed.
func Execute(root *cobra.Command) error {
	cmd, err := root.ExecuteC()
	if cmd == nil {
		return err
	}
	if c, ok := containerFrom(cmd); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	return path
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	return cfg, nil
}

// openLedger opens the ledger and reports corruption found while opening
func openLedger(cmd *cobra.Command) (*store.Ledger, error) {
	c, err := containerOrErr(cmd)
	if err != nil {
		return nil, err
	}
	ledger, res, err := c.Ledger()
	if err != nil {
		return nil, err
	}
	if n := len(res.CorruptIndexes); n > 0 {
		cmd.PrintErrf("warning: %d corrupt record(s) detected, run 'stakelist verify'\n", n)
	}
	if res.CountOutOfRange {
		cmd.PrintErrf("warning: stored record count exceeds buffer capacity, run 'stakelist compact'\n")
	}
	return ledger, nil
}
