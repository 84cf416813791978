package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/config"
	"github.com/ssargent/stakelist/pkg/di"
	"github.com/ssargent/stakelist/pkg/logging"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file and an empty buffer file",
		Long: `Create a configuration file with a generated API key and an empty,
fixed-size buffer file.

Examples:
  stakelist init
  stakelist init --data-dir ./data --capacity 10240 --header-width 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			force, _ := cmd.Flags().GetBool("force")

			if config.ConfigExists(path) && !force {
				cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", path)
				return nil
			}

			capacity, _ := cmd.Flags().GetInt("capacity")
			width, _ := cmd.Flags().GetInt("header-width")
			candidate := config.DefaultConfig()
			candidate.Buffer.CapacityBytes = capacity
			candidate.Buffer.HeaderWidth = width
			if err := candidate.Validate(); err != nil {
				return err
			}

			dataDir, _ := cmd.Flags().GetString("data-dir")
			cfg, err := config.BootstrapConfig(path, dataDir)
			if err != nil {
				return err
			}
			cfg.Buffer = candidate.Buffer
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}

			logging.ConfigureRuntime(cfg.Logging.Level, cfg.Logging.Format)
			c := di.NewContainer(cfg, log.Logger)
			defer c.Close()

			ledger, _, err := c.Ledger()
			if err != nil {
				return err
			}
			stats := ledger.Stats()

			cmd.Printf("Config written to %s\n", path)
			cmd.Printf("Buffer file: %s (%d bytes, %d-byte header, %d records)\n",
				cfg.BufferPath(), stats.CapacityBytes, stats.HeaderWidth, stats.Capacity)
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
			return nil
		},
	}

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Int("capacity", config.DefaultConfig().Buffer.CapacityBytes, "Buffer file size in bytes")
	initCmd.Flags().Int("header-width", int(biglist.DefaultHeaderWidth), "Record count header width (4 or 8)")
	return initCmd
}
