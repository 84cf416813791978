package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show buffer usage and stake totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}
			stats := ledger.Stats()

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			cmd.Printf("records:       %d / %d\n", stats.Count, stats.Capacity)
			cmd.Printf("remaining:     %d\n", stats.RemainingCapacity)
			cmd.Printf("bytes used:    %d / %d\n", stats.UsedBytes, stats.CapacityBytes)
			cmd.Printf("header width:  %d\n", stats.HeaderWidth)
			cmd.Printf("active:        %d\n", stats.Active)
			cmd.Printf("inactive:      %d\n", stats.Inactive)
			cmd.Printf("corrupt:       %d\n", stats.Corrupt)
			cmd.Printf("total stake:   %d\n", stats.TotalStake)
			cmd.Printf("total unstake: %d\n", stats.TotalUnstake)
			return nil
		},
	}
	statsCmd.Flags().Bool("json", false, "Print statistics as JSON")
	return statsCmd
}
