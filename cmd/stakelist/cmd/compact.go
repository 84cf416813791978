package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/stakelist/pkg/codec"
	"github.com/ssargent/stakelist/pkg/store"
)

func newCompactCmd() *cobra.Command {
	compactCmd := &cobra.Command{
		Use:   "compact",
		Short: "Rewrite the buffer without corrupt records",
		Long: `Rewrite the buffer keeping decodable records in order. Corrupt positions
are always dropped; --drop-inactive also drops inactive validators.

Indexes of kept records change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var keep func(codec.Validator) bool
			if dropInactive, _ := cmd.Flags().GetBool("drop-inactive"); dropInactive {
				keep = store.DropInactive
			}

			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}

			res, err := ledger.Compact(keep)
			if err != nil {
				return err
			}
			cmd.Printf("kept %d, dropped %d, corrupt %d\n", res.Kept, res.Dropped, res.Corrupt)
			return nil
		},
	}
	compactCmd.Flags().Bool("drop-inactive", false, "Also drop inactive validators")
	return compactCmd
}
