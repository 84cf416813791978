package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/stakelist/pkg/codec"
)

func newAppendCmd() *cobra.Command {
	appendCmd := &cobra.Command{
		Use:   "append",
		Short: "Append a validator record",
		Long: `Append one validator record to the end of the list.

Example:
  stakelist append --stake 1000 --unstake 250 --active=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stake, _ := cmd.Flags().GetUint64("stake")
			unstake, _ := cmd.Flags().GetUint64("unstake")
			active, _ := cmd.Flags().GetBool("active")

			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}

			index, err := ledger.Append(codec.Validator{StakeBalance: stake, UnstakeBalance: unstake, Active: active})
			if err != nil {
				return err
			}
			if err := ledger.Flush(); err != nil {
				return err
			}

			cmd.Printf("Appended validator at index %d (%d slots remaining)\n", index, ledger.Stats().RemainingCapacity)
			return nil
		},
	}

	appendCmd.Flags().Uint64("stake", 0, "Stake balance")
	appendCmd.Flags().Uint64("unstake", 0, "Unstake balance")
	appendCmd.Flags().Bool("active", true, "Whether the validator is active")
	return appendCmd
}
