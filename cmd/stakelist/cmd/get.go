package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <index>",
		Short: "Print the validator at an index",
		Long: `Print the validator record stored at a zero-based index.

Example:
  stakelist get 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}

			v, err := ledger.Get(index)
			if err != nil {
				return err
			}

			cmd.Printf("index:   %d\n", index)
			cmd.Printf("stake:   %d\n", v.StakeBalance)
			cmd.Printf("unstake: %d\n", v.UnstakeBalance)
			cmd.Printf("active:  %t\n", v.Active)
			return nil
		},
	}
}
