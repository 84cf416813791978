package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored validator in append order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}

			entries, err := ledger.Validators()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Index", "Stake", "Unstake", "Active", "Error"})
			table.SetAutoWrapText(false)
			for _, e := range entries {
				index := strconv.FormatUint(e.Index, 10)
				if e.Err != nil {
					table.Append([]string{index, "", "", "", e.Err.Error()})
					continue
				}
				table.Append([]string{
					index,
					strconv.FormatUint(e.Validator.StakeBalance, 10),
					strconv.FormatUint(e.Validator.UnstakeBalance, 10),
					strconv.FormatBool(e.Validator.Active),
					"",
				})
			}
			table.Render()
			return nil
		},
	}
}
