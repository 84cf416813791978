package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Decode every record and report corruption",
		Long: `Decode every stored record. Exits non-zero when a record has an invalid
active flag or the stored count exceeds what the buffer can hold.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}

			res, err := ledger.Verify()
			if err != nil {
				return err
			}

			cmd.Printf("records checked: %d\n", res.Records)
			for _, i := range res.CorruptIndexes {
				cmd.Printf("corrupt record at index %d\n", i)
			}
			if res.CountOutOfRange {
				cmd.Printf("stored count exceeds buffer capacity\n")
			}
			if !res.OK() {
				return fmt.Errorf("verification failed")
			}
			cmd.Printf("OK\n")
			return nil
		},
	}
}
