package cmd

import (
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ssargent/stakelist/pkg/storage"
)

func newSnapshotCmd() *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, list, restore and delete buffer snapshots",
	}
	snapshotCmd.AddCommand(
		newSnapshotSaveCmd(),
		newSnapshotListCmd(),
		newSnapshotRestoreCmd(),
		newSnapshotDeleteCmd(),
	)
	return snapshotCmd
}

func snapshotStore(cmd *cobra.Command) (storage.SnapshotStore, error) {
	c, err := containerOrErr(cmd)
	if err != nil {
		return nil, err
	}
	return c.Snapshots()
}

func newSnapshotSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save a snapshot of the current buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}
			snapshots, err := snapshotStore(cmd)
			if err != nil {
				return err
			}

			data, err := ledger.Snapshot()
			if err != nil {
				return err
			}
			id, err := snapshots.Save(data)
			if err != nil {
				return err
			}
			cmd.Printf("Saved snapshot %s (%d records, %d bytes)\n", id, ledger.Stats().Count, len(data))
			return nil
		},
	}
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshots, err := snapshotStore(cmd)
			if err != nil {
				return err
			}
			infos, err := snapshots.List()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Created", "Size"})
			for _, info := range infos {
				table.Append([]string{info.ID, info.CreatedAt.Format(time.RFC3339), strconv.Itoa(info.Size)})
			}
			table.Render()
			return nil
		},
	}
}

func newSnapshotRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the buffer contents with a saved snapshot",
		Long: `Replace the buffer contents with a saved snapshot. The snapshot must have
been taken with the same header width and must fit in the buffer.

Run this while no server is using the buffer file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := storage.ParseID(args[0])
			if err != nil {
				return err
			}
			snapshots, err := snapshotStore(cmd)
			if err != nil {
				return err
			}
			data, err := snapshots.Load(id)
			if err != nil {
				return err
			}

			ledger, err := openLedger(cmd)
			if err != nil {
				return err
			}
			if err := ledger.Restore(data); err != nil {
				return err
			}
			cmd.Printf("Restored snapshot %s (%d records)\n", id, ledger.Stats().Count)
			return nil
		},
	}
}

func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := storage.ParseID(args[0])
			if err != nil {
				return err
			}
			snapshots, err := snapshotStore(cmd)
			if err != nil {
				return err
			}
			if err := snapshots.Delete(id); err != nil {
				return err
			}
			cmd.Printf("Deleted snapshot %s\n", id)
			return nil
		},
	}
}
