// snapshot.go - "spaceview snapshot" subcommand group
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and compare point-in-time scans",
	}

	root.AddCommand(&cobra.Command{
		Use:   "save <path> <label>",
		Short: "Scan path and save it under label for later comparison",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanRoot, label := args[0], args[1]

			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			if _, err := e.Scan(ctx, scanRoot); err != nil {
				return err
			}
			return e.SaveSnapshot(ctx, scanRoot, label)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list <path>",
		Short: "List snapshots saved for path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			snaps, err := e.ListSnapshots(context.Background(), args[0])
			if err != nil {
				return err
			}
			for _, s := range snaps {
				fmt.Printf("%s\t%s\t%s\n", s.Label, humanize.Bytes(uint64(s.TotalSize)), s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "delete <path> <label>",
		Short: "Delete a saved snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			return e.DeleteSnapshot(context.Background(), args[0], args[1])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "diff <path> <old-label> <new-label>",
		Short: "Compare two saved snapshots of path",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.CompareSnapshots(context.Background(), args[0], args[1], args[2])
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s vs %s\n", res.ScanPath, args[1], args[2])
			fmt.Printf("  added=%d (%s) removed=%d (%s) changed=%d unchanged=%d\n",
				len(res.Added), humanize.Bytes(uint64(res.AddedSize)),
				len(res.Removed), humanize.Bytes(uint64(res.RemovedSize)),
				len(res.Changed), res.UnchangedCount)
			fmt.Printf("  net size change: %s\n", humanize.Bytes(uint64(abs64(res.NetSizeChange))))

			for _, f := range res.Added {
				fmt.Printf("  + %s (%s)\n", f.Path, humanize.Bytes(uint64(f.Size)))
			}
			for _, f := range res.Removed {
				fmt.Printf("  - %s (%s)\n", f.Path, humanize.Bytes(uint64(f.Size)))
			}
			for _, c := range res.Changed {
				fmt.Printf("  ~ %s (%s -> %s)\n", c.Path, humanize.Bytes(uint64(c.OldSize)), humanize.Bytes(uint64(c.NewSize)))
			}
			return nil
		},
	})

	return root
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
