// cache.go - "spaceview cache" subcommand group
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

func cacheCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached scans",
	}

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			hist, err := e.History(context.Background())
			if err != nil {
				return err
			}
			for _, r := range hist {
				fmt.Printf("%s\t%s\t%s\n", r.Root, humanize.Bytes(uint64(r.TotalSize)), r.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			return e.ClearAllCaches(context.Background())
		},
	})

	return root
}
