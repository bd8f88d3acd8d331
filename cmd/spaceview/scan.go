// scan.go - "spaceview scan" subcommand
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

	"github.com/opencoff/spaceview/engine"
)

func scanCmd() *cobra.Command {
	var fromCache bool

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a directory and report its size breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]

			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()

			var res *engine.ScanResult
			if fromCache {
				res, err = e.LoadFromCache(ctx, root)
			} else {
				res, err = e.Scan(ctx, root)
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", res.Root)
			fmt.Printf("  files: %d  dirs: %d  size: %s\n",
				res.Files, res.Dirs, humanize.Bytes(uint64(res.TotalSize)))

			printTree(res.Tree, 0, 2)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromCache, "from-cache", false, "load the last cached scan instead of re-walking")
	return cmd
}
