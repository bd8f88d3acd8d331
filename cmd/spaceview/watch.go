// watch.go - "spaceview watch" subcommand
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
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Scan a directory, then keep rescanning as it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]

			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := e.Scan(ctx, root)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", res.Root)
			fmt.Printf("  files: %d  dirs: %d  size: %s\n",
				res.Files, res.Dirs, humanize.Bytes(uint64(res.TotalSize)))

			updates, err := e.ArmWatch(ctx, root)
			if err != nil {
				return err
			}

			fmt.Println("watching for changes, press ctrl-c to stop")
			for {
				select {
				case <-ctx.Done():
					return nil
				case res, ok := <-updates:
					if !ok {
						return nil
					}
					if res.Cancelled {
						continue
					}
					fmt.Printf("\n%s changed\n", res.Root)
					fmt.Printf("  files: %d  dirs: %d  size: %s\n",
						res.Files, res.Dirs, humanize.Bytes(uint64(res.TotalSize)))
				}
			}
		},
	}
	return cmd
}
