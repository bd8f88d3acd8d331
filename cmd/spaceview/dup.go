// dup.go - "spaceview dup" subcommand
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
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/opencoff/spaceview/dup"
)

func dupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dup <path>...",
		Short: "Find duplicate files beneath one or more directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			bar := progressbar.Default(-1, "hashing")
			defer bar.Close()

			progress := make(chan dup.Progress, 4)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for p := range progress {
					bar.Set64(p.FilesHashedFull)
				}
			}()

			res, err := e.FindDuplicates(args, progress)
			close(progress)
			<-done
			if err != nil {
				return err
			}
			bar.Finish()

			for _, g := range res.Groups {
				fmt.Printf("%s  %s x%d\n", g.Hash[:12], humanize.Bytes(uint64(g.Size)), len(g.Paths))
				for _, p := range g.Paths {
					fmt.Printf("  %s\n", p)
				}
			}
			fmt.Printf("\n%d duplicate groups, %s reclaimable\n", len(res.Groups), humanize.Bytes(uint64(res.Stats.WastedBytes)))
			fmt.Printf("scanned %d files, partial-hashed %d, full-hashed %d across %d sub-buckets\n",
				res.Stats.FilesScanned, res.Stats.FilesHashedPartial, res.Stats.FilesHashedFull, res.Stats.SubBucketsConfirmed)
			return nil
		},
	}
	return cmd
}
