// cmp.go - "spaceview cmp" subcommand
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

	"github.com/spf13/cobra"
)

func cmpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmp <left> <right>",
		Short: "Compare two directory trees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			d, err := e.Compare(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Print(d.String())
			return nil
		},
	}
	return cmd
}
