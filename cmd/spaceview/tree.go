// tree.go - plain-text rendering of a projected Node tree
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
	"strings"

	"github.com/dustin/go-humanize"

	sv "github.com/opencoff/spaceview"
)

// printTree renders n and its children up to maxDepth, indented two
// spaces per level, largest entries first (the Tree Projector already
// sorted them).
func printTree(n *sv.Node, depth, maxDepth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s  %s\n", indent, humanize.Bytes(uint64(n.Size)), n.Name)

	if depth >= maxDepth {
		return
	}
	for _, c := range n.Children {
		printTree(c, depth+1, maxDepth)
	}
}
