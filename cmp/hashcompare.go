// hashcompare.go - content-hash backed deep-compare option
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

package cmp

import (
	sv "github.com/opencoff/spaceview"
	"github.com/opencoff/spaceview/hash"
)

// WithHashCompare supplies a deep-compare hook backed by the
// two-tier content hasher: two equal-length files are confirmed
// identical only once their partial hashes agree and a full hash
// confirms it. A file that cannot be read for hashing makes the pair
// unequal rather than failing the comparison. This is the option the
// command surface wires in by default, since DirTree on its own never
// assumes equal mtime means equal content.
func WithHashCompare() Option {
	return WithDeepCompare(func(lhs, rhs *sv.Entry) (bool, error) {
		lp, err := hash.Partial(lhs.Path)
		if err != nil {
			return false, nil
		}
		rp, err := hash.Partial(rhs.Path)
		if err != nil {
			return false, nil
		}
		if lp != rp {
			return false, nil
		}

		lf, err := hash.Full(lhs.Path)
		if err != nil {
			return false, nil
		}
		rf, err := hash.Full(rhs.Path)
		if err != nil {
			return false, nil
		}
		return lf == rf, nil
	})
}
