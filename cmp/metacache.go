// metacache.go - optional owner/group/xattr equality for DirTree
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

import sv "github.com/opencoff/spaceview"

// metaCache lazily Lstats a path at most once, caching the richer
// sv.Info (uid/gid/xattr) that sv.Entry doesn't carry. DirTree only
// consults it when WithMetaCompare is in effect, since a full Lstat
// per file is not free.
type metaCache struct {
	m *sv.FioMap
}

func newMetaCache() *metaCache {
	return &metaCache{m: sv.NewFioMap()}
}

func (c *metaCache) lstat(path string) (*sv.Info, error) {
	if fi, ok := c.m.Load(path); ok {
		return fi, nil
	}
	fi, err := sv.Lstat(path)
	if err != nil {
		return nil, err
	}
	fi, _ = c.m.LoadOrStore(path, fi)
	return fi, nil
}

// MetaEqualFlag selects which sv.Info attributes WithMetaCompare
// requires to match, beyond the size check DirTree always does.
type MetaEqualFlag uint

const (
	MetaUID MetaEqualFlag = 1 << iota
	MetaGID
	MetaXattr
)

// WithMetaCompare upgrades the plain size comparison into a
// deep-compare hook that also Lstats both sides and checks the
// attributes named by flags. Use this when a caller cares whether a
// copy preserved ownership or extended attributes, not just content
// size.
func WithMetaCompare(flags MetaEqualFlag) Option {
	cache := newMetaCache()
	return WithDeepCompare(func(lhs, rhs *sv.Entry) (bool, error) {
		// size already matched to get here; nothing further to
		// check if no attribute flags were requested.
		if flags == 0 {
			return true, nil
		}

		li, err := cache.lstat(lhs.Path)
		if err != nil {
			return false, err
		}
		ri, err := cache.lstat(rhs.Path)
		if err != nil {
			return false, err
		}

		if flags&MetaUID != 0 && li.Uid != ri.Uid {
			return false, nil
		}
		if flags&MetaGID != 0 && li.Gid != ri.Gid {
			return false, nil
		}
		if flags&MetaXattr != 0 && !li.Xattr.Equal(ri.Xattr) {
			return false, nil
		}
		return true, nil
	})
}
