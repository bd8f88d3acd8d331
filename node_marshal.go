// node_marshal.go - binary (de)serialization of a projected Node tree
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

package spaceview

import "fmt"

// nodeMarshalVersion guards the binary layout below. The cache store
// refuses to decode a blob written by a different version rather than
// guess at a possibly-incompatible layout.
const nodeMarshalVersion byte = 1

// MarshalSize returns the exact number of bytes MarshalTo will write
// for the subtree rooted at n.
func (n *Node) MarshalSize() int {
	sz := 1 + // version
		4 + len(n.ID) +
		4 + len(n.Name) +
		4 + len(n.Path) +
		8 + // size
		1 + // isdir
		4 + len(n.Ext) +
		8 + // mtime
		8 + 8 + // file/dir count
		1 + 1 + // isnew/isdeleted
		8 + // prevsize
		4 // child count

	for _, c := range n.Children {
		sz += c.MarshalSize()
	}
	return sz
}

// Marshal encodes the subtree rooted at n.
func (n *Node) Marshal() []byte {
	b := make([]byte, n.MarshalSize())
	n.marshalTo(b)
	return b
}

func (n *Node) marshalTo(b []byte) []byte {
	b[0] = nodeMarshalVersion
	b = b[1:]

	b = encstr(b, n.ID)
	b = encstr(b, n.Name)
	b = encstr(b, n.Path)
	b = enc64(b, n.Size)

	if n.IsDir {
		b[0] = 1
	} else {
		b[0] = 0
	}
	b = b[1:]

	b = encstr(b, n.Ext)
	b = enc64(b, n.MTime)
	b = enc64(b, n.FileCount)
	b = enc64(b, n.DirCount)

	if n.IsNew {
		b[0] = 1
	} else {
		b[0] = 0
	}
	b = b[1:]
	if n.IsDeleted {
		b[0] = 1
	} else {
		b[0] = 0
	}
	b = b[1:]

	b = enc64(b, n.PrevSize)
	b = enc32(b, len(n.Children))

	for _, c := range n.Children {
		b = c.marshalTo(b)
	}
	return b
}

// UnmarshalNode decodes a subtree previously produced by Node.Marshal.
func UnmarshalNode(buf []byte) (*Node, error) {
	n, _, err := unmarshalNode(buf)
	return n, err
}

func unmarshalNode(b []byte) (*Node, []byte, error) {
	if len(b) < 1 {
		return nil, nil, fmt.Errorf("unmarshal node: %w", ErrTooSmall)
	}
	ver := b[0]
	if ver != nodeMarshalVersion {
		return nil, nil, fmt.Errorf("unmarshal node: version %d unsupported", ver)
	}
	b = b[1:]

	n := &Node{}
	var err error

	b, n.ID, err = decstr(b)
	if err != nil {
		return nil, nil, err
	}
	b, n.Name, err = decstr(b)
	if err != nil {
		return nil, nil, err
	}
	b, n.Path, err = decstr(b)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < 8 {
		return nil, nil, fmt.Errorf("unmarshal node: size: %w", ErrTooSmall)
	}
	b, n.Size = dec64[int64](b)

	if len(b) < 1 {
		return nil, nil, fmt.Errorf("unmarshal node: isdir: %w", ErrTooSmall)
	}
	n.IsDir = b[0] == 1
	b = b[1:]

	b, n.Ext, err = decstr(b)
	if err != nil {
		return nil, nil, err
	}

	if len(b) < 8 {
		return nil, nil, fmt.Errorf("unmarshal node: mtime: %w", ErrTooSmall)
	}
	b, n.MTime = dec64[int64](b)
	b, n.FileCount = dec64[int64](b)
	b, n.DirCount = dec64[int64](b)

	if len(b) < 2 {
		return nil, nil, fmt.Errorf("unmarshal node: flags: %w", ErrTooSmall)
	}
	n.IsNew = b[0] == 1
	n.IsDeleted = b[1] == 1
	b = b[2:]

	b, n.PrevSize = dec64[int64](b)

	if len(b) < 4 {
		return nil, nil, fmt.Errorf("unmarshal node: childcount: %w", ErrTooSmall)
	}
	var nchild int
	b, nchild = dec32[int](b)

	n.Children = make([]*Node, 0, nchild)
	for i := 0; i < nchild; i++ {
		var c *Node
		var err error
		c, b, err = unmarshalNode(b)
		if err != nil {
			return nil, nil, err
		}
		n.Children = append(n.Children, c)
	}

	return n, b, nil
}
