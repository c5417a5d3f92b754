// Package btree implements a fixed-order, Knuth-style B-tree whose nodes are
// serialized directly into pages obtained from a storage.Cache. It maps
// 32-bit key fingerprints to 32-bit payload page ids.
package btree

import (
	"encoding/binary"

	"github.com/arjunmenon/pagebase/internal/storage"
)

// Order is the fixed branching factor: a node holds at most Order-1 keys and
// at most Order children.
const Order = 4

const maxKeys = Order - 1

// node is the in-memory view of one B-tree node, decoded from or encoded
// into a page's byte buffer.
type node struct {
	pageID   uint32
	isLeaf   bool
	numKeys  uint32
	keys     [maxKeys]uint32
	values   [maxKeys]uint32
	children [Order]uint32
}

// Layout within the page: numKeys(4) | isLeaf(1) | keys(4*3) | values(4*3) | children(4*4)
const (
	offNumKeys  = 0
	offIsLeaf   = 4
	offKeys     = 5
	offValues   = offKeys + 4*maxKeys
	offChildren = offValues + 4*maxKeys
)

func nodeToPage(n *node, page *storage.Page) {
	buf := page.Data[:]
	binary.LittleEndian.PutUint32(buf[offNumKeys:], n.numKeys)
	if n.isLeaf {
		buf[offIsLeaf] = 1
	} else {
		buf[offIsLeaf] = 0
	}
	for i := 0; i < maxKeys; i++ {
		binary.LittleEndian.PutUint32(buf[offKeys+i*4:], n.keys[i])
		binary.LittleEndian.PutUint32(buf[offValues+i*4:], n.values[i])
	}
	for i := 0; i < Order; i++ {
		binary.LittleEndian.PutUint32(buf[offChildren+i*4:], n.children[i])
	}
}

func pageToNode(page *storage.Page) *node {
	buf := page.Data[:]
	n := &node{pageID: page.ID}
	n.numKeys = binary.LittleEndian.Uint32(buf[offNumKeys:])
	n.isLeaf = buf[offIsLeaf] != 0
	for i := 0; i < maxKeys; i++ {
		n.keys[i] = binary.LittleEndian.Uint32(buf[offKeys+i*4:])
		n.values[i] = binary.LittleEndian.Uint32(buf[offValues+i*4:])
	}
	for i := 0; i < Order; i++ {
		n.children[i] = binary.LittleEndian.Uint32(buf[offChildren+i*4:])
	}
	return n
}
