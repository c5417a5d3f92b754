package btree

import (
	"github.com/arjunmenon/pagebase/internal/storage"
)

// Index is a handle identifying which B-tree root a caller is operating
// against. It carries no state beyond the root page id: the tree itself
// lives entirely in pages owned by the cache, and a fresh Index can be
// constructed from a persisted root id at any time.
type Index struct {
	cache    *storage.Cache
	RootPage uint32 // 0 means the tree is empty
}

// New returns a handle over an existing (possibly empty) tree rooted at
// rootPage.
func New(cache *storage.Cache, rootPage uint32) *Index {
	return &Index{cache: cache, RootPage: rootPage}
}

func (idx *Index) newNode(isLeaf bool) (*node, error) {
	page, err := idx.cache.AllocateNew()
	if err != nil {
		return nil, err
	}
	n := &node{pageID: page.ID, isLeaf: isLeaf}
	nodeToPage(n, page)
	idx.cache.MarkDirty(page)
	return n, nil
}

func (idx *Index) loadNode(pageID uint32) (*node, error) {
	page, err := idx.cache.Get(pageID)
	if err != nil {
		return nil, err
	}
	return pageToNode(page), nil
}

func (idx *Index) saveNode(n *node) error {
	page, err := idx.cache.Get(n.pageID)
	if err != nil {
		return err
	}
	nodeToPage(n, page)
	idx.cache.MarkDirty(page)
	return nil
}

// Search returns the payload page id stored for hash, or ErrKeyNotFound.
func (idx *Index) Search(hash uint32) (uint32, error) {
	if idx.RootPage == 0 {
		return 0, ErrKeyNotFound
	}

	currentID := idx.RootPage
	for {
		n, err := idx.loadNode(currentID)
		if err != nil {
			return 0, err
		}

		i := uint32(0)
		for i < n.numKeys && hash > n.keys[i] {
			i++
		}

		if i < n.numKeys && hash == n.keys[i] {
			return n.values[i], nil
		}
		if n.isLeaf {
			return 0, ErrKeyNotFound
		}
		currentID = n.children[i]
	}
}

// Has reports whether hash already has an entry, for duplicate-key checks
// upstream of Insert.
func (idx *Index) Has(hash uint32) (bool, error) {
	_, err := idx.Search(hash)
	if err == ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert maps hash to valuePage. It returns ErrDuplicateKey if hash is
// already present -- the tree never stores two entries for the same key.
func (idx *Index) Insert(hash, valuePage uint32) error {
	if dup, err := idx.Has(hash); err != nil {
		return err
	} else if dup {
		return ErrDuplicateKey
	}

	if idx.RootPage == 0 {
		root, err := idx.newNode(true)
		if err != nil {
			return err
		}
		idx.RootPage = root.pageID
	}

	root, err := idx.loadNode(idx.RootPage)
	if err != nil {
		return err
	}

	if root.numKeys == maxKeys {
		newRoot, err := idx.newNode(false)
		if err != nil {
			return err
		}
		newRoot.children[0] = idx.RootPage

		if err := idx.splitChild(newRoot, 0, root); err != nil {
			return err
		}

		idx.RootPage = newRoot.pageID
		if err := idx.saveNode(newRoot); err != nil {
			return err
		}
		return idx.insertNonFull(newRoot.pageID, hash, valuePage)
	}

	return idx.insertNonFull(idx.RootPage, hash, valuePage)
}

// splitChild splits the full child at parent.children[i], promoting its
// median key into parent and installing the new right sibling.
func (idx *Index) splitChild(parent *node, i int, child *node) error {
	newNode, err := idx.newNode(child.isLeaf)
	if err != nil {
		return err
	}

	const t = Order / 2
	newNode.numKeys = t - 1

	for j := 0; j < t-1; j++ {
		newNode.keys[j] = child.keys[j+t]
		newNode.values[j] = child.values[j+t]
	}
	if !child.isLeaf {
		for j := 0; j < t; j++ {
			newNode.children[j] = child.children[j+t]
		}
	}
	child.numKeys = t - 1

	for j := int(parent.numKeys); j >= i+1; j-- {
		parent.children[j+1] = parent.children[j]
	}
	parent.children[i+1] = newNode.pageID

	for j := int(parent.numKeys) - 1; j >= i; j-- {
		parent.keys[j+1] = parent.keys[j]
		parent.values[j+1] = parent.values[j]
	}
	parent.keys[i] = child.keys[t-1]
	parent.values[i] = child.values[t-1]
	parent.numKeys++

	if err := idx.saveNode(newNode); err != nil {
		return err
	}
	return idx.saveNode(child)
}

func (idx *Index) insertNonFull(pageID, hash, value uint32) error {
	n, err := idx.loadNode(pageID)
	if err != nil {
		return err
	}

	i := int(n.numKeys) - 1

	if n.isLeaf {
		for i >= 0 && hash < n.keys[i] {
			n.keys[i+1] = n.keys[i]
			n.values[i+1] = n.values[i]
			i--
		}
		n.keys[i+1] = hash
		n.values[i+1] = value
		n.numKeys++
		return idx.saveNode(n)
	}

	for i >= 0 && hash < n.keys[i] {
		i--
	}
	i++

	child, err := idx.loadNode(n.children[i])
	if err != nil {
		return err
	}

	if child.numKeys == maxKeys {
		if err := idx.splitChild(n, i, child); err != nil {
			return err
		}
		if hash > n.keys[i] {
			i++
		}
	}

	if err := idx.insertNonFull(n.children[i], hash, value); err != nil {
		return err
	}
	return idx.saveNode(n)
}

// Delete is an intentional placeholder. See ErrDeleteNotImplemented.
func (idx *Index) Delete(hash uint32) error {
	return ErrDeleteNotImplemented
}
