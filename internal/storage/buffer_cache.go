package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const defaultCapacity = 100

// Cache is a bounded LRU buffer cache sitting in front of a Pager. It serves
// reads from resident pages when present, loads on miss, and evicts the
// least-recently-used page (writing it back first if dirty) under pressure.
//
// Cache is not safe for concurrent use; callers serialize their own access.
type Cache struct {
	capacity int
	pager    *Pager
	log      *logrus.Logger

	items map[uint32]*cacheNode
	head  *cacheNode // most recently used
	tail  *cacheNode // least recently used

	hits, misses, evictions uint64
}

type cacheNode struct {
	page       *Page
	prev, next *cacheNode
}

// NewCache creates a cache of the given capacity (defaulting to 100, the
// documented cache capacity, if capacity < 1) backed by pager.
func NewCache(pager *Pager, capacity int, log *logrus.Logger) *Cache {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	c := &Cache{
		capacity: capacity,
		pager:    pager,
		log:      log,
		items:    make(map[uint32]*cacheNode, capacity),
	}
	c.head = &cacheNode{}
	c.tail = &cacheNode{}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the page for id, loading it from the pager on a cache miss.
// The returned pointer is only valid until the next call into the cache.
func (c *Cache) Get(id uint32) (*Page, error) {
	if node, ok := c.items[id]; ok {
		c.hits++
		c.moveToHead(node)
		return node.page, nil
	}

	c.misses++
	if len(c.items) >= c.capacity {
		if err := c.evictLRU(); err != nil {
			return nil, err
		}
	}

	page := &Page{ID: id}
	if err := c.pager.ReadPage(id, &page.Data); err != nil {
		return nil, err
	}

	node := &cacheNode{page: page}
	c.items[id] = node
	c.addToHead(node)
	return page, nil
}

// AllocateNew asks the pager for a fresh page, installs it at the LRU head
// as dirty, and returns it.
func (c *Cache) AllocateNew() (*Page, error) {
	id, err := c.pager.Allocate()
	if err != nil {
		return nil, err
	}

	if len(c.items) >= c.capacity {
		if err := c.evictLRU(); err != nil {
			return nil, err
		}
	}

	page := &Page{ID: id, Dirty: true}
	node := &cacheNode{page: page}
	c.items[id] = node
	c.addToHead(node)
	return page, nil
}

// MarkDirty records that page's bytes were mutated since it was last
// persisted. The cache never infers this on its own.
func (c *Cache) MarkDirty(page *Page) {
	page.Dirty = true
}

// FlushAll writes back every dirty resident page without evicting any of
// them.
func (c *Cache) FlushAll() error {
	for id, node := range c.items {
		if !node.page.Dirty {
			continue
		}
		if err := c.pager.WritePage(id, &node.page.Data); err != nil {
			return err
		}
		node.page.Dirty = false
	}
	return c.pager.FlushHeader()
}

// Close flushes every dirty page and closes the underlying pager.
func (c *Cache) Close() error {
	if err := c.FlushAll(); err != nil {
		c.pager.file.Close()
		return err
	}
	return c.pager.Close()
}

// Pager exposes the underlying pager for callers that need header-level
// metadata (schema page id, page count).
func (c *Cache) Pager() *Pager { return c.pager }

func (c *Cache) evictLRU() error {
	victim := c.tail.prev
	if victim == c.head {
		return nil // empty cache
	}

	if victim.page.Dirty {
		if err := c.pager.WritePage(victim.page.ID, &victim.page.Data); err != nil {
			c.log.WithFields(logrus.Fields{"page": victim.page.ID, "error": err}).
				Warn("buffer cache: write-back failed during eviction")
			return fmt.Errorf("%w: page %d: %v", ErrWriteBackFailed, victim.page.ID, err)
		}
	}

	c.removeNode(victim)
	delete(c.items, victim.page.ID)
	c.evictions++
	return nil
}

func (c *Cache) moveToHead(node *cacheNode) {
	c.removeNode(node)
	c.addToHead(node)
}

func (c *Cache) addToHead(node *cacheNode) {
	node.next = c.head.next
	node.prev = c.head
	c.head.next.prev = node
	c.head.next = node
}

func (c *Cache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

// Stats reports buffer cache counters, used by the HTTP /stats endpoint and
// the REPL's .stats meta-command.
type Stats struct {
	Capacity   int
	Size       int
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	DirtyPages int
}

func (c *Cache) Stats() Stats {
	dirty := 0
	for _, node := range c.items {
		if node.page.Dirty {
			dirty++
		}
	}
	return Stats{
		Capacity:   c.capacity,
		Size:       len(c.items),
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		DirtyPages: dirty,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Cache{Capacity: %d, Size: %d, Hits: %d, Misses: %d, Evictions: %d, DirtyPages: %d}",
		s.Capacity, s.Size, s.Hits, s.Misses, s.Evictions, s.DirtyPages,
	)
}
