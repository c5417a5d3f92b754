// Package storage implements the on-disk page layout, the file pager, and the
// LRU buffer cache that sits in front of it.
package storage

// PageSize is the fixed size, in bytes, of every page in the data region.
const PageSize = 4096

// Page is a resident, in-memory view of one page-sized block of the database
// file. Callers obtain pages exclusively through a Cache; a Page returned by
// the cache is only valid until the next call into that cache.
type Page struct {
	ID    uint32
	Data  [PageSize]byte
	Dirty bool
}
