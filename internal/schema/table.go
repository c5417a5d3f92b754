package schema

import (
	"fmt"

	"github.com/arjunmenon/pagebase/internal/storage"
)

// AppendRow packs values into a new row and places it in the first free
// slot of entry's data page chain, allocating a new page and linking it in
// if the chain is full. It does not touch the primary-key index; callers
// that need uniqueness enforcement do that separately.
func AppendRow(cache *storage.Cache, catalog *Catalog, tableName string, values []any) (Location, error) {
	entry, ok := catalog.Lookup(tableName)
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	rowID, err := catalog.AllocateRowID(tableName)
	if err != nil {
		return Location{}, err
	}

	row, err := EncodeRow(&entry.Schema, RowHeader{RowID: rowID}, values)
	if err != nil {
		return Location{}, err
	}

	slotSize := entry.Schema.RowSize
	slots := slotsPerPage(slotSize)

	pageID := entry.DataRootPage
	for {
		page, err := cache.Get(pageID)
		if err != nil {
			return Location{}, err
		}

		for slot := uint32(0); slot < slots; slot++ {
			off := slot * slotSize
			if isEmptySlot(page.Data[off : off+slotSize]) {
				copy(page.Data[off:off+slotSize], row)
				cache.MarkDirty(page)
				return Location{PageID: pageID, Offset: off}, nil
			}
		}

		next := readNextPagePointer(page)
		if next == 0 {
			newPage, err := cache.AllocateNew()
			if err != nil {
				return Location{}, err
			}
			writeNextPagePointer(newPage, 0)
			cache.MarkDirty(newPage)

			writeNextPagePointer(page, newPage.ID)
			cache.MarkDirty(page)

			next = newPage.ID
		}
		pageID = next
	}
}

// RowVisitor is called once per non-deleted row during ScanTable. Returning
// false stops the scan early.
type RowVisitor func(loc Location, header RowHeader, values []any) (keepGoing bool, err error)

// ScanTable walks entry's data page chain in order, decoding every
// non-deleted row and handing it to visit.
func ScanTable(cache *storage.Cache, entry *Entry, visit RowVisitor) error {
	slotSize := entry.Schema.RowSize
	slots := slotsPerPage(slotSize)

	pageID := entry.DataRootPage
	for {
		page, err := cache.Get(pageID)
		if err != nil {
			return err
		}

		for slot := uint32(0); slot < slots; slot++ {
			off := slot * slotSize
			raw := page.Data[off : off+slotSize]
			if isEmptySlot(raw) {
				continue
			}
			header, values, err := DecodeRow(&entry.Schema, raw)
			if err != nil {
				return err
			}
			if header.Deleted {
				continue
			}
			keepGoing, err := visit(Location{PageID: pageID, Offset: off}, header, values)
			if err != nil {
				return err
			}
			if !keepGoing {
				return nil
			}
		}

		next := readNextPagePointer(page)
		if next == 0 {
			return nil
		}
		pageID = next
	}
}

// ScanPage decodes every non-deleted row on a single page, without
// following its forward link. It is used for the B-tree-accelerated point
// lookup path: the index narrows a key to the page it was inserted into,
// and this confirms the exact row within that page.
func ScanPage(cache *storage.Cache, entry *Entry, pageID uint32, visit RowVisitor) error {
	slotSize := entry.Schema.RowSize
	slots := slotsPerPage(slotSize)

	page, err := cache.Get(pageID)
	if err != nil {
		return err
	}

	for slot := uint32(0); slot < slots; slot++ {
		off := slot * slotSize
		raw := page.Data[off : off+slotSize]
		if isEmptySlot(raw) {
			continue
		}
		header, values, err := DecodeRow(&entry.Schema, raw)
		if err != nil {
			return err
		}
		if header.Deleted {
			continue
		}
		keepGoing, err := visit(Location{PageID: pageID, Offset: off}, header, values)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}

// MarkDeleted sets a row's Deleted flag in place, without compacting the
// page or shrinking the chain.
func MarkDeleted(cache *storage.Cache, s *TableSchema, loc Location) error {
	page, err := cache.Get(loc.PageID)
	if err != nil {
		return err
	}
	page.Data[loc.Offset] = 1
	cache.MarkDirty(page)
	return nil
}

// UpdateRow re-encodes a row's column values in place. Updating the
// primary-key column is rejected by the caller (internal/engine) before
// this is invoked, since the B-tree has no matching update-in-place
// operation.
func UpdateRow(cache *storage.Cache, s *TableSchema, loc Location, header RowHeader, values []any) error {
	encoded, err := EncodeRow(s, header, values)
	if err != nil {
		return err
	}
	page, err := cache.Get(loc.PageID)
	if err != nil {
		return err
	}
	copy(page.Data[loc.Offset:loc.Offset+s.RowSize], encoded)
	cache.MarkDirty(page)
	return nil
}
