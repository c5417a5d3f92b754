package schema

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/arjunmenon/pagebase/internal/storage"
)

// Entry is one catalog row: a table's schema plus the page ids anchoring its
// data and (if it has a primary key) its B-tree index.
type Entry struct {
	Schema        TableSchema
	DataRootPage  uint32
	IndexRootPage uint32 // 0 means the table has no primary key, or its tree is still empty
	NextRowID     uint32 // next row id to assign; starts at 1 so row id 0 always means "unused slot"
}

// Catalog is the set of table definitions for one database file, persisted
// on a single schema page.
type Catalog struct {
	cache      *storage.Cache
	schemaPage uint32
	entries    map[string]*Entry
}

const (
	columnRecordSize = MaxColumnName + 1 /*type*/ + 4 /*length*/ + 1 /*flags*/
	tableRecordSize  = MaxTableName + 4 /*columnCount*/ + columnRecordSize*MaxColumns +
		4 /*primaryKeyIndex*/ + 4 /*rowSize*/ + 4 /*dataRootPage*/ + 4 /*indexRootPage*/ + 4 /*nextRowID*/
)

const (
	flagPrimary  = 1 << 0
	flagUnique   = 1 << 1
	flagNullable = 1 << 2
)

// Load reads the catalog from the pager's designated schema page, creating
// and persisting a fresh empty schema page if none has been designated yet.
func Load(cache *storage.Cache) (*Catalog, error) {
	c := &Catalog{cache: cache, entries: make(map[string]*Entry)}

	schemaPage := cache.Pager().SchemaPage()
	if schemaPage == 0 {
		page, err := cache.AllocateNew()
		if err != nil {
			return nil, fmt.Errorf("schema: allocate schema page: %w", err)
		}
		cache.MarkDirty(page)
		if err := cache.Pager().SetSchemaPage(page.ID); err != nil {
			return nil, err
		}
		c.schemaPage = page.ID
		return c, nil
	}

	c.schemaPage = schemaPage
	page, err := cache.Get(schemaPage)
	if err != nil {
		return nil, fmt.Errorf("schema: read schema page: %w", err)
	}

	buf := page.Data[:]
	count := binary.LittleEndian.Uint32(buf[0:4])
	off := 4
	for i := uint32(0); i < count; i++ {
		entry, err := decodeEntry(buf[off : off+tableRecordSize])
		if err != nil {
			return nil, err
		}
		c.entries[entry.Schema.Name] = entry
		off += tableRecordSize
	}
	return c, nil
}

// CreateTable validates and registers a new table, allocating its first
// data page and persisting the updated catalog.
func (c *Catalog) CreateTable(name string, columns []ColumnDef) (*Entry, error) {
	if _, exists := c.entries[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	if len(columns) == 0 || len(columns) > MaxColumns {
		return nil, ErrTooManyColumns
	}

	primaryKeyIndex := -1
	for i, col := range columns {
		if col.Primary {
			if primaryKeyIndex != -1 {
				return nil, ErrMultiplePrimaryKeys
			}
			primaryKeyIndex = i
		}
	}

	tableSchema := TableSchema{
		Name:            name,
		Columns:         columns,
		PrimaryKeyIndex: primaryKeyIndex,
		RowSize:         computeRowSize(columns),
	}

	dataPage, err := c.cache.AllocateNew()
	if err != nil {
		return nil, fmt.Errorf("schema: allocate data page for %s: %w", name, err)
	}
	c.cache.MarkDirty(dataPage)
	writeNextPagePointer(dataPage, 0)

	entry := &Entry{Schema: tableSchema, DataRootPage: dataPage.ID, NextRowID: 1}
	c.entries[name] = entry

	if err := c.persist(); err != nil {
		delete(c.entries, name)
		return nil, err
	}
	return entry, nil
}

// Lookup returns the entry for name, if any.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Tables returns every table name in sorted order, for SHOW TABLES.
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetIndexRootPage updates an entry's B-tree root and persists the catalog.
// Called by the executor after an insert grows or creates the index.
func (c *Catalog) SetIndexRootPage(tableName string, rootPage uint32) error {
	entry, ok := c.entries[tableName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	entry.IndexRootPage = rootPage
	return c.persist()
}

// AllocateRowID returns the next row id for tableName and advances the
// counter, persisting the catalog.
func (c *Catalog) AllocateRowID(tableName string) (uint32, error) {
	entry, ok := c.entries[tableName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	id := entry.NextRowID
	entry.NextRowID++
	if err := c.persist(); err != nil {
		entry.NextRowID--
		return 0, err
	}
	return id, nil
}

func (c *Catalog) persist() error {
	if len(c.entries) > (storage.PageSize-4)/tableRecordSize {
		return ErrCatalogFull
	}

	page, err := c.cache.Get(c.schemaPage)
	if err != nil {
		return fmt.Errorf("schema: read schema page: %w", err)
	}

	buf := page.Data[:]
	for i := range buf {
		buf[i] = 0
	}

	names := c.Tables()
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(names)))
	off := 4
	for _, name := range names {
		encodeEntry(c.entries[name], buf[off:off+tableRecordSize])
		off += tableRecordSize
	}

	c.cache.MarkDirty(page)
	return nil
}

func encodeEntry(e *Entry, buf []byte) {
	copy(buf[0:MaxTableName], e.Schema.Name)
	binary.LittleEndian.PutUint32(buf[MaxTableName:MaxTableName+4], uint32(len(e.Schema.Columns)))

	off := MaxTableName + 4
	for _, col := range e.Schema.Columns {
		rec := buf[off : off+columnRecordSize]
		copy(rec[0:MaxColumnName], col.Name)
		rec[MaxColumnName] = byte(col.Type)
		binary.LittleEndian.PutUint32(rec[MaxColumnName+1:MaxColumnName+5], col.Length)
		var flags byte
		if col.Primary {
			flags |= flagPrimary
		}
		if col.Unique {
			flags |= flagUnique
		}
		if col.Nullable {
			flags |= flagNullable
		}
		rec[MaxColumnName+5] = flags
		off += columnRecordSize
	}
	off = MaxTableName + 4 + columnRecordSize*MaxColumns

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(int32(e.Schema.PrimaryKeyIndex)))
	binary.LittleEndian.PutUint32(buf[off+4:off+8], e.Schema.RowSize)
	binary.LittleEndian.PutUint32(buf[off+8:off+12], e.DataRootPage)
	binary.LittleEndian.PutUint32(buf[off+12:off+16], e.IndexRootPage)
	binary.LittleEndian.PutUint32(buf[off+16:off+20], e.NextRowID)
}

func decodeEntry(buf []byte) (*Entry, error) {
	name := cstring(buf[0:MaxTableName])
	columnCount := binary.LittleEndian.Uint32(buf[MaxTableName : MaxTableName+4])
	if columnCount > MaxColumns {
		return nil, fmt.Errorf("schema: corrupt catalog entry for %q", name)
	}

	columns := make([]ColumnDef, columnCount)
	off := MaxTableName + 4
	for i := uint32(0); i < columnCount; i++ {
		rec := buf[off : off+columnRecordSize]
		flags := rec[MaxColumnName+5]
		columns[i] = ColumnDef{
			Name:     cstring(rec[0:MaxColumnName]),
			Type:     DataType(rec[MaxColumnName]),
			Length:   binary.LittleEndian.Uint32(rec[MaxColumnName+1 : MaxColumnName+5]),
			Primary:  flags&flagPrimary != 0,
			Unique:   flags&flagUnique != 0,
			Nullable: flags&flagNullable != 0,
		}
		off += columnRecordSize
	}
	off = MaxTableName + 4 + columnRecordSize*MaxColumns

	return &Entry{
		Schema: TableSchema{
			Name:            name,
			Columns:         columns,
			PrimaryKeyIndex: int(int32(binary.LittleEndian.Uint32(buf[off : off+4]))),
			RowSize:         binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		},
		DataRootPage:  binary.LittleEndian.Uint32(buf[off+8 : off+12]),
		IndexRootPage: binary.LittleEndian.Uint32(buf[off+12 : off+16]),
		NextRowID:     binary.LittleEndian.Uint32(buf[off+16 : off+20]),
	}, nil
}

func cstring(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
