package storage

import (
	"fmt"
	"io"
	"os"
)

// Pager owns the file descriptor and the database header. It performs pure
// I/O: it knows how to compute byte offsets and move whole pages between the
// file and a caller-supplied buffer, but it never caches anything itself.
type Pager struct {
	file   *os.File
	header dbHeader
}

// Open opens an existing database file or creates a new one at path. A new
// file is initialized with a fresh header and a single zero-filled page
// (page 0) that is reserved and never handed out by Allocate, so page id 0
// can stand for "no page" (no schema page, empty tree, end of chain).
func Open(path string) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}

	p := &Pager{file: file}

	if info.Size() == 0 {
		p.header = dbHeader{Magic: dbMagic, PageCount: 0}
		if err := p.FlushHeader(); err != nil {
			file.Close()
			return nil, err
		}
		if _, err := p.Allocate(); err != nil {
			file.Close()
			return nil, err
		}
		return p, nil
	}

	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("storage: read header: %w", err)
	}
	p.header = decodeHeader(buf)
	if p.header.Magic != dbMagic {
		file.Close()
		return nil, ErrCorruptHeader
	}

	return p, nil
}

// PageCount reports the number of pages currently allocated in the data
// region.
func (p *Pager) PageCount() uint32 { return p.header.PageCount }

// SchemaPage reports the page id holding the table catalog, or 0 if none has
// been designated yet.
func (p *Pager) SchemaPage() uint32 { return p.header.SchemaPage }

// SetSchemaPage designates the catalog page and persists the header.
func (p *Pager) SetSchemaPage(id uint32) error {
	p.header.SchemaPage = id
	return p.FlushHeader()
}

func (p *Pager) offset(id uint32) int64 {
	return int64(headerSize) + int64(id)*int64(PageSize)
}

// Allocate grows the data region by one page and returns its id. The new
// page is zero-filled on disk.
func (p *Pager) Allocate() (uint32, error) {
	id := p.header.PageCount

	zero := make([]byte, PageSize)
	if _, err := p.file.WriteAt(zero, p.offset(id)); err != nil {
		return 0, fmt.Errorf("storage: allocate page %d: %w", id, err)
	}

	p.header.PageCount++
	if err := p.FlushHeader(); err != nil {
		return 0, err
	}
	return id, nil
}

// ReadPage reads exactly PageSize bytes for id into buf.
func (p *Pager) ReadPage(id uint32, buf *[PageSize]byte) error {
	if id >= p.header.PageCount {
		return fmt.Errorf("%w: %d", ErrInvalidPageID, id)
	}
	n, err := p.file.ReadAt(buf[:], p.offset(id))
	if err != nil && err != io.EOF {
		return fmt.Errorf("storage: read page %d: %w", id, err)
	}
	if n != PageSize {
		return fmt.Errorf("%w: page %d got %d bytes", ErrShortRead, id, n)
	}
	return nil
}

// WritePage writes buf to id's offset.
func (p *Pager) WritePage(id uint32, buf *[PageSize]byte) error {
	if id >= p.header.PageCount {
		return fmt.Errorf("%w: %d", ErrInvalidPageID, id)
	}
	if _, err := p.file.WriteAt(buf[:], p.offset(id)); err != nil {
		return fmt.Errorf("storage: write page %d: %w", id, err)
	}
	return nil
}

// FlushHeader writes the current header to offset 0.
func (p *Pager) FlushHeader() error {
	buf := p.header.encode()
	if _, err := p.file.WriteAt(buf[:], 0); err != nil {
		return fmt.Errorf("storage: flush header: %w", err)
	}
	return nil
}

// Close flushes the header and releases the file descriptor.
func (p *Pager) Close() error {
	if err := p.FlushHeader(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}
