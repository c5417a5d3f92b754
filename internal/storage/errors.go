package storage

import "errors"

var (
	// ErrCorruptHeader is returned when an existing database file's magic
	// number does not match what Open expects.
	ErrCorruptHeader = errors.New("storage: corrupt database header")
	// ErrShortRead is returned when a page read returns fewer than PageSize
	// bytes, indicating a truncated file.
	ErrShortRead = errors.New("storage: short read")
	// ErrWriteBackFailed is returned when the cache fails to persist a dirty
	// victim page during eviction.
	ErrWriteBackFailed = errors.New("storage: write-back failed during eviction")
	// ErrInvalidPageID is returned when a page id is out of the range
	// [0, PageCount) known to the pager.
	ErrInvalidPageID = errors.New("storage: invalid page id")
)
