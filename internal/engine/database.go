package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arjunmenon/pagebase/internal/schema"
	"github.com/arjunmenon/pagebase/internal/sql"
	"github.com/arjunmenon/pagebase/internal/storage"
)

// Database is the single entry point front ends (REPL, HTTP server) talk to.
// It owns the page cache and table catalog for one open database file.
type Database struct {
	cache   *storage.Cache
	catalog *schema.Catalog
	log     *logrus.Logger
}

// Open opens (or creates) a database file at path, wiring a buffer cache of
// the given capacity in front of it and loading its catalog.
func Open(path string, cacheCapacity int, log *logrus.Logger) (*Database, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	pager, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	cache := storage.NewCache(pager, cacheCapacity, log)

	catalog, err := schema.Load(cache)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("engine: load catalog: %w", err)
	}

	return &Database{cache: cache, catalog: catalog, log: log}, nil
}

// Close flushes every dirty page and releases the underlying file.
func (db *Database) Close() error {
	return db.cache.Close()
}

// Stats reports buffer cache counters for the open database.
func (db *Database) Stats() storage.Stats {
	return db.cache.Stats()
}

// Execute parses sqlText and dispatches it to the matching handler. Each
// statement applies its page changes to the buffer cache as it goes; they
// reach the file on eviction or Close, and there is no transaction boundary
// spanning multiple statements.
func (db *Database) Execute(sqlText string) (*Result, error) {
	stmt, err := sql.Parse(sqlText)
	if err != nil {
		return nil, fmt.Errorf("engine: parse: %w", err)
	}

	switch s := stmt.(type) {
	case *sql.CreateTableStatement:
		return db.executeCreateTable(s)
	case *sql.InsertStatement:
		return db.executeInsert(s)
	case *sql.SelectStatement:
		return db.executeSelect(s)
	case *sql.UpdateStatement:
		return db.executeUpdate(s)
	case *sql.DeleteStatement:
		return db.executeDelete(s)
	case *sql.ShowTablesStatement:
		return db.executeShowTables()
	default:
		return nil, fmt.Errorf("engine: unsupported statement type %T", stmt)
	}
}
