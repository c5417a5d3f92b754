package schema

import "errors"

var (
	ErrTableExists          = errors.New("schema: table already exists")
	ErrTableNotFound        = errors.New("schema: table not found")
	ErrColumnNotFound       = errors.New("schema: column not found")
	ErrTooManyColumns       = errors.New("schema: too many columns")
	ErrMultiplePrimaryKeys  = errors.New("schema: at most one primary key column is allowed")
	ErrCatalogFull          = errors.New("schema: catalog page is full")
	ErrTypeMismatch         = errors.New("schema: value type does not match column type")
	ErrStringTooLong        = errors.New("schema: string value exceeds column length")
	ErrDuplicateKey         = errors.New("schema: duplicate primary key value")
	ErrImmutablePrimaryKey  = errors.New("schema: primary key columns cannot be updated")
	ErrRowNotFound          = errors.New("schema: row not found")
)
