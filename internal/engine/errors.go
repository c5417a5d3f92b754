package engine

import "errors"

var (
	ErrUnsupportedColumnType = errors.New("engine: unsupported column type")
	ErrColumnNotFound        = errors.New("engine: column not found")
	ErrNoPrimaryKey          = errors.New("engine: table has no primary key")
)
