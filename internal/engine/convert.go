package engine

import (
	"fmt"

	"github.com/arjunmenon/pagebase/internal/btree"
	"github.com/arjunmenon/pagebase/internal/schema"
	"github.com/arjunmenon/pagebase/internal/sql"
)

func dataTypeFromKeyword(keyword string) (schema.DataType, error) {
	switch keyword {
	case "INT":
		return schema.TypeInt, nil
	case "FLOAT":
		return schema.TypeFloat, nil
	case "STRING":
		return schema.TypeString, nil
	case "BOOL":
		return schema.TypeBool, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedColumnType, keyword)
	}
}

func toColumnDefs(specs []sql.ColumnSpec) ([]schema.ColumnDef, error) {
	columns := make([]schema.ColumnDef, len(specs))
	for i, spec := range specs {
		dt, err := dataTypeFromKeyword(spec.Type)
		if err != nil {
			return nil, err
		}
		length := spec.Length
		if dt == schema.TypeString && length == 0 {
			length = 255
		}
		columns[i] = schema.ColumnDef{
			Name:    spec.Name,
			Type:    dt,
			Length:  length,
			Primary: spec.Primary,
		}
	}
	return columns, nil
}

// hashKindFor maps a column's data type onto the btree key kind used to
// fingerprint its values. Boolean columns cannot be indexed -- there is no
// useful ordering over two values, and the original key-hashing scheme this
// is grounded on leaves DT_BOOL unhandled for the same reason.
func hashKindFor(dt schema.DataType) (btree.KeyKind, error) {
	switch dt {
	case schema.TypeInt:
		return btree.KeyInt, nil
	case schema.TypeFloat:
		return btree.KeyFloat, nil
	case schema.TypeString:
		return btree.KeyString, nil
	default:
		return 0, fmt.Errorf("%w: cannot index BOOL column", ErrUnsupportedColumnType)
	}
}

// adaptValue coerces a literal produced by the SQL parser into the Go type
// schema.EncodeRow expects for col. The parser only ever produces int32,
// float32, string, and bool never appears literally; BOOL columns accept an
// integer 0/1 as shorthand.
func adaptValue(col schema.ColumnDef, v any) (any, error) {
	switch col.Type {
	case schema.TypeInt:
		if n, ok := v.(int32); ok {
			return n, nil
		}
	case schema.TypeFloat:
		switch n := v.(type) {
		case float32:
			return n, nil
		case int32:
			return float32(n), nil
		}
	case schema.TypeBool:
		switch n := v.(type) {
		case bool:
			return n, nil
		case int32:
			return n != 0, nil
		}
	case schema.TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: column %s (%T)", schema.ErrTypeMismatch, col.Name, v)
}
