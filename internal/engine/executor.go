package engine

import (
	"fmt"
	"strings"

	"github.com/arjunmenon/pagebase/internal/btree"
	"github.com/arjunmenon/pagebase/internal/schema"
	"github.com/arjunmenon/pagebase/internal/sql"
)

func (db *Database) executeCreateTable(stmt *sql.CreateTableStatement) (*Result, error) {
	columns, err := toColumnDefs(stmt.Columns)
	if err != nil {
		return nil, err
	}
	if _, err := db.catalog.CreateTable(stmt.Table, columns); err != nil {
		return nil, err
	}
	db.log.WithField("table", stmt.Table).Info("created table")
	return &Result{Message: fmt.Sprintf("table %s created", stmt.Table)}, nil
}

func (db *Database) executeInsert(stmt *sql.InsertStatement) (*Result, error) {
	entry, ok := db.catalog.Lookup(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrTableNotFound, stmt.Table)
	}
	if len(stmt.Values) != len(entry.Schema.Columns) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", schema.ErrTypeMismatch,
			len(entry.Schema.Columns), len(stmt.Values))
	}

	values := make([]any, len(stmt.Values))
	for i, col := range entry.Schema.Columns {
		v, err := adaptValue(col, stmt.Values[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	var hash uint32
	var idx *btree.Index
	hasPK := entry.Schema.PrimaryKeyIndex >= 0
	if hasPK {
		pkCol := entry.Schema.Columns[entry.Schema.PrimaryKeyIndex]
		kind, err := hashKindFor(pkCol.Type)
		if err != nil {
			return nil, err
		}
		hash = btree.HashKey(kind, values[entry.Schema.PrimaryKeyIndex])
		idx = btree.New(db.cache, entry.IndexRootPage)
		if dup, err := idx.Has(hash); err != nil {
			return nil, err
		} else if dup {
			return nil, fmt.Errorf("%w: table %s", schema.ErrDuplicateKey, stmt.Table)
		}
	}

	loc, err := schema.AppendRow(db.cache, db.catalog, stmt.Table, values)
	if err != nil {
		return nil, err
	}

	if hasPK {
		if err := idx.Insert(hash, loc.PageID); err != nil {
			return nil, err
		}
		if err := db.catalog.SetIndexRootPage(stmt.Table, idx.RootPage); err != nil {
			return nil, err
		}
	}

	return &Result{Message: "1 row inserted", RowsAffected: 1}, nil
}

// pointLookup performs a B-tree-accelerated lookup when where constrains
// the table's primary key with equality; it returns ok=false when the
// statement's predicate does not qualify for this path.
func (db *Database) pointLookup(entry *schema.Entry, where *sql.WhereClause) (*schema.Location, schema.RowHeader, []any, bool, error) {
	if where == nil || where.Op != "=" || entry.Schema.PrimaryKeyIndex < 0 {
		return nil, schema.RowHeader{}, nil, false, nil
	}
	pkCol := entry.Schema.Columns[entry.Schema.PrimaryKeyIndex]
	if where.Column != pkCol.Name {
		return nil, schema.RowHeader{}, nil, false, nil
	}

	value, err := adaptValue(pkCol, where.Value)
	if err != nil {
		return nil, schema.RowHeader{}, nil, false, err
	}
	kind, err := hashKindFor(pkCol.Type)
	if err != nil {
		return nil, schema.RowHeader{}, nil, false, err
	}
	hash := btree.HashKey(kind, value)

	idx := btree.New(db.cache, entry.IndexRootPage)
	pageID, err := idx.Search(hash)
	if err == btree.ErrKeyNotFound {
		return nil, schema.RowHeader{}, nil, true, nil
	}
	if err != nil {
		return nil, schema.RowHeader{}, nil, false, err
	}

	var foundLoc *schema.Location
	var foundHeader schema.RowHeader
	var foundValues []any
	err = schema.ScanPage(db.cache, entry, pageID, func(loc schema.Location, header schema.RowHeader, values []any) (bool, error) {
		if values[entry.Schema.PrimaryKeyIndex] == value {
			l := loc
			foundLoc = &l
			foundHeader = header
			foundValues = values
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, schema.RowHeader{}, nil, false, err
	}
	return foundLoc, foundHeader, foundValues, true, nil
}

func matchesWhere(entry *schema.TableSchema, where *sql.WhereClause, values []any) (bool, error) {
	if where == nil {
		return true, nil
	}
	ci := entry.ColumnIndex(where.Column)
	if ci < 0 {
		return false, fmt.Errorf("%w: %s", ErrColumnNotFound, where.Column)
	}
	rowVal, err := adaptValue(entry.Columns[ci], where.Value)
	if err != nil {
		return false, err
	}
	return compare(values[ci], rowVal, where.Op)
}

func compare(a, b any, op string) (bool, error) {
	if op == "LIKE" {
		as, aok := a.(string)
		bs, bok := b.(string)
		if !aok || !bok {
			return false, fmt.Errorf("%w: LIKE requires string operands", schema.ErrTypeMismatch)
		}
		return likeMatch(as, bs), nil
	}

	switch av := a.(type) {
	case int32:
		bv, ok := b.(int32)
		if !ok {
			return false, nil
		}
		return compareOrdered(int64(av), int64(bv), op), nil
	case float32:
		bv, ok := b.(float32)
		if !ok {
			return false, nil
		}
		return compareOrdered(float64(av), float64(bv), op), nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return false, nil
		}
		return compareOrdered(av, bv, op), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return false, nil
		}
		switch op {
		case "=":
			return av == bv, nil
		case "!=":
			return av != bv, nil
		default:
			return false, fmt.Errorf("%w: operator %s not valid for BOOL", schema.ErrTypeMismatch, op)
		}
	default:
		return false, nil
	}
}

type ordered interface{ ~int64 | ~float64 | ~string }

func compareOrdered[T ordered](a, b T, op string) bool {
	switch op {
	case "=":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	default:
		return false
	}
}

// likeMatch supports exactly the subset of SQL LIKE this engine needs: '%'
// as a prefix and/or suffix wildcard. No '_' single-character wildcard.
func likeMatch(value, pattern string) bool {
	switch {
	case strings.HasPrefix(pattern, "%") && strings.HasSuffix(pattern, "%") && len(pattern) >= 2:
		return strings.Contains(value, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "%"):
		return strings.HasSuffix(value, pattern[1:])
	case strings.HasSuffix(pattern, "%"):
		return strings.HasPrefix(value, pattern[:len(pattern)-1])
	default:
		return value == pattern
	}
}

func projectColumns(entry *schema.TableSchema, requested []string, values []any) ([]string, []any, error) {
	if len(requested) == 1 && requested[0] == "*" {
		names := make([]string, len(entry.Columns))
		for i, c := range entry.Columns {
			names[i] = c.Name
		}
		return names, values, nil
	}

	names := make([]string, len(requested))
	out := make([]any, len(requested))
	for i, name := range requested {
		bare := name
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			bare = name[idx+1:]
		}
		ci := entry.ColumnIndex(bare)
		if ci < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
		}
		names[i] = bare
		out[i] = values[ci]
	}
	return names, out, nil
}

func (db *Database) executeSelect(stmt *sql.SelectStatement) (*Result, error) {
	entry, ok := db.catalog.Lookup(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrTableNotFound, stmt.Table)
	}

	if stmt.Join != nil {
		return db.executeJoin(stmt, entry)
	}

	if loc, _, values, qualifies, err := db.pointLookup(entry, stmt.Where); err != nil {
		return nil, err
	} else if qualifies {
		if loc == nil {
			return &Result{Columns: projectedHeader(entry, stmt.Columns)}, nil
		}
		cols, row, err := projectColumns(&entry.Schema, stmt.Columns, values)
		if err != nil {
			return nil, err
		}
		return &Result{Columns: cols, Rows: [][]any{row}}, nil
	}

	var result Result
	err := schema.ScanTable(db.cache, entry, func(loc schema.Location, header schema.RowHeader, values []any) (bool, error) {
		ok, err := matchesWhere(&entry.Schema, stmt.Where, values)
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil
		}
		cols, row, err := projectColumns(&entry.Schema, stmt.Columns, values)
		if err != nil {
			return false, err
		}
		result.Columns = cols
		result.Rows = append(result.Rows, row)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if result.Columns == nil {
		result.Columns = projectedHeader(entry, stmt.Columns)
	}
	return &result, nil
}

func projectedHeader(entry *schema.Entry, requested []string) []string {
	if len(requested) == 1 && requested[0] == "*" {
		names := make([]string, len(entry.Schema.Columns))
		for i, c := range entry.Schema.Columns {
			names[i] = c.Name
		}
		return names
	}
	return requested
}

func (db *Database) executeUpdate(stmt *sql.UpdateStatement) (*Result, error) {
	entry, ok := db.catalog.Lookup(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrTableNotFound, stmt.Table)
	}

	for _, a := range stmt.Assignments {
		if entry.Schema.PrimaryKeyIndex >= 0 && entry.Schema.Columns[entry.Schema.PrimaryKeyIndex].Name == a.Column {
			return nil, schema.ErrImmutablePrimaryKey
		}
	}

	affected := 0
	err := schema.ScanTable(db.cache, entry, func(loc schema.Location, header schema.RowHeader, values []any) (bool, error) {
		matched, err := matchesWhere(&entry.Schema, stmt.Where, values)
		if err != nil {
			return false, err
		}
		if !matched {
			return true, nil
		}

		updated := append([]any(nil), values...)
		for _, a := range stmt.Assignments {
			ci := entry.Schema.ColumnIndex(a.Column)
			if ci < 0 {
				return false, fmt.Errorf("%w: %s", ErrColumnNotFound, a.Column)
			}
			v, err := adaptValue(entry.Schema.Columns[ci], a.Value)
			if err != nil {
				return false, err
			}
			updated[ci] = v
		}

		if err := schema.UpdateRow(db.cache, &entry.Schema, loc, header, updated); err != nil {
			return false, err
		}
		affected++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("%d row(s) updated", affected), RowsAffected: affected}, nil
}

func (db *Database) executeDelete(stmt *sql.DeleteStatement) (*Result, error) {
	entry, ok := db.catalog.Lookup(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrTableNotFound, stmt.Table)
	}

	affected := 0
	err := schema.ScanTable(db.cache, entry, func(loc schema.Location, header schema.RowHeader, values []any) (bool, error) {
		matched, err := matchesWhere(&entry.Schema, stmt.Where, values)
		if err != nil {
			return false, err
		}
		if !matched {
			return true, nil
		}
		if err := schema.MarkDeleted(db.cache, &entry.Schema, loc); err != nil {
			return false, err
		}
		affected++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("%d row(s) deleted", affected), RowsAffected: affected}, nil
}

func (db *Database) executeShowTables() (*Result, error) {
	names := db.catalog.Tables()
	rows := make([][]any, len(names))
	for i, n := range names {
		rows[i] = []any{n}
	}
	return &Result{Columns: []string{"table_name"}, Rows: rows}, nil
}
