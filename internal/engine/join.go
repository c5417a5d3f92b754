package engine

import (
	"fmt"
	"strings"

	"github.com/arjunmenon/pagebase/internal/schema"
	"github.com/arjunmenon/pagebase/internal/sql"
)

// joinRow holds one decoded build-side row's values until a probe-side row
// matches it.
type joinRow struct {
	values []any
}

// executeJoin implements a single INNER JOIN ... ON as a classic hash join:
// the right-hand table is scanned once into a hash map keyed by its join
// column, then the left-hand table is scanned and probed against it. This
// keeps the cost at one full scan of each side rather than a nested loop.
func (db *Database) executeJoin(stmt *sql.SelectStatement, left *schema.Entry) (*Result, error) {
	right, ok := db.catalog.Lookup(stmt.Join.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrTableNotFound, stmt.Join.Table)
	}

	// ON operands may be written as table.column and in either order; a
	// qualifier naming the other table swaps them onto the right side.
	leftName, rightName := stmt.Join.LeftColumn, stmt.Join.RightColumn
	if strings.HasPrefix(leftName, right.Schema.Name+".") && strings.HasPrefix(rightName, left.Schema.Name+".") {
		leftName, rightName = rightName, leftName
	}
	leftName = leftName[strings.LastIndex(leftName, ".")+1:]
	rightName = rightName[strings.LastIndex(rightName, ".")+1:]

	rightCol := right.Schema.ColumnIndex(rightName)
	if rightCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, stmt.Join.RightColumn)
	}
	leftCol := left.Schema.ColumnIndex(leftName)
	if leftCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, stmt.Join.LeftColumn)
	}

	buildSide := make(map[any][]joinRow)
	err := schema.ScanTable(db.cache, right, func(loc schema.Location, header schema.RowHeader, values []any) (bool, error) {
		key := values[rightCol]
		buildSide[key] = append(buildSide[key], joinRow{values: values})
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	leftNames, rightNames := left.Schema.Columns, right.Schema.Columns
	combinedColumns := make([]string, 0, len(leftNames)+len(rightNames))
	for _, c := range leftNames {
		combinedColumns = append(combinedColumns, left.Schema.Name+"."+c.Name)
	}
	for _, c := range rightNames {
		combinedColumns = append(combinedColumns, right.Schema.Name+"."+c.Name)
	}

	var result Result
	err = schema.ScanTable(db.cache, left, func(loc schema.Location, header schema.RowHeader, leftValues []any) (bool, error) {
		matches, ok := buildSide[leftValues[leftCol]]
		if !ok {
			return true, nil
		}
		for _, rightRow := range matches {
			combined := make([]any, 0, len(leftValues)+len(rightRow.values))
			combined = append(combined, leftValues...)
			combined = append(combined, rightRow.values...)

			if stmt.Where != nil {
				ok, err := matchesWhere(&left.Schema, stmt.Where, leftValues)
				if err != nil {
					return false, err
				}
				if !ok {
					continue
				}
			}

			result.Rows = append(result.Rows, selectJoinColumns(stmt.Columns, combinedColumns, combined))
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	result.Columns = projectedJoinHeader(stmt.Columns, combinedColumns)
	return &result, nil
}

func projectedJoinHeader(requested, combined []string) []string {
	if len(requested) == 1 && requested[0] == "*" {
		return combined
	}
	return requested
}

func selectJoinColumns(requested, combinedNames []string, combinedValues []any) []any {
	if len(requested) == 1 && requested[0] == "*" {
		return combinedValues
	}

	out := make([]any, len(requested))
	for i, name := range requested {
		for j, cn := range combinedNames {
			if cn == name {
				out[i] = combinedValues[j]
				break
			}
		}
	}
	return out
}
