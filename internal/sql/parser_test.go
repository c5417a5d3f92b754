package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE users (id INT PRIMARY KEY, name STRING(32), active BOOL)")
	require.NoError(t, err)

	create, ok := stmt.(*CreateTableStatement)
	require.True(t, ok)
	require.Equal(t, "users", create.Table)
	require.Len(t, create.Columns, 3)
	require.True(t, create.Columns[0].Primary)
	require.EqualValues(t, 32, create.Columns[1].Length)
}

func TestParseInsert(t *testing.T) {
	stmt, err := Parse("INSERT INTO users VALUES (1, 'alice', 3.5)")
	require.NoError(t, err)

	insert, ok := stmt.(*InsertStatement)
	require.True(t, ok)
	require.Equal(t, "users", insert.Table)
	require.Equal(t, int32(1), insert.Values[0])
	require.Equal(t, "alice", insert.Values[1])
	require.Equal(t, float32(3.5), insert.Values[2])
}

func TestParseSelectWithWhere(t *testing.T) {
	stmt, err := Parse("SELECT * FROM users WHERE id = 1")
	require.NoError(t, err)

	sel, ok := stmt.(*SelectStatement)
	require.True(t, ok)
	require.Equal(t, []string{"*"}, sel.Columns)
	require.NotNil(t, sel.Where)
	require.Equal(t, "id", sel.Where.Column)
	require.Equal(t, "=", sel.Where.Op)
	require.Equal(t, int32(1), sel.Where.Value)
}

func TestParseSelectWithJoin(t *testing.T) {
	stmt, err := Parse("SELECT * FROM orders JOIN users ON orders.user_id = users.id")
	require.NoError(t, err)

	sel, ok := stmt.(*SelectStatement)
	require.True(t, ok)
	require.NotNil(t, sel.Join)
	require.Equal(t, "users", sel.Join.Table)
	require.Equal(t, "orders.user_id", sel.Join.LeftColumn)
	require.Equal(t, "users.id", sel.Join.RightColumn)
}

func TestParseSelectComparisonOperators(t *testing.T) {
	cases := []string{"=", "!=", ">", "<", ">=", "<="}
	for _, op := range cases {
		stmt, err := Parse("SELECT * FROM t WHERE age " + op + " 5")
		require.NoError(t, err)
		sel := stmt.(*SelectStatement)
		require.Equal(t, op, sel.Where.Op)
	}
}

func TestParseUpdate(t *testing.T) {
	stmt, err := Parse("UPDATE users SET name = 'bob', active = 1 WHERE id = 2")
	require.NoError(t, err)

	upd, ok := stmt.(*UpdateStatement)
	require.True(t, ok)
	require.Equal(t, "users", upd.Table)
	require.Len(t, upd.Assignments, 2)
	require.NotNil(t, upd.Where)
}

func TestParseDelete(t *testing.T) {
	stmt, err := Parse("DELETE FROM users WHERE id = 3")
	require.NoError(t, err)

	del, ok := stmt.(*DeleteStatement)
	require.True(t, ok)
	require.Equal(t, "users", del.Table)
	require.Equal(t, "id", del.Where.Column)
}

func TestParseShowTables(t *testing.T) {
	stmt, err := Parse("SHOW TABLES")
	require.NoError(t, err)
	_, ok := stmt.(*ShowTablesStatement)
	require.True(t, ok)
}

func TestTokenizerRejectsUnterminatedString(t *testing.T) {
	_, err := NewTokenizer("SELECT * FROM t WHERE name = 'oops").Tokenize()
	require.Error(t, err)
}

func TestParseRejectsUnknownStatement(t *testing.T) {
	_, err := Parse("DROP TABLE users")
	require.Error(t, err)
}
