package engine

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path, 50, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateTableAndShowTables(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)

	result, err := db.Execute("SHOW TABLES")
	require.NoError(t, err)
	require.Equal(t, []string{"table_name"}, result.Columns)
	require.Equal(t, [][]any{{"users"}}, result.Rows)
}

func TestInsertAndSelectAll(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING, active BOOL)")
	require.NoError(t, err)

	_, err = db.Execute("INSERT INTO users VALUES (1, 'alice', 1)")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO users VALUES (2, 'bob', 0)")
	require.NoError(t, err)

	result, err := db.Execute("SELECT * FROM users")
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
}

func TestInsertRejectsDuplicatePrimaryKey(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)

	_, err = db.Execute("INSERT INTO users VALUES (1, 'alice')")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO users VALUES (1, 'eve')")
	require.Error(t, err)
}

func TestSelectUsesPointLookupOnPrimaryKey(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)

	for i := 1; i <= 20; i++ {
		_, err := db.Execute("INSERT INTO users VALUES (" +
			strconv.Itoa(i) + ", 'user" + strconv.Itoa(i) + "')")
		require.NoError(t, err)
	}

	result, err := db.Execute("SELECT * FROM users WHERE id = 7")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, int32(7), result.Rows[0][0])
	require.Equal(t, "user7", result.Rows[0][1])
}

func TestSelectPointLookupMissReturnsNoRows(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO users VALUES (1, 'alice')")
	require.NoError(t, err)

	result, err := db.Execute("SELECT * FROM users WHERE id = 99")
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}

func TestUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO users VALUES (1, 'alice')")
	require.NoError(t, err)

	result, err := db.Execute("UPDATE users SET name = 'alicia' WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, 1, result.RowsAffected)

	sel, err := db.Execute("SELECT * FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, "alicia", sel.Rows[0][1])

	result, err = db.Execute("DELETE FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, 1, result.RowsAffected)

	sel, err = db.Execute("SELECT * FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Empty(t, sel.Rows)
}

func TestUpdateRejectsPrimaryKeyColumn(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO users VALUES (1, 'alice')")
	require.NoError(t, err)

	_, err = db.Execute("UPDATE users SET id = 2 WHERE id = 1")
	require.Error(t, err)
}

func TestJoin(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)
	_, err = db.Execute("CREATE TABLE orders (id INT PRIMARY KEY, user_id INT)")
	require.NoError(t, err)

	_, err = db.Execute("INSERT INTO users VALUES (1, 'alice')")
	require.NoError(t, err)
	_, err = db.Execute("INSERT INTO orders VALUES (100, 1)")
	require.NoError(t, err)

	result, err := db.Execute("SELECT * FROM users JOIN orders ON users.id = orders.user_id")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
}

func TestReopenReproducesCatalogRowsAndIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := Open(path, 50, nil)
	require.NoError(t, err)
	_, err = db.Execute("CREATE TABLE users (id INT PRIMARY KEY, name STRING)")
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		_, err := db.Execute("INSERT INTO users VALUES (" +
			strconv.Itoa(i) + ", 'user" + strconv.Itoa(i) + "')")
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	reopened, err := Open(path, 50, nil)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	tables, err := reopened.Execute("SHOW TABLES")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"users"}}, tables.Rows)

	all, err := reopened.Execute("SELECT * FROM users")
	require.NoError(t, err)
	require.Len(t, all.Rows, 5)

	point, err := reopened.Execute("SELECT * FROM users WHERE id = 3")
	require.NoError(t, err)
	require.Len(t, point.Rows, 1)
	require.Equal(t, "user3", point.Rows[0][1])

	_, err = reopened.Execute("INSERT INTO users VALUES (3, 'dup')")
	require.Error(t, err)
}
