package schema

import (
	"path/filepath"
	"testing"

	"github.com/arjunmenon/pagebase/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) (*storage.Cache, *Catalog) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	pager, err := storage.Open(path)
	require.NoError(t, err)
	cache := storage.NewCache(pager, 50, nil)
	t.Cleanup(func() { cache.Close() })

	cat, err := Load(cache)
	require.NoError(t, err)
	return cache, cat
}

func userColumns() []ColumnDef {
	return []ColumnDef{
		{Name: "id", Type: TypeInt, Primary: true},
		{Name: "name", Type: TypeString, Length: 32},
		{Name: "active", Type: TypeBool},
	}
}

func TestCreateTableAndLookup(t *testing.T) {
	_, cat := newTestCatalog(t)

	entry, err := cat.CreateTable("users", userColumns())
	require.NoError(t, err)
	require.Equal(t, 0, entry.Schema.PrimaryKeyIndex)
	require.EqualValues(t, 9+4+32+1, entry.Schema.RowSize)

	got, ok := cat.Lookup("users")
	require.True(t, ok)
	require.Equal(t, "users", got.Schema.Name)
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	_, cat := newTestCatalog(t)
	_, err := cat.CreateTable("users", userColumns())
	require.NoError(t, err)
	_, err = cat.CreateTable("users", userColumns())
	require.ErrorIs(t, err, ErrTableExists)
}

func TestCreateTableRejectsMultiplePrimaryKeys(t *testing.T) {
	_, cat := newTestCatalog(t)
	cols := []ColumnDef{
		{Name: "a", Type: TypeInt, Primary: true},
		{Name: "b", Type: TypeInt, Primary: true},
	}
	_, err := cat.CreateTable("t", cols)
	require.ErrorIs(t, err, ErrMultiplePrimaryKeys)
}

func TestCatalogSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reload.db")
	pager, err := storage.Open(path)
	require.NoError(t, err)
	cache := storage.NewCache(pager, 50, nil)

	cat, err := Load(cache)
	require.NoError(t, err)
	_, err = cat.CreateTable("users", userColumns())
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	pager2, err := storage.Open(path)
	require.NoError(t, err)
	cache2 := storage.NewCache(pager2, 50, nil)
	defer cache2.Close()

	cat2, err := Load(cache2)
	require.NoError(t, err)
	entry, ok := cat2.Lookup("users")
	require.True(t, ok)
	require.Len(t, entry.Schema.Columns, 3)
}

func TestAppendAndScanRows(t *testing.T) {
	cache, cat := newTestCatalog(t)
	_, err := cat.CreateTable("users", userColumns())
	require.NoError(t, err)

	_, err = AppendRow(cache, cat, "users", []any{int32(1), "alice", true})
	require.NoError(t, err)
	_, err = AppendRow(cache, cat, "users", []any{int32(2), "bob", false})
	require.NoError(t, err)

	entry, _ := cat.Lookup("users")
	var names []string
	err = ScanTable(cache, entry, func(loc Location, header RowHeader, values []any) (bool, error) {
		names = append(names, values[1].(string))
		return true, nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, names)
}

func TestAppendRowsAcrossPageBoundary(t *testing.T) {
	cache, cat := newTestCatalog(t)
	_, err := cat.CreateTable("users", userColumns())
	require.NoError(t, err)

	entry, _ := cat.Lookup("users")
	slots := int(slotsPerPage(entry.Schema.RowSize))

	for i := 0; i < slots+5; i++ {
		_, err := AppendRow(cache, cat, "users", []any{int32(i), "x", true})
		require.NoError(t, err)
	}

	entry, _ = cat.Lookup("users")
	count := 0
	err = ScanTable(cache, entry, func(loc Location, header RowHeader, values []any) (bool, error) {
		count++
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, slots+5, count)
}

func TestMarkDeletedHidesRowFromScan(t *testing.T) {
	cache, cat := newTestCatalog(t)
	_, err := cat.CreateTable("users", userColumns())
	require.NoError(t, err)

	loc, err := AppendRow(cache, cat, "users", []any{int32(1), "alice", true})
	require.NoError(t, err)

	entry, _ := cat.Lookup("users")
	require.NoError(t, MarkDeleted(cache, &entry.Schema, loc))

	count := 0
	err = ScanTable(cache, entry, func(loc Location, header RowHeader, values []any) (bool, error) {
		count++
		return true, nil
	})
	require.NoError(t, err)
	require.Zero(t, count)
}
