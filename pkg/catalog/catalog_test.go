package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/skyactions/pkg/action"
)

func openTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, dir
}

func TestCatalog_CreateTable(t *testing.T) {
	c, dir := openTestCatalog(t)

	tbl, err := c.CreateTable("events")
	require.NoError(t, err)
	assert.Equal(t, "events", tbl.Name())
	assert.Equal(t, filepath.Join(dir, "tables", "events"), tbl.Path())
	assert.False(t, tbl.ID.IsNil())

	data, err := os.ReadFile(filepath.Join(tbl.Path(), action.FileName))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x90}, data)

	_, err = c.CreateTable("events")
	assert.ErrorIs(t, err, ErrTableExists)
}

func TestCatalog_CreateTableInvalidName(t *testing.T) {
	c, _ := openTestCatalog(t)

	for _, name := range []string{"", "../escape", "with space", "a/b"} {
		_, err := c.CreateTable(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestCatalog_GetAndListTables(t *testing.T) {
	c, _ := openTestCatalog(t)

	created, err := c.CreateTable("sessions")
	require.NoError(t, err)
	_, err = c.CreateTable("events")
	require.NoError(t, err)

	got, err := c.GetTable("sessions")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())

	_, err = c.GetTable("missing")
	assert.ErrorIs(t, err, ErrTableNotFound)

	tables, err := c.ListTables()
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "events", tables[0].Name())
	assert.Equal(t, "sessions", tables[1].Name())
}

func TestCatalog_OpenTablePersistsActions(t *testing.T) {
	c, dir := openTestCatalog(t)
	_, err := c.CreateTable("events")
	require.NoError(t, err)

	tbl, err := c.OpenTable("events")
	require.NoError(t, err)
	_, err = tbl.AddAction("signup")
	require.NoError(t, err)
	_, err = tbl.AddAction("purchase")
	require.NoError(t, err)
	require.NoError(t, tbl.Close())

	require.NoError(t, c.Close())
	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	tbl, err = reopened.OpenTable("events")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Actions().Count())

	a, err := tbl.Actions().FindByName("purchase")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, uint64(2), a.ID)
}

func TestCatalog_DropTable(t *testing.T) {
	c, _ := openTestCatalog(t)
	tbl, err := c.CreateTable("events")
	require.NoError(t, err)
	_, err = c.CreateTable("sessions")
	require.NoError(t, err)

	require.NoError(t, c.DropTable("events"))
	assert.NoDirExists(t, tbl.Path())

	_, err = c.GetTable("events")
	assert.ErrorIs(t, err, ErrTableNotFound)

	tables, err := c.ListTables()
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "sessions", tables[0].Name())

	assert.ErrorIs(t, c.DropTable("events"), ErrTableNotFound)
}

func TestCatalog_Closed(t *testing.T) {
	c, _ := openTestCatalog(t)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.CreateTable("events")
	assert.ErrorIs(t, err, ErrCatalogClosed)
	_, err = c.ListTables()
	assert.ErrorIs(t, err, ErrCatalogClosed)
}

func TestOpen_RequiresDataDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
