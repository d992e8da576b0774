package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("notes", createNotes))

	err := reg.Register("notes", createNotes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RegisterRejectsEmptyName(t *testing.T) {
	require.Error(t, NewRegistry().Register("", createNotes))
}

func TestRegistry_TablesKeepsOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("tags", createTags))
	require.NoError(t, reg.Register("notes", createNotes))

	assert.Equal(t, []string{"tags", "notes"}, reg.Tables())

	tables := reg.Tables()
	tables[0] = "changed"
	assert.Equal(t, "tags", reg.Tables()[0])
}

func TestRegistry_CreateScript(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("a", "CREATE TABLE IF NOT EXISTS a (x int);"))
	require.NoError(t, reg.Register("b", "CREATE TABLE IF NOT EXISTS b (y int)"))

	assert.Equal(t,
		"PRAGMA foreign_keys=OFF;BEGIN TRANSACTION;"+
			"CREATE TABLE IF NOT EXISTS a (x int); "+
			"CREATE TABLE IF NOT EXISTS b (y int); "+
			"COMMIT;",
		reg.CreateScript())
}

func TestRegistry_CreateScriptEmpty(t *testing.T) {
	assert.Equal(t, "PRAGMA foreign_keys=OFF;BEGIN TRANSACTION;COMMIT;", NewRegistry().CreateScript())
}

func TestRegistry_CountTablesSQL(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("sessions", "x"))
	require.NoError(t, reg.Register("commands", "y"))

	assert.Equal(t,
		"select count(*) as table_count from sqlite_master "+
			"where type = 'table' and tbl_name in ('sessions', 'commands');",
		reg.countTablesSQL())
}
