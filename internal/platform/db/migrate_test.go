package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal/migrations"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b.sql":     {Data: []byte("SELECT 1")},
		"0001_a.sql":     {Data: []byte("SELECT 1")},
		"README.md":      {Data: []byte("notes")},
		"nested/x.sql":   {Data: []byte("SELECT 1")},
		"0010_later.sql": {Data: []byte("SELECT 1")},
	}
	files, err := MigrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql", "0010_later.sql"}, files)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := MigrationFiles(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_evaluation_catalog.sql", "0002_evaluations.sql", "0003_criteria_order.sql"}, files)
}

func TestOpenSQLiteEnforcesForeignKeys(t *testing.T) {
	conn, err := OpenSQLite(t.Context(), t.TempDir()+"/fk.db")
	require.NoError(t, err)
	defer conn.Close()

	var enabled int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}
