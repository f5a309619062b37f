package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(migrationFiles)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].version)
	assert.Equal(t, "client_session", migrations[0].name)
	assert.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS client_session")
}

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"migrations/010_later.up.sql":  {Data: []byte("SELECT 10")},
		"migrations/002_second.up.sql": {Data: []byte("SELECT 2")},
		"migrations/001_first.up.sql":  {Data: []byte("SELECT 1")},
	}

	migrations, err := loadMigrations(files)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{migrations[0].version, migrations[1].version, migrations[2].version})
	assert.Equal(t, "later", migrations[2].name)
}

func TestLoadMigrationsRejectsBadNames(t *testing.T) {
	t.Parallel()

	t.Run("missing version", func(t *testing.T) {
		t.Parallel()

		_, err := loadMigrations(fstest.MapFS{"migrations/init.up.sql": {Data: []byte("SELECT 1")}})
		require.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		t.Parallel()

		_, err := loadMigrations(fstest.MapFS{
			"migrations/001_a.up.sql": {Data: []byte("SELECT 1")},
			"migrations/1_b.up.sql":   {Data: []byte("SELECT 1")},
		})
		require.Error(t, err)
	})
}
