package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates an up/down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add receipts table")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.Contains(t, mf.UpPath, "add_receipts_table.up.sql")
		assert.Contains(t, mf.DownPath, "add_receipts_table.down.sql")

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add receipts table")
	})
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_receipts_table", sanitizeName("Add Receipts Table"))
	assert.Equal(t, "fix_counter", sanitizeName("fix--counter"))
	assert.Equal(t, "v2_schema", sanitizeName("v2 schema "))
}

func TestListMigrations(t *testing.T) {
	t.Run("empty for missing directory", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("lists up migrations once", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CreateMigration(dir, "first")
		require.NoError(t, err)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Contains(t, migrations[0], "first")
	})
}
