package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_init.sql", files[0])
	assert.IsIncreasing(t, files)
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"001_init.sql", "002_index.sql", "003_more.sql"}

	assert.Equal(t, files, pendingMigrations(files, map[string]bool{}))
	assert.Equal(t, []string{"003_more.sql"}, pendingMigrations(files, map[string]bool{"001_init.sql": true, "002_index.sql": true}))
	assert.Empty(t, pendingMigrations(files, map[string]bool{"001_init.sql": true, "002_index.sql": true, "003_more.sql": true}))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("x"))
	assert.Equal(t, "x", *nullable("x"))
	assert.Equal(t, "", deref(nil))
}
