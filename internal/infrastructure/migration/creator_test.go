package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Late Fee Column")
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(mf.UpPath), "add_late_fee_column.up.sql")
	assert.Contains(t, filepath.Base(mf.DownPath), "add_late_fee_column.down.sql")

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "Add Late Fee Column")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "000002_second.up.sql"), []byte("--"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_first.up.sql"), []byte("--"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))

	files, err := ListMigrations(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"000001_first.up.sql", "000002_second.up.sql"}, files)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases and underscores", "Add Fee Table", "add_fee_table"},
		{"collapses separators", "add  fee--table", "add_fee_table"},
		{"strips punctuation", "fees: v2!", "fees_v2"},
		{"trims trailing separator", "add fee ", "add_fee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}
