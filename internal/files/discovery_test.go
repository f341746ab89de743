package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindTables(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "csv and excel",
			files:    []string{"b.xlsx", "a.csv", "C.CSV"},
			expected: []string{"C.CSV", "a.csv", "b.xlsx"},
		},
		{
			name:     "skips other types",
			files:    []string{"factors.csv", "notes.txt", "old.xls", "report.pdf"},
			expected: []string{"factors.csv"},
		},
		{
			name:     "skips outputs and lock files",
			files:    []string{"factors.csv", "factors_std.csv", "~$book.xlsx", "book.xlsx"},
			expected: []string{"book.xlsx", "factors.csv"},
		},
		{
			name:     "empty directory",
			files:    []string{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
			}
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

			found, err := NewDiscovery("").FindTables(dir)
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.Equal(t, int64(1), f.Size)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindTablesRelative(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "in"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "in", "f.csv"), []byte("x"), 0644))

	d := NewDiscovery(base)
	found, err := d.FindTables("in")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "in", "f.csv"), found[0].Path)

	assert.True(t, d.IsDir("in"))
	assert.False(t, d.IsDir("in/f.csv"))
	assert.False(t, d.IsDir("absent"))

	_, err = d.FindTables("absent")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.True(t, IsTable("a.CSV"))
	assert.True(t, IsTable("a.xlsx"))
	assert.False(t, IsTable("a.xls"))

	assert.True(t, IsOutput("factors_std.xlsx"))
	assert.False(t, IsOutput("factors.xlsx"))

	assert.Equal(t, "factors_std.csv", OutputName("factors.csv"))
	assert.Equal(t, "factors_std", OutputName("factors"))
}
