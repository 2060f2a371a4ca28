package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWithModTime(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("Year\n"), 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestFindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	writeWithModTime(t, filepath.Join(dir, "b.csv"), base.Add(2*time.Hour))
	writeWithModTime(t, filepath.Join(dir, "a.CSV"), base)
	writeWithModTime(t, filepath.Join(dir, "notes.txt"), base.Add(3*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

	files, err := FindCSVFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.CSV", files[0].Name)
	assert.Equal(t, "b.csv", files[1].Name)
	assert.Equal(t, filepath.Join(dir, "b.csv"), files[1].Path)
}

func TestFindCSVFiles_MissingDirectory(t *testing.T) {
	_, err := FindCSVFiles(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read directory")
}

func TestGetLatestFile(t *testing.T) {
	base := time.Now()
	tests := []struct {
		name     string
		files    []FileInfo
		expected string
		found    bool
	}{
		{name: "empty list", files: nil, found: false},
		{
			name: "latest in the middle",
			files: []FileInfo{
				{Name: "old", ModTime: base.Add(-2 * time.Hour)},
				{Name: "new", ModTime: base},
				{Name: "mid", ModTime: base.Add(-time.Hour)},
			},
			expected: "new",
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, ok := GetLatestFile(tt.files)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, latest.Name)
		})
	}
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := filepath.Join(dir, "discipline_2023.csv")
	newer := filepath.Join(dir, "discipline_2024.csv")
	writeWithModTime(t, older, base)
	writeWithModTime(t, newer, base.Add(time.Hour))

	t.Run("file is returned unchanged", func(t *testing.T) {
		path, err := ResolveSource(older)
		require.NoError(t, err)
		assert.Equal(t, older, path)
	})

	t.Run("directory resolves to newest csv", func(t *testing.T) {
		path, err := ResolveSource(dir)
		require.NoError(t, err)
		assert.Equal(t, newer, path)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := ResolveSource(t.TempDir())
		assert.ErrorIs(t, err, ErrNoSourceFile)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := ResolveSource(filepath.Join(dir, "missing.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
