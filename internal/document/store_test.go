package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.tex")
	store := FileStore{}

	require.NoError(t, store.Save(path, "\\begin{document}\nhi\n\\end{document}\n"))

	content, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "\\begin{document}\nhi\n\\end{document}\n", content)
}

func TestFileStore_SaveOverwritesAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0600))

	store := FileStore{}
	require.NoError(t, store.Save(path, "new"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestFileStore_LoadMissing(t *testing.T) {
	_, err := FileStore{}.Load(filepath.Join(t.TempDir(), "missing.tex"))
	assert.Error(t, err)
}
