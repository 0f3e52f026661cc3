package reader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/reader"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadDirSortsAndStripsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "books.sql", "-- books\n")
	writeFile(t, dir, "authors.sql", "-- authors\n")
	writeFile(t, dir, "readme.txt", "ignored")

	modules, err := reader.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, modules, 2)

	assert.Equal(t, "authors", modules[0].Name)
	assert.Equal(t, "books", modules[1].Name)
	assert.Equal(t, "-- books\n", modules[1].Text)
}

func TestReadDirIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.sql", "-- top\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "inner.sql", "-- inner\n")

	modules, err := reader.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "top", modules[0].Name)
}

func TestReadDirRejectsExtraDotInName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "books.v2.sql", "-- x\n")

	_, err := reader.ReadDir(dir)
	require.Error(t, err)
}

func TestReadDirMissingDirectory(t *testing.T) {
	_, err := reader.ReadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
