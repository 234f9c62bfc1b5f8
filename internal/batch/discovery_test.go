package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func sampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.png", "notes.txt", "C.TIFF", filepath.Join("sub", "c.jpg")} {
		touch(t, filepath.Join(dir, name))
	}
	return dir
}

func TestDiscoverImages_Directory(t *testing.T) {
	dir := sampleTree(t)

	files, err := DiscoverImages([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "C.TIFF"),
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.jpg"),
	}, files)
}

func TestDiscoverImages_Recursive(t *testing.T) {
	dir := sampleTree(t)

	files, err := DiscoverImages([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.Equal(t, filepath.Join(dir, "sub", "c.jpg"), files[3])
}

func TestDiscoverImages_Patterns(t *testing.T) {
	dir := sampleTree(t)

	files, err := DiscoverImages([]string{dir}, true, []string{"*.jpg"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.jpg"), filepath.Join(dir, "sub", "c.jpg")}, files)

	files, err = DiscoverImages([]string{dir}, false, nil, []string{"b.*", "C.*"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.png")}, files)
}

func TestDiscoverImages_ExplicitFiles(t *testing.T) {
	dir := sampleTree(t)

	files, err := DiscoverImages([]string{
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "a.png"),
	}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.jpg"), filepath.Join(dir, "a.png")}, files,
		"explicit files keep argument order")
}

func TestDiscoverImages_MissingPath(t *testing.T) {
	_, err := DiscoverImages([]string{filepath.Join(t.TempDir(), "nope")}, false, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatchesAnyPattern(t *testing.T) {
	assert.True(t, matchesAnyPattern("/a/b/photo-10000px.jpg", []string{"*-10000px.*"}))
	assert.False(t, matchesAnyPattern("/a/b/photo.jpg", []string{"*-10000px.*"}))
	assert.False(t, matchesAnyPattern("photo.jpg", nil))
	assert.False(t, matchesAnyPattern("photo.jpg", []string{"[bad"}))
}
