package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPathPriority(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, second, "a.gltf", []byte("{}"))
	want := writeFile(t, first, "b.gltf", []byte("{}"))
	writeFile(t, second, "b.gltf", []byte("{}"))

	sp := NewSearchPath(first, second)

	got, err := sp.Resolve("a.gltf", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "a.gltf"), got)

	got, err = sp.Resolve("b.gltf", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = sp.Resolve("c.gltf", nil)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestSearchPathSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "scene.gltf"), 0o755))

	_, err := NewSearchPath(root).Resolve("scene.gltf", nil)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestSearchPathAbsoluteName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abs.glb", []byte("glTF"))

	got, err := NewSearchPath(t.TempDir()).Resolve(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestSearchPathRoots(t *testing.T) {
	assert.Equal(t, []string{config.DefaultSearchRoot}, NewSearchPath().Roots())
	assert.Equal(t, []string{config.DefaultSearchRoot}, SearchPath{}.Roots())

	sp := NewSearchPath("assets", " ", "models/")
	roots := sp.Roots()
	assert.Equal(t, []string{"assets" + string(filepath.Separator), "models/"}, roots)

	roots[0] = "changed"
	assert.NotEqual(t, "changed", sp.Roots()[0])
}
