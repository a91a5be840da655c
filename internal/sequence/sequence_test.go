package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objseq2cache/internal/failure"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0644))
	}
}

func names(frames []Descriptor) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Name
	}
	return out
}

func TestDiscover_NumericOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "mesh_001.obj", "mesh_010.obj", "mesh_002.obj")

	frames, err := Discover(dir, ".obj")
	require.NoError(t, err)
	assert.Equal(t, []string{"mesh_001.obj", "mesh_002.obj", "mesh_010.obj"}, names(frames))
	assert.Equal(t, filepath.Join(dir, "mesh_001.obj"), frames[0].Path)
	assert.True(t, frames[2].HasNumber)
	assert.Equal(t, 10, frames[2].Number)
}

func TestDiscover_UnnumberedFallsBackToFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "mesh_005.obj", "a.obj")

	frames, err := Discover(dir, ".obj")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.obj", "mesh_005.obj"}, names(frames))
	assert.False(t, frames[0].HasNumber)
}

func TestDiscover_NumericBeatsLexical(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "f9.obj", "f10.obj", "f100.obj")

	frames, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"f9.obj", "f10.obj", "f100.obj"}, names(frames))
}

func TestDiscover_FiltersExtensionCaseInsensitive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "a_1.OBJ", "a_2.obj", "a_3.Obj", "notes.txt", "a_4.obj.bak", "mtl.mtl")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.obj"), 0755))
	touch(t, filepath.Join(dir, "sub.obj"), "a_0.obj")

	frames, err := Discover(dir, "OBJ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1.OBJ", "a_2.obj", "a_3.Obj"}, names(frames))
}

func TestDiscover_Empty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "readme.md")

	frames, err := Discover(dir, ".obj")
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestDiscover_BadDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "file.obj")

	_, err := Discover(filepath.Join(dir, "missing"), ".obj")
	assert.ErrorIs(t, err, failure.ErrFileAccess)

	_, err = Discover(filepath.Join(dir, "file.obj"), ".obj")
	assert.ErrorIs(t, err, failure.ErrFileAccess)
}

func TestFrameNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"mesh_0012.obj", 12, true},
		{"42.obj", 42, true},
		{"take2_frame7.obj", 7, true},
		{"a.obj", 0, false},
		{"mesh_12_final.obj", 0, false},
		{"mesh5.final.obj", 0, false},
		{"frame99999999999999999999999.obj", 0, false},
	}
	for _, tt := range tests {
		n, ok := FrameNumber(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, n, tt.name)
	}
}

func TestLess_Asymmetry(t *testing.T) {
	t.Parallel()

	numbered := Descriptor{Name: "z_1.obj", Number: 1, HasNumber: true}
	plain := Descriptor{Name: "a.obj"}

	// A numbered file sorts by name against an unnumbered one.
	assert.True(t, Less(plain, numbered))
	assert.False(t, Less(numbered, plain))

	early := Descriptor{Name: "z_1.obj", Number: 1, HasNumber: true}
	late := Descriptor{Name: "a_2.obj", Number: 2, HasNumber: true}
	assert.True(t, Less(early, late))
	assert.False(t, Less(late, early))
}
