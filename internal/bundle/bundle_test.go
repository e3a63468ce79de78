package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HashBytes_stableAndSensitiveToContent(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	c := HashBytes([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex sha256
}

func Test_BuildManifest_recordsPerSourceHashes(t *testing.T) {
	sources := map[string][]byte{
		"main.st": []byte("PROGRAM main END_PROGRAM"),
		"lib.st":  []byte("FUNCTION_BLOCK fb END_FUNCTION_BLOCK"),
	}
	program := []byte{0x01, 0x02, 0x03}

	m := BuildManifest("demo", sources, program)

	assert.Equal(t, "demo", m.ProjectName)
	assert.Equal(t, HashBytes(program), m.ProgramHash)
	require.Len(t, m.Sources, 2)
	for _, entry := range m.Sources {
		assert.Equal(t, HashBytes(sources[entry.Path]), entry.Hash)
	}
}

func Test_ManifestEncodeDecode_roundTrips(t *testing.T) {
	m := BuildManifest("demo", map[string][]byte{"main.st": []byte("x")}, []byte{0xAA})

	data := m.Encode()
	got, err := DecodeManifest(data)
	require.NoError(t, err)

	assert.Equal(t, m.ProjectName, got.ProjectName)
	assert.Equal(t, m.ProgramHash, got.ProgramHash)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, m.Sources[0], got.Sources[0])
}

func Test_DecodeManifest_rejectsGarbage(t *testing.T) {
	_, err := DecodeManifest([]byte{0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}

func Test_Layout_pathsJoinUnderDir(t *testing.T) {
	l := Layout{Dir: "/proj"}

	assert.Equal(t, filepath.Join("/proj", "runtime.toml"), l.RuntimeConfigPath())
	assert.Equal(t, filepath.Join("/proj", "io.toml"), l.IOConfigPath())
	assert.Equal(t, filepath.Join("/proj", "program.stbc"), l.ProgramPath())
	assert.Equal(t, filepath.Join("/proj", "program.stbc.manifest"), l.ManifestPath())
}

func Test_Layout_SourcesDir_prefersSourcesThenSrc(t *testing.T) {
	dir := t.TempDir()
	l := Layout{Dir: dir}

	_, err := l.SourcesDir()
	assert.Error(t, err, "neither tree exists yet")

	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0755))
	got, err := l.SourcesDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), got)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sources"), 0755))
	got, err = l.SourcesDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sources"), got, "sources/ takes priority over src/")
}

func Test_ManifestStale_detectsCountAndContentChanges(t *testing.T) {
	sources := map[string][]byte{"main.st": []byte("v1")}
	m := BuildManifest("demo", sources, []byte{0x01})

	assert.False(t, m.Stale(sources), "identical source set must not be stale")

	changed := map[string][]byte{"main.st": []byte("v2")}
	assert.True(t, m.Stale(changed), "changed content must be stale")

	added := map[string][]byte{"main.st": []byte("v1"), "extra.st": []byte("v1")}
	assert.True(t, m.Stale(added), "added file must be stale")

	missing := map[string][]byte{}
	assert.True(t, m.Stale(missing), "removed file must be stale")
}
