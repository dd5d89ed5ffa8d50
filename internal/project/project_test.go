package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_Targets(t *testing.T) {
	p := New("demo", "/src", "/src/build")
	require.NoError(t, p.AddTarget(&Target{Name: "mylib", Kind: Library}))
	require.NoError(t, p.AddTarget(&Target{Name: "app", Kind: Executable}))
	require.NoError(t, p.AddTarget(&Target{Name: "ext", Kind: Library, Imported: true}))

	require.Error(t, p.AddTarget(&Target{Name: "mylib", Kind: Library}))
	require.Error(t, p.AddTarget(&Target{Name: "bad", Kind: Alias, AliasOf: "missing"}))

	_, ok := p.FindTarget("ext")
	assert.False(t, ok, "imported targets are not built by the project")

	names := []string{}
	for _, tgt := range p.Targets() {
		names = append(names, tgt.Name)
	}
	assert.Equal(t, []string{"mylib", "app", "ext"}, names)
}

func TestProject_CanWriteFile(t *testing.T) {
	p := New("demo", "/src", "/src/build")

	assert.True(t, p.CanWriteFile("/src/build/out.cmake"))
	assert.True(t, p.CanWriteFile("/elsewhere/out.cmake"))
	assert.True(t, p.CanWriteFile("/srcx/out.cmake"))
	assert.False(t, p.CanWriteFile("/src/out.cmake"))
	assert.False(t, p.CanWriteFile(filepath.Join("/src", "sub", "out.cmake")))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("LIBRARY")
	require.NoError(t, err)
	assert.Equal(t, Library, k)

	_, err = ParseKind("interface")
	assert.Error(t, err)
}
