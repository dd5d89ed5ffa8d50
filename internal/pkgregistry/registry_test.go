package pkgregistry

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Digest(""))
	assert.Len(t, Digest("/home/user/build"), 32)
	assert.Equal(t, Digest("/a"), Digest("/a"))
	assert.NotEqual(t, Digest("/a"), Digest("/b"))
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Backend{
		"file":   NewFileBackend(t.TempDir()),
		"memory": NewMemoryBackend(),
		"sqlite": sqlite,
	}
}

func TestRegistry_StoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := New(backend)

			stored, err := r.Store(ctx, "Foo", "/work/build")
			require.NoError(t, err)
			assert.True(t, stored)

			stored, err = r.Store(ctx, "Foo", "/work/build")
			require.NoError(t, err)
			assert.False(t, stored, "second store of identical content is a no-op")

			entries, err := r.Entries(ctx, "Foo")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{Digest("/work/build"): "/work/build"}, entries)

			other, err := r.Entries(ctx, "Bar")
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestFileBackend_Layout(t *testing.T) {
	home := t.TempDir()
	r := New(NewFileBackend(home))

	_, err := r.Store(context.Background(), "Foo", "/work/build")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".cmake", "packages", "Foo", Digest("/work/build")))
	require.NoError(t, err)
	assert.Equal(t, "/work/build\n", string(data))
}

func TestFileBackend_WithoutHomeStoresNothing(t *testing.T) {
	b := NewFileBackend("")
	require.NoError(t, b.Put(context.Background(), "Foo", "h", "c"))
	has, err := b.Has(context.Background(), "Foo", "h")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFileBackend_WriteFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a file blocking directory creation")
	}
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".cmake"), nil, 0o644))

	_, err := New(NewFileBackend(home)).Store(context.Background(), "Foo", "/work/build")
	require.Error(t, err)
	assert.Equal(t, errs.KindIO, errs.KindOf(err))
	assert.Contains(t, err.Error(), "Cannot create package registry file:")
}

func TestSQLiteBackend_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.db")
	ctx := context.Background()

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = New(b).Store(ctx, "Foo", "/work/build")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b, err = OpenSQLite(path)
	require.NoError(t, err)
	defer b.Close()
	has, err := b.Has(ctx, "Foo", Digest("/work/build"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestOpen(t *testing.T) {
	home := t.TempDir()

	b, err := Open(KindMemory, "", home)
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(KindSQLite, "", home)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.FileExists(t, filepath.Join(home, ".cmake", "packages.db"))

	_, err = Open("floppy", "", home)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	b, err = Open(KindAuto, "", home)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.IsType(t, &FileBackend{}, b)
	}
}
