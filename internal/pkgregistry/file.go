package pkgregistry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/fsutil"
)

// FileBackend stores entries as <home>/.cmake/packages/<package>/<hash>
// files holding the content followed by a newline. Without a home
// directory the backend stores nothing.
type FileBackend struct {
	home string
}

// NewFileBackend creates a file backend rooted at home.
func NewFileBackend(home string) *FileBackend {
	return &FileBackend{home: home}
}

func (b *FileBackend) packageDir(pkg string) string {
	return filepath.Join(b.home, ".cmake", "packages", pkg)
}

// Has implements Backend.
func (b *FileBackend) Has(_ context.Context, pkg, hash string) (bool, error) {
	if b.home == "" {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(b.packageDir(pkg), hash))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errs.Wrap(errs.KindIO, "Cannot create package registry file:\n  "+filepath.Join(b.packageDir(pkg), hash), err)
}

// Put implements Backend.
func (b *FileBackend) Put(_ context.Context, pkg, hash, content string) error {
	if b.home == "" {
		return nil
	}
	fname := filepath.Join(b.packageDir(pkg), hash)
	if err := fsutil.WriteFileAtomic(fname, []byte(content+"\n"), 0o644); err != nil {
		return errs.Wrap(errs.KindIO, "Cannot create package registry file:\n  "+fname, err)
	}
	return nil
}

// Entries implements Backend.
func (b *FileBackend) Entries(_ context.Context, pkg string) (map[string]string, error) {
	entries := make(map[string]string)
	if b.home == "" {
		return entries, nil
	}
	dirEntries, err := os.ReadDir(b.packageDir(pkg))
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.packageDir(pkg), de.Name()))
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", de.Name(), err)
		}
		entries[de.Name()] = strings.TrimSuffix(string(data), "\n")
	}
	return entries, nil
}

// Close implements Backend.
func (b *FileBackend) Close() error { return nil }
