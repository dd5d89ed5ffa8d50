package pkgregistry

import (
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildgen/internal/errs"
)

// Kind selects a backend.
type Kind string

const (
	KindAuto            Kind = "auto"
	KindFile            Kind = "file"
	KindWindowsRegistry Kind = "registry"
	KindSQLite          Kind = "sqlite"
	KindMemory          Kind = "memory"
)

const defaultSQLiteDBName = "packages.db"

// Open creates the backend of the given kind. path is only used by the
// SQLite backend and defaults to <home>/.cmake/packages.db. KindAuto picks
// the platform default.
func Open(kind Kind, path, home string) (Backend, error) {
	if kind == KindAuto || kind == "" {
		kind = defaultKind
	}
	switch Kind(strings.ToLower(string(kind))) {
	case KindFile:
		return NewFileBackend(home), nil
	case KindWindowsRegistry:
		return openWindowsBackend()
	case KindSQLite:
		if path == "" {
			if home == "" {
				return nil, errs.Configuration("the sqlite package registry needs a path or a home directory")
			}
			path = filepath.Join(home, ".cmake", defaultSQLiteDBName)
		}
		return OpenSQLite(path)
	case KindMemory:
		return NewMemoryBackend(), nil
	}
	return nil, errs.Configuration("unknown package registry backend %q", kind)
}
