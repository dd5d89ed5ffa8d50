// Package pkgregistry records build directories in the user package
// registry so find_package() can locate packages that were never installed.
// Entries live under a per-package namespace keyed by the digest of their
// content.
package pkgregistry

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/specialistvlad/buildgen/internal/ctxlog"
)

// Backend is a persistent package registry store.
type Backend interface {
	Has(ctx context.Context, pkg, hash string) (bool, error)
	Put(ctx context.Context, pkg, hash, content string) error
	// Entries returns hash -> content for one package.
	Entries(ctx context.Context, pkg string) (map[string]string, error)
	Close() error
}

// Digest returns the lowercase hex MD5 of content.
func Digest(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Registry stores package entries in a backend.
type Registry struct {
	backend Backend
}

// New creates a registry over backend.
func New(backend Backend) *Registry {
	return &Registry{backend: backend}
}

// Store records content for pkg. An entry that already exists is left
// untouched. It reports whether a new entry was written.
func (r *Registry) Store(ctx context.Context, pkg, content string) (bool, error) {
	hash := Digest(content)
	exists, err := r.backend.Has(ctx, pkg, hash)
	if err != nil {
		return false, err
	}
	if exists {
		ctxlog.FromContext(ctx).Debug("Package registry entry already present.", "package", pkg, "hash", hash)
		return false, nil
	}
	if err := r.backend.Put(ctx, pkg, hash, content); err != nil {
		return false, err
	}
	ctxlog.FromContext(ctx).Debug("Package registry entry written.", "package", pkg, "hash", hash)
	return true, nil
}

// Entries lists the entries of one package.
func (r *Registry) Entries(ctx context.Context, pkg string) (map[string]string, error) {
	entries, err := r.backend.Entries(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("list package registry entries for %s: %w", pkg, err)
	}
	return entries, nil
}

// Close releases the backend.
func (r *Registry) Close() error {
	return r.backend.Close()
}
