package pkgregistry

import (
	"context"
	"sync"
)

// MemoryBackend keeps entries in memory. It backs tests and dry runs.
type MemoryBackend struct {
	entries sync.Map // Key: package name, Value: *sync.Map of hash -> content
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) bucket(pkg string) *sync.Map {
	v, _ := b.entries.LoadOrStore(pkg, &sync.Map{})
	return v.(*sync.Map)
}

// Has implements Backend.
func (b *MemoryBackend) Has(_ context.Context, pkg, hash string) (bool, error) {
	_, ok := b.bucket(pkg).Load(hash)
	return ok, nil
}

// Put implements Backend.
func (b *MemoryBackend) Put(_ context.Context, pkg, hash, content string) error {
	b.bucket(pkg).Store(hash, content)
	return nil
}

// Entries implements Backend.
func (b *MemoryBackend) Entries(_ context.Context, pkg string) (map[string]string, error) {
	out := make(map[string]string)
	b.bucket(pkg).Range(func(k, v any) bool {
		out[k.(string)] = v.(string)
		return true
	})
	return out, nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error { return nil }
