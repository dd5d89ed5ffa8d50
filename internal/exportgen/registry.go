package exportgen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/fsutil"
	"github.com/specialistvlad/buildgen/internal/policy"
)

// Registry binds export files to their generators. A path has at most one
// generator; later declarations either append targets or replace it as
// decided by CMP0103.
type Registry struct {
	files map[string]FileGenerator
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{files: make(map[string]FileGenerator)}
}

// Lookup returns the generator bound to path.
func (r *Registry) Lookup(path string) (FileGenerator, bool) {
	g, ok := r.files[path]
	return g, ok
}

// Paths returns the bound paths in binding order.
func (r *Registry) Paths() []string {
	return r.order
}

// AppendTargets adds targets to the generator already bound to path and
// reports whether one was found.
func (r *Registry) AppendTargets(path string, names []string) bool {
	g, ok := r.files[path]
	if !ok {
		return false
	}
	g.AppendTargets(names)
	return true
}

// Bind associates gen with its path. When the path is already bound the
// CMP0103 decision applies: NEW fails, WARN reports through warn and
// replaces, OLD replaces silently.
func (r *Registry) Bind(gen FileGenerator, decision policy.Status, warn func(string)) error {
	path := gen.Path()
	if _, exists := r.files[path]; exists {
		msg := fmt.Sprintf("command already specified for the file\n  %s\nDid you miss 'APPEND' keyword?", path)
		switch decision {
		case policy.New:
			return errs.New(errs.KindExportGraph, msg)
		case policy.Warn:
			if warn != nil {
				warn(policy.Warning(policy.CMP0103) + "\nexport() " + msg)
			}
		}
		r.files[path] = gen
		return nil
	}
	r.files[path] = gen
	r.order = append(r.order, path)
	return nil
}

// GenerateAll writes every bound file in binding order. Each file is
// replaced atomically; append-mode files keep their previous content ahead
// of the new one.
func (r *Registry) GenerateAll(ctx context.Context, gctx GenerateContext) error {
	logger := ctxlog.FromContext(ctx)
	for _, path := range r.order {
		gen := r.files[path]
		content, err := gen.Generate(gctx)
		if err != nil {
			return errs.Wrap(errs.KindExportGraph, fmt.Sprintf("cannot generate %s", path), err)
		}
		if gen.AppendMode() {
			prev, err := os.ReadFile(path)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return errs.Wrap(errs.KindIO, fmt.Sprintf("cannot read %s", path), err)
			}
			content = append(prev, content...)
		}
		if err := fsutil.WriteFileAtomic(path, content, 0o644); err != nil {
			return errs.Wrap(errs.KindIO, fmt.Sprintf("cannot write %s", path), err)
		}
		logger.Debug("Export file written.", "path", path, "targets", gen.TargetNames())
	}
	return nil
}
