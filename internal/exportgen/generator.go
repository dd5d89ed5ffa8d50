// Package exportgen writes the importable files produced by export(): a
// CMake configuration script or an Android.mk fragment describing targets of
// the build tree.
package exportgen

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgen/internal/exportset"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/project"
)

// GenerateContext carries the configure pass state file generation reads.
type GenerateContext struct {
	Project  *project.Project
	Policies *policy.Context
}

// FileGenerator produces the content of one export file.
type FileGenerator interface {
	// Path is the absolute path of the generated file.
	Path() string
	// AppendMode reports whether content is appended to the existing file.
	AppendMode() bool
	// AppendTargets adds targets to the exported list, skipping known ones.
	AppendTargets(names []string)
	// TargetNames returns the exported targets in output order.
	TargetNames() []string
	// Generate renders the file content.
	Generate(gctx GenerateContext) ([]byte, error)
}

// Options are the settings shared by every file variant.
type Options struct {
	Path                string
	Namespace           string
	Append              bool
	CxxModulesDirectory string
	// Configurations lists the build configurations to describe. The empty
	// configuration stands for the configuration-less properties.
	Configurations []string
	// Set binds the generator to an export set. When nil, Targets is used.
	Set     *exportset.Set
	Targets []string
}

type buildFile struct {
	opts  Options
	extra []string
}

func (b *buildFile) Path() string     { return b.opts.Path }
func (b *buildFile) AppendMode() bool { return b.opts.Append }

func (b *buildFile) AppendTargets(names []string) {
	b.extra = exportset.AppendTargets(b.extra, names)
}

func (b *buildFile) TargetNames() []string {
	base := b.opts.Targets
	if b.opts.Set != nil {
		base = b.opts.Set.TargetNames()
	}
	return exportset.AppendTargets(base, b.extra)
}

func (b *buildFile) exportedTargets(p *project.Project) ([]*project.Target, error) {
	names := b.TargetNames()
	out := make([]*project.Target, 0, len(names))
	for _, name := range names {
		t, ok := p.FindTarget(name)
		if !ok {
			return nil, fmt.Errorf("exported target %q is not built by this project", name)
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *buildFile) xcFrameworkLocation(name string) string {
	if b.opts.Set == nil {
		return ""
	}
	for _, te := range b.opts.Set.Targets() {
		if te.TargetName == name {
			return te.XcFrameworkLocation
		}
	}
	return ""
}

func configSuffix(config string) string {
	if config == "" {
		return ""
	}
	return "_" + strings.ToUpper(config)
}
