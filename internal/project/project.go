// Package project is the target graph a configure pass exports from. It is
// intentionally shallow: targets, their kinds and the tests declared by the
// project.
package project

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the kind of a target.
type Kind string

const (
	Library    Kind = "library"
	Executable Kind = "executable"
	Utility    Kind = "utility"
	Alias      Kind = "alias"
)

// ParseKind validates a kind read from configuration.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Library, Executable, Utility, Alias:
		return k, nil
	}
	return "", fmt.Errorf("unknown target kind %q", s)
}

// Target is one build target.
type Target struct {
	Name string
	Kind Kind
	// AliasOf names the aliased target when Kind is Alias.
	AliasOf string
	// Location is the build-tree path of the target's primary artifact,
	// relative to the binary directory.
	Location string
	// Packages lists the packages the target links against.
	Packages []string
	// Imported targets are known to the project but not built by it.
	Imported bool
}

// Exportable reports whether the target may appear in an export set.
func (t *Target) Exportable() bool {
	return t.Kind == Library || t.Kind == Executable
}

// Test is a test registered with the project.
type Test struct {
	Name    string
	Command []string
	Labels  []string
}

// Project owns the targets and tests of one configure pass.
type Project struct {
	Name      string
	SourceDir string
	BinaryDir string
	Languages []string

	targets map[string]*Target
	order   []string
	tests   []*Test
}

// New creates an empty project rooted at the given directories.
func New(name, sourceDir, binaryDir string) *Project {
	return &Project{
		Name:      name,
		SourceDir: filepath.Clean(sourceDir),
		BinaryDir: filepath.Clean(binaryDir),
		targets:   make(map[string]*Target),
	}
}

// AddTarget registers a target. Names must be unique.
func (p *Project) AddTarget(t *Target) error {
	if _, exists := p.targets[t.Name]; exists {
		return fmt.Errorf("target %q already defined", t.Name)
	}
	if t.Kind == Alias {
		if _, ok := p.targets[t.AliasOf]; !ok {
			return fmt.Errorf("alias target %q refers to unknown target %q", t.Name, t.AliasOf)
		}
	}
	p.targets[t.Name] = t
	p.order = append(p.order, t.Name)
	return nil
}

// FindTarget returns the target built by this project with the given name.
// Imported targets are not returned.
func (p *Project) FindTarget(name string) (*Target, bool) {
	t, ok := p.targets[name]
	if !ok || t.Imported {
		return nil, false
	}
	return t, true
}

// Targets returns targets in declaration order.
func (p *Project) Targets() []*Target {
	out := make([]*Target, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.targets[name])
	}
	return out
}

// AddTest registers a test.
func (p *Project) AddTest(t *Test) {
	p.tests = append(p.tests, t)
}

// Tests returns tests in declaration order.
func (p *Project) Tests() []*Test {
	return p.tests
}

// CanWriteFile reports whether a generated file may be written at path. Files
// inside the source tree are refused unless the binary tree is nested in it
// and the file is inside the binary tree.
func (p *Project) CanWriteFile(path string) bool {
	path = filepath.Clean(path)
	if isSubpath(p.BinaryDir, path) {
		return true
	}
	return !isSubpath(p.SourceDir, path)
}

func isSubpath(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
