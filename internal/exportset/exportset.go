// Package exportset models named collections of exported targets and the
// package dependencies recorded for them.
package exportset

import (
	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/project"
)

// Enabled controls whether a package dependency is written to exported
// files.
type Enabled int

const (
	// Auto writes the dependency only when an exported target links it.
	Auto Enabled = iota
	On
	Off
)

func (e Enabled) String() string {
	switch e {
	case On:
		return "ON"
	case Off:
		return "OFF"
	default:
		return "AUTO"
	}
}

// ParseEnabled accepts AUTO or any boolean constant.
func ParseEnabled(s string) (Enabled, error) {
	switch {
	case s == "AUTO":
		return Auto, nil
	case ambient.IsOff(s):
		return Off, nil
	case ambient.IsOn(s):
		return On, nil
	}
	return Auto, errs.Usage("Invalid enable setting for package dependency: %q", s)
}

// TargetExport is one member of a set.
type TargetExport struct {
	TargetName          string
	XcFrameworkLocation string
}

// PackageDependency is the export configuration of one package.
type PackageDependency struct {
	Enabled   Enabled
	ExtraArgs []string
}

// AppendExtraArgs appends arguments in order, keeping duplicates.
func (d *PackageDependency) AppendExtraArgs(args ...string) {
	d.ExtraArgs = append(d.ExtraArgs, args...)
}

// Resolver finds targets built by the current project.
type Resolver interface {
	FindTarget(name string) (*project.Target, bool)
}

// Set is a named, ordered collection of target exports.
type Set struct {
	Name string

	targets  []*TargetExport
	byName   map[string]*TargetExport
	packages map[string]*PackageDependency
	pkgOrder []string
}

func newSet(name string) *Set {
	return &Set{
		Name:     name,
		byName:   make(map[string]*TargetExport),
		packages: make(map[string]*PackageDependency),
	}
}

// AddTargets appends the named targets. Every name is checked before any
// is added, so a failing call leaves the set unchanged.
func (s *Set) AddTargets(r Resolver, names []string) error {
	for _, name := range names {
		if err := CheckExportable(r, name); err != nil {
			return err
		}
	}
	for _, name := range names {
		s.add(name)
	}
	return nil
}

func (s *Set) add(name string) *TargetExport {
	if te, ok := s.byName[name]; ok {
		return te
	}
	te := &TargetExport{TargetName: name}
	s.targets = append(s.targets, te)
	s.byName[name] = te
	return te
}

// Targets returns the members in insertion order.
func (s *Set) Targets() []*TargetExport {
	return s.targets
}

// TargetNames returns the member names in insertion order.
func (s *Set) TargetNames() []string {
	names := make([]string, 0, len(s.targets))
	for _, te := range s.targets {
		names = append(names, te.TargetName)
	}
	return names
}

// Has reports whether the target is a member.
func (s *Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// PackageDependency returns the record for pkg, creating it on first use.
func (s *Set) PackageDependency(pkg string) *PackageDependency {
	if d, ok := s.packages[pkg]; ok {
		return d
	}
	d := &PackageDependency{Enabled: Auto}
	s.packages[pkg] = d
	s.pkgOrder = append(s.pkgOrder, pkg)
	return d
}

// PackageDependencies returns the recorded package names in creation order.
func (s *Set) PackageDependencies() []string {
	return s.pkgOrder
}

// LookupPackageDependency returns an existing record.
func (s *Set) LookupPackageDependency(pkg string) (*PackageDependency, bool) {
	d, ok := s.packages[pkg]
	return d, ok
}

// SetXcFrameworkLocation records the XCFramework path for a member target.
func (s *Set) SetXcFrameworkLocation(target, location string) error {
	te, ok := s.byName[target]
	if !ok {
		return errs.Newf(errs.KindExportGraph,
			"TARGET \"%s\" is not a member of export set \"%s\".", target, s.Name)
	}
	te.XcFrameworkLocation = location
	return nil
}

// CheckExportable fails unless name is a library or executable built by the
// project.
func CheckExportable(r Resolver, name string) error {
	t, ok := r.FindTarget(name)
	if !ok {
		return errs.Newf(errs.KindExportGraph, "given target \"%s\" which is not built by this project.", name)
	}
	switch t.Kind {
	case project.Alias:
		return errs.Newf(errs.KindExportGraph, "given ALIAS target \"%s\" which may not be exported.", name)
	case project.Utility:
		return errs.Newf(errs.KindExportGraph, "given custom target \"%s\" which may not be exported.", name)
	}
	return nil
}

// AppendTargets merges additional names into an existing ordered list.
// Names already present are skipped.
func AppendTargets(existing, additional []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(additional))
	out := make([]string, 0, len(existing)+len(additional))
	for _, list := range [][]string{existing, additional} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Map owns all export sets of a configure pass.
type Map struct {
	sets  map[string]*Set
	order []string
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{sets: make(map[string]*Set)}
}

// GetOrCreate returns the named set, inserting an empty one if needed.
func (m *Map) GetOrCreate(name string) *Set {
	if s, ok := m.sets[name]; ok {
		return s
	}
	s := newSet(name)
	m.sets[name] = s
	m.order = append(m.order, name)
	return s
}

// Find returns an existing set.
func (m *Map) Find(name string) (*Set, bool) {
	s, ok := m.sets[name]
	return s, ok
}

// Names returns set names in creation order.
func (m *Map) Names() []string {
	return m.order
}
