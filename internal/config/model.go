package config

import (
	"fmt"
	"path/filepath"
)

// Model is the unified, format-agnostic representation of a project file.
type Model struct {
	Project    *Project
	Targets    []*Target
	ExportSets []*ExportSet
	Tests      []*Test
	// Variables are defined in order before any command runs.
	Variables []*Variable
	// Commands run in order.
	Commands []*Command
}

// Project describes the project being configured.
type Project struct {
	Name            string
	MinimumRequired string
	// SourceDir and BinaryDir are absolute once a loader has resolved them.
	SourceDir string
	BinaryDir string
	// Generator names the build system backend, empty for none.
	Generator string
	Languages []string
	// Policies maps policy ids to "OLD" or "NEW".
	Policies map[string]string
}

// Target is the format-agnostic representation of a `target` block.
type Target struct {
	Name     string
	Kind     string
	AliasOf  string
	Location string
	Packages []string
	Imported bool
}

// ExportSet is a named export set and its initial members.
type ExportSet struct {
	Name    string
	Targets []string
}

// Test is the format-agnostic representation of a `test` block.
type Test struct {
	Name    string
	Command []string
	Labels  []string
}

// Variable is an ambient variable definition.
type Variable struct {
	Name  string
	Value string
}

// Command is one command invocation.
type Command struct {
	Name string
	Args []string
}

// Merge appends other's definitions to m. At most one of them may declare the
// project.
func (m *Model) Merge(other *Model) error {
	if other.Project != nil {
		if m.Project != nil {
			return fmt.Errorf("project %q declared more than once", other.Project.Name)
		}
		m.Project = other.Project
	}
	m.Targets = append(m.Targets, other.Targets...)
	m.ExportSets = append(m.ExportSets, other.ExportSets...)
	m.Tests = append(m.Tests, other.Tests...)
	m.Variables = append(m.Variables, other.Variables...)
	m.Commands = append(m.Commands, other.Commands...)
	return nil
}

// ResolveDirs makes the project directories absolute, relative to base. An
// empty source directory is base itself; an empty binary directory is
// "build" under the source directory.
func (p *Project) ResolveDirs(base string) {
	if p.SourceDir == "" {
		p.SourceDir = base
	} else if !filepath.IsAbs(p.SourceDir) {
		p.SourceDir = filepath.Join(base, p.SourceDir)
	}
	if p.BinaryDir == "" {
		p.BinaryDir = filepath.Join(p.SourceDir, "build")
	} else if !filepath.IsAbs(p.BinaryDir) {
		p.BinaryDir = filepath.Join(base, p.BinaryDir)
	}
	p.SourceDir = filepath.Clean(p.SourceDir)
	p.BinaryDir = filepath.Clean(p.BinaryDir)
}

// Validate checks the model is complete enough to configure.
func (m *Model) Validate() error {
	if m.Project == nil {
		return fmt.Errorf("no project declared")
	}
	if m.Project.Name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	for _, c := range m.Commands {
		if c.Name == "" {
			return fmt.Errorf("command without a name")
		}
	}
	return nil
}
