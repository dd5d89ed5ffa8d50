// Package yaml_adapter provides the YAML implementation of the config.Loader
// interface.
package yaml_adapter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildgen/internal/config"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/fsutil"
	"gopkg.in/yaml.v3"
)

type fileRoot struct {
	Project    *projectDoc    `yaml:"project"`
	Variables  []variableDoc  `yaml:"variables"`
	Targets    []targetDoc    `yaml:"targets"`
	ExportSets []exportSetDoc `yaml:"export_sets"`
	Tests      []testDoc      `yaml:"tests"`
	Commands   []commandDoc   `yaml:"commands"`
}

type projectDoc struct {
	Name            string            `yaml:"name"`
	MinimumRequired string            `yaml:"minimum_required"`
	SourceDir       string            `yaml:"source_dir"`
	BinaryDir       string            `yaml:"binary_dir"`
	Generator       string            `yaml:"generator"`
	Languages       []string          `yaml:"languages"`
	Policies        map[string]string `yaml:"policies"`
}

type variableDoc struct {
	Name  string    `yaml:"name"`
	Value yaml.Node `yaml:"value"`
}

type targetDoc struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	AliasOf  string   `yaml:"alias_of"`
	Location string   `yaml:"location"`
	Packages []string `yaml:"packages"`
	Imported bool     `yaml:"imported"`
}

type exportSetDoc struct {
	Name    string   `yaml:"name"`
	Targets []string `yaml:"targets"`
}

type testDoc struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Labels  []string `yaml:"labels"`
}

type commandDoc struct {
	Name string      `yaml:"name"`
	Args []yaml.Node `yaml:"args"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .yaml and .yml file under paths in lexical order and
// merges them into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	model := &config.Model{}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		files, err := fsutil.FindFilesByExtension(path, ".yaml", ".yml")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			part, err := loadFile(file)
			if err != nil {
				return nil, err
			}
			if err := model.Merge(part); err != nil {
				return nil, fmt.Errorf("in YAML file %s: %w", file, err)
			}
		}
	}

	logger.Debug("YAML loading complete.",
		"targets", len(model.Targets), "tests", len(model.Tests),
		"variables", len(model.Variables), "commands", len(model.Commands))
	return model, nil
}

func loadFile(file string) (*config.Model, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing YAML file %s: %w", file, err)
	}

	m, err := translate(&root)
	if err != nil {
		return nil, fmt.Errorf("in YAML file %s: %w", file, err)
	}
	if m.Project != nil {
		m.Project.ResolveDirs(filepath.Dir(file))
	}
	return m, nil
}

func translate(root *fileRoot) (*config.Model, error) {
	m := &config.Model{}
	if p := root.Project; p != nil {
		m.Project = &config.Project{
			Name:            p.Name,
			MinimumRequired: p.MinimumRequired,
			SourceDir:       p.SourceDir,
			BinaryDir:       p.BinaryDir,
			Generator:       p.Generator,
			Languages:       p.Languages,
			Policies:        p.Policies,
		}
	}
	for _, v := range root.Variables {
		s, err := nodeToString(&v.Value)
		if err != nil {
			return nil, fmt.Errorf("variable '%s': %w", v.Name, err)
		}
		m.Variables = append(m.Variables, &config.Variable{Name: v.Name, Value: s})
	}
	for _, t := range root.Targets {
		m.Targets = append(m.Targets, &config.Target{
			Name:     t.Name,
			Kind:     t.Kind,
			AliasOf:  t.AliasOf,
			Location: t.Location,
			Packages: t.Packages,
			Imported: t.Imported,
		})
	}
	for _, s := range root.ExportSets {
		m.ExportSets = append(m.ExportSets, &config.ExportSet{Name: s.Name, Targets: s.Targets})
	}
	for _, t := range root.Tests {
		m.Tests = append(m.Tests, &config.Test{Name: t.Name, Command: t.Command, Labels: t.Labels})
	}
	for _, c := range root.Commands {
		var args []string
		for i := range c.Args {
			s, err := nodeToString(&c.Args[i])
			if err != nil {
				return nil, fmt.Errorf("command '%s': %w", c.Name, err)
			}
			args = append(args, s)
		}
		m.Commands = append(m.Commands, &config.Command{Name: c.Name, Args: args})
	}
	return m, nil
}

// nodeToString renders a YAML value the way ambient variables store it:
// booleans become ON or OFF, sequences become ";"-separated lists.
func nodeToString(n *yaml.Node) (string, error) {
	switch n.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return "", nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return "", err
			}
			if b {
				return "ON", nil
			}
			return "OFF", nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			s, err := nodeToString(c)
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		return strings.Join(items, ";"), nil
	case yaml.AliasNode:
		return nodeToString(n.Alias)
	}
	return "", fmt.Errorf("line %d: cannot use a mapping here", n.Line)
}
