package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Project    *projectBlock     `hcl:"project,block"`
	Variables  []*variableBlock  `hcl:"variable,block"`
	Targets    []*targetBlock    `hcl:"target,block"`
	ExportSets []*exportSetBlock `hcl:"export_set,block"`
	Tests      []*testBlock      `hcl:"test,block"`
	Commands   []*commandBlock   `hcl:"command,block"`
}

type projectBlock struct {
	Name            string            `hcl:"name,label"`
	MinimumRequired string            `hcl:"minimum_required,optional"`
	SourceDir       string            `hcl:"source_dir,optional"`
	BinaryDir       string            `hcl:"binary_dir,optional"`
	Generator       string            `hcl:"generator,optional"`
	Languages       []string          `hcl:"languages,optional"`
	Policies        map[string]string `hcl:"policies,optional"`
}

type variableBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

type targetBlock struct {
	Name     string   `hcl:"name,label"`
	Kind     string   `hcl:"kind"`
	AliasOf  string   `hcl:"alias_of,optional"`
	Location string   `hcl:"location,optional"`
	Packages []string `hcl:"packages,optional"`
	Imported bool     `hcl:"imported,optional"`
}

type exportSetBlock struct {
	Name    string   `hcl:"name,label"`
	Targets []string `hcl:"targets,optional"`
}

type testBlock struct {
	Name    string   `hcl:"name,label"`
	Command []string `hcl:"command"`
	Labels  []string `hcl:"labels,optional"`
}

type commandBlock struct {
	Name string         `hcl:"name,label"`
	Args hcl.Expression `hcl:"args,optional"`
}
