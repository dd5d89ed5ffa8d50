// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/buildgen/internal/config"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

func (l *Loader) translate(ctx context.Context, root *fileRoot, evalCtx *hcl.EvalContext) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
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
		val, diags := v.Value.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("variable '%s': %w", v.Name, diags)
		}
		s, err := valueToString(val)
		if err != nil {
			return nil, fmt.Errorf("variable '%s': %w", v.Name, err)
		}
		m.Variables = append(m.Variables, &config.Variable{Name: v.Name, Value: s})
		defineVar(evalCtx, v.Name, s)
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
		args, err := commandArgs(c.Args, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("command '%s': %w", c.Name, err)
		}
		logger.Debug("Translated HCL command.", "command", c.Name, "args", args)
		m.Commands = append(m.Commands, &config.Command{Name: c.Name, Args: args})
	}
	return m, nil
}

func commandArgs(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	// An omitted optional attribute decodes to a zero-width expression.
	if r := expr.Range(); r.End.Byte <= r.Start.Byte {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return valueToList(val)
}

func defineVar(evalCtx *hcl.EvalContext, name, value string) {
	vars := evalCtx.Variables["var"].AsValueMap()
	if vars == nil {
		vars = make(map[string]cty.Value)
	}
	vars[name] = cty.StringVal(value)
	evalCtx.Variables["var"] = cty.ObjectVal(vars)
}
