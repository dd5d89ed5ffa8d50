package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/pkgregistry"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/project"
	"github.com/specialistvlad/buildgen/internal/session"
)

// ErrConfigureFailed is returned when a command left the session error flag
// set without returning an error itself.
var ErrConfigureFailed = errors.New("configuring incomplete, errors occurred")

// Run performs one configure pass: it seeds the session from the model, runs
// the commands in order and writes the bound export files. The first command
// that fails stops the pass; no export files are written in that case.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	sess, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	a.session = sess
	if sess.PackageRegistry != nil {
		defer func() {
			if err := sess.PackageRegistry.Close(); err != nil {
				a.logger.Warn("Package registry did not close cleanly.", "error", err)
			}
		}()
	}

	for i, c := range a.model.Commands {
		cmd, ok := a.registry.Lookup(c.Name)
		if !ok {
			return fmt.Errorf("unknown command '%s'", c.Name)
		}
		a.logger.Debug("Executing command.", "index", i, "command", c.Name, "args", c.Args)

		if err := cmd.Execute(ctx, sess, c.Args); err != nil {
			sess.SetErrorOccurred(true)
			a.logger.Error("Command failed.", "command", c.Name, "error", err)
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		if sess.ErrorOccurred() {
			a.logger.Error("Command reported errors.", "command", c.Name)
			return fmt.Errorf("%s: %w", c.Name, ErrConfigureFailed)
		}
	}

	if err := sess.ExportFiles.GenerateAll(ctx, sess.GenerateContext()); err != nil {
		return fmt.Errorf("generate export files: %w", err)
	}
	a.logger.Info("Configure pass finished.",
		"project", sess.Project.Name, "commands", len(a.model.Commands), "export_files", len(sess.ExportFiles.Paths()))
	return nil
}

func (a *App) newSession(ctx context.Context) (*session.Session, error) {
	p := a.model.Project

	proj := project.New(p.Name, p.SourceDir, p.BinaryDir)
	for _, t := range a.model.Targets {
		kind, err := project.ParseKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("target '%s': %w", t.Name, err)
		}
		err = proj.AddTarget(&project.Target{
			Name:     t.Name,
			Kind:     kind,
			AliasOf:  t.AliasOf,
			Location: t.Location,
			Packages: t.Packages,
			Imported: t.Imported,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, t := range a.model.Tests {
		proj.AddTest(&project.Test{Name: t.Name, Command: t.Command, Labels: t.Labels})
	}

	vars := ambient.New()
	vars.Define("PROJECT_NAME", p.Name)
	vars.Define("CMAKE_SOURCE_DIR", p.SourceDir)
	vars.Define("CMAKE_BINARY_DIR", p.BinaryDir)
	vars.Define("CMAKE_CURRENT_SOURCE_DIR", p.SourceDir)
	vars.Define("CMAKE_CURRENT_BINARY_DIR", p.BinaryDir)
	vars.Define("CMAKE_COMMAND", a.config.Env.CMakeCommand)
	if p.MinimumRequired != "" {
		vars.Define("CMAKE_MINIMUM_REQUIRED_VERSION", p.MinimumRequired)
	}
	for _, v := range a.model.Variables {
		vars.Define(v.Name, v.Value)
	}

	overrides := make(map[policy.ID]policy.Status, len(p.Policies))
	for raw, setting := range p.Policies {
		id, err := policy.Lookup(raw)
		if err != nil {
			return nil, err
		}
		status, ok := policy.ParseStatus(setting)
		if !ok {
			return nil, fmt.Errorf("policy %s: invalid setting %q, must be OLD or NEW", id, setting)
		}
		overrides[id] = status
	}

	sess := session.New(proj, vars, policy.NewContext(p.MinimumRequired, overrides, vars))
	sess.CMakeCommand = a.config.Env.CMakeCommand

	if p.Generator != "" {
		gen, err := sess.Generators.New(p.Generator)
		if err != nil {
			return nil, err
		}
		if err := gen.EnableLanguage(p.Languages, vars, false); err != nil {
			return nil, err
		}
		gen.CreateLocalGenerator(p.BinaryDir, nil)
		sess.Generator = gen
		a.logger.Debug("Generator enabled.", "generator", gen.Name(), "languages", p.Languages)
	}

	for _, s := range a.model.ExportSets {
		set := sess.ExportSets.GetOrCreate(s.Name)
		if err := set.AddTargets(proj, s.Targets); err != nil {
			return nil, fmt.Errorf("export set '%s': %w", s.Name, err)
		}
	}

	backend, err := pkgregistry.Open(pkgregistry.Kind(a.config.RegistryKind()), a.config.Env.PackageRegistryPath, a.config.Env.Home)
	if err != nil {
		return nil, err
	}
	sess.PackageRegistry = pkgregistry.New(backend)

	ctxlog.FromContext(ctx).Debug("Session seeded.",
		"targets", len(proj.Targets()), "tests", len(proj.Tests()), "variables", len(vars.Names()))
	return sess, nil
}
