package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/specialistvlad/buildgen/internal/config"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	model    *config.Model
	session  *session.Session
}

// NewApp loads the project files, registers the command modules and checks
// that every command the project invokes is known. With no modules given,
// the core modules are registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if appConfig.BinaryDir != "" {
		dir, err := filepath.Abs(appConfig.BinaryDir)
		if err != nil {
			return nil, fmt.Errorf("resolve binary directory: %w", err)
		}
		model.Project.BinaryDir = dir
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"project", model.Project.Name, "commands", len(model.Commands))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	invoked := make([]string, 0, len(model.Commands))
	for _, c := range model.Commands {
		invoked = append(invoked, c.Name)
	}
	if err := reg.Validate(invoked); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   appConfig,
		model:    model,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded project model.
func (a *App) Model() *config.Model {
	return a.model
}

// Session returns the session of the last Run, nil before the first.
func (a *App) Session() *session.Session {
	return a.session
}
