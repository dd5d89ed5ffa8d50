package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ProjectPath is a project file or a directory of project files.
	ProjectPath string
	// BinaryDir overrides the binary directory the project declares.
	BinaryDir string
	// Format selects the project file loader: auto, hcl or yaml.
	Format string
	// Registry overrides the package registry backend of the environment.
	Registry string

	LogFormat string
	LogLevel  string

	Env EnvConfig
}

// EnvConfig holds the settings read from the process environment.
type EnvConfig struct {
	Home                string `env:"HOME"`
	PackageRegistry     string `env:"BUILDGEN_PACKAGE_REGISTRY" envDefault:"auto"`
	PackageRegistryPath string `env:"BUILDGEN_PACKAGE_REGISTRY_PATH"`
	CMakeCommand        string `env:"BUILDGEN_CMAKE_COMMAND" envDefault:"cmake"`
}

// LoadEnv reads EnvConfig from the environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectPath == "" {
		return nil, errors.New("ProjectPath is a required configuration field and cannot be empty")
	}

	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case "":
		cfg.Format = FormatAuto
	case FormatAuto, FormatHCL, FormatYAML:
	default:
		return nil, fmt.Errorf("invalid format %q: must be 'auto', 'hcl' or 'yaml'", cfg.Format)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.Env.CMakeCommand == "" {
		cfg.Env.CMakeCommand = "cmake"
	}
	return &cfg, nil
}

// RegistryKind returns the package registry backend to open.
func (c *Config) RegistryKind() string {
	if c.Registry != "" {
		return c.Registry
	}
	return c.Env.PackageRegistry
}
