// Package config defines the format-agnostic model of a project file, along
// with the Loader interface the format-specific adapters implement.
//
// The config.Model is the single source of truth the app uses to seed the
// session: the project, its targets, tests and export sets, the ambient
// variables and the ordered list of commands to execute. Concrete loaders for
// HCL and YAML are provided in separate packages.
package config
