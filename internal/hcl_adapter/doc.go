// Package hcl_adapter provides the HCL implementation of the config.Loader
// interface. It parses project files, evaluates variable and command
// argument expressions, and translates the result into the config model.
package hcl_adapter
