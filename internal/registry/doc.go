// Package registry maps command names used in project files to the Go
// commands that implement them.
//
// Modules register their commands at startup; the registry is then
// validated against the loaded project so that a project naming a command
// nobody registered fails before the configure pass starts.
package registry
