package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/buildgen/internal/session"
)

// Command is an auxiliary command invocable from a project file.
type Command interface {
	// Name is the command name, matched case-insensitively.
	Name() string
	// Execute runs the command with already tokenized arguments.
	Execute(ctx context.Context, sess *session.Session, args []string) error
}

// Module is the interface that all command modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered commands of one application instance.
type Registry struct {
	commands map[string]Command
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Registering a name twice is a programming error.
func (r *Registry) Register(cmd Command) {
	name := strings.ToLower(cmd.Name())
	if _, exists := r.commands[name]; exists {
		panic(fmt.Sprintf("command with name '%s' already registered", name))
	}
	slog.Debug("Registering command.", "name", name)
	r.commands[name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every invoked command is registered.
func (r *Registry) Validate(invoked []string) error {
	var problems []string
	for _, name := range invoked {
		if _, ok := r.Lookup(name); !ok {
			problems = append(problems, fmt.Sprintf("unknown command '%s'", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
