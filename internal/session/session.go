// Package session holds the state of one configure pass: the ambient
// variables, the policy snapshot, the project graph, export bookkeeping and
// the global error flag commands save and restore around themselves.
package session

import (
	"context"

	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/exportgen"
	"github.com/specialistvlad/buildgen/internal/exportset"
	"github.com/specialistvlad/buildgen/internal/generator"
	"github.com/specialistvlad/buildgen/internal/pkgregistry"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/project"
)

// MessageType classifies a diagnostic issued during the pass.
type MessageType int

const (
	Warning MessageType = iota
	AuthorWarning
	FatalError
)

func (t MessageType) String() string {
	switch t {
	case AuthorWarning:
		return "author warning"
	case FatalError:
		return "fatal error"
	default:
		return "warning"
	}
}

// Message is a recorded diagnostic.
type Message struct {
	Type MessageType
	Text string
}

// Session is the mutable state of a configure pass. It is used from a single
// goroutine; commands run strictly one after another.
type Session struct {
	Vars        *ambient.Store
	Policies    *policy.Context
	Project     *project.Project
	ExportSets  *exportset.Map
	ExportFiles *exportgen.Registry
	Generators  *generator.Catalog
	// Generator is the global generator of the project, nil when the project
	// does not name one.
	Generator       generator.Generator
	PackageRegistry *pkgregistry.Registry
	Runner          Runner
	Dashboard       *Dashboard
	// CMakeCommand is the cmake executable used in generated build commands.
	CMakeCommand string

	errorOccurred bool
	messages      []Message
}

// New creates a session with empty export bookkeeping and the built-in
// generator catalog.
func New(proj *project.Project, vars *ambient.Store, policies *policy.Context) *Session {
	return &Session{
		Vars:         vars,
		Policies:     policies,
		Project:      proj,
		ExportSets:   exportset.NewMap(),
		ExportFiles:  exportgen.NewRegistry(),
		Generators:   generator.NewCatalog(),
		Runner:       ExecRunner{},
		Dashboard:    NewDashboard(),
		CMakeCommand: "cmake",
	}
}

// ErrorOccurred reports the global error flag.
func (s *Session) ErrorOccurred() bool {
	return s.errorOccurred
}

// SetErrorOccurred sets or clears the global error flag.
func (s *Session) SetErrorOccurred(v bool) {
	s.errorOccurred = v
}

// IssueMessage logs and records a diagnostic. Fatal errors set the global
// error flag.
func (s *Session) IssueMessage(ctx context.Context, typ MessageType, text string) {
	logger := ctxlog.FromContext(ctx)
	switch typ {
	case FatalError:
		s.errorOccurred = true
		logger.Error(text)
	default:
		logger.Warn(text, "type", typ.String())
	}
	s.messages = append(s.messages, Message{Type: typ, Text: text})
}

// Messages returns the diagnostics issued so far.
func (s *Session) Messages() []Message {
	return s.messages
}

// Configurations returns the build configurations exported files describe.
// A project without configurations yields the empty configuration.
func (s *Session) Configurations() []string {
	if types := s.Vars.List("CMAKE_CONFIGURATION_TYPES"); len(types) > 0 {
		return types
	}
	return []string{s.Vars.GetSafe("CMAKE_BUILD_TYPE")}
}

// CurrentBinaryDir returns CMAKE_CURRENT_BINARY_DIR, or the project binary
// directory when unset.
func (s *Session) CurrentBinaryDir() string {
	if dir, ok := s.Vars.Nonempty("CMAKE_CURRENT_BINARY_DIR"); ok {
		return dir
	}
	return s.Project.BinaryDir
}

// GenerateContext returns the inputs export file generation reads.
func (s *Session) GenerateContext() exportgen.GenerateContext {
	return exportgen.GenerateContext{Project: s.Project, Policies: s.Policies}
}
