// Package ctest_test implements ctest_test(): it runs the tests the project
// declares, in declaration order, from the build directory.
package ctest_test

import (
	"bytes"
	"context"
	"regexp"

	"github.com/specialistvlad/buildgen/internal/argparse"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/dispatch"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/project"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the ctest_test command.
func (m *Module) Register(r *registry.Registry) {
	r.Register(dispatch.Adapt[Arguments](&Command{}))
}

// Arguments are the keywords of ctest_test().
type Arguments struct {
	dispatch.HandlerArguments
	Include       string
	Exclude       string
	StopOnFailure bool

	include *regexp.Regexp
	exclude *regexp.Regexp
}

// Command is the ctest_test command.
type Command struct{}

// Name implements dispatch.HandlerCommand.
func (c *Command) Name() string { return "ctest_test" }

// Parser implements dispatch.HandlerCommand.
func (c *Command) Parser([]string) *argparse.Parser[Arguments] {
	return dispatch.NewHandlerParser[Arguments]().
		String("INCLUDE", func(a *Arguments) *string { return &a.Include }).
		String("EXCLUDE", func(a *Arguments) *string { return &a.Exclude }).
		Flag("STOP_ON_FAILURE", func(a *Arguments) *bool { return &a.StopOnFailure })
}

// CheckArguments compiles the test name filters.
func (c *Command) CheckArguments(_ context.Context, _ *session.Session, args *Arguments) error {
	var err error
	if args.Include != "" {
		if args.include, err = regexp.Compile(args.Include); err != nil {
			return errs.Usage("INCLUDE given invalid regular expression \"%s\".", args.Include)
		}
	}
	if args.Exclude != "" {
		if args.exclude, err = regexp.Compile(args.Exclude); err != nil {
			return errs.Usage("EXCLUDE given invalid regular expression \"%s\".", args.Exclude)
		}
	}
	return nil
}

// InitializeHandler implements dispatch.HandlerCommand.
func (c *Command) InitializeHandler(_ context.Context, sess *session.Session, args *Arguments) (dispatch.Handler, error) {
	var selected []*project.Test
	for _, t := range sess.Project.Tests() {
		if args.include != nil && !args.include.MatchString(t.Name) {
			continue
		}
		if args.exclude != nil && args.exclude.MatchString(t.Name) {
			continue
		}
		selected = append(selected, t)
	}
	return &Handler{
		sess:          sess,
		tests:         selected,
		stopOnFailure: args.StopOnFailure,
		quiet:         args.Quiet,
	}, nil
}

// ProcessAdditionalValues implements dispatch.HandlerCommand.
func (c *Command) ProcessAdditionalValues(context.Context, *session.Session, *Arguments, dispatch.Handler) {}

// Result is the outcome of one test.
type Result struct {
	Name     string
	ExitCode int
	Passed   bool
	Output   string
}

// Handler runs the selected tests.
type Handler struct {
	sess          *session.Session
	tests         []*project.Test
	stopOnFailure bool
	quiet         bool

	Results []Result
}

// Process implements dispatch.Handler.
func (h *Handler) Process(ctx context.Context) (int, error) {
	logger := ctxlog.FromContext(ctx).With("command", "ctest_test")
	dash := h.sess.Dashboard

	failed := 0
	for _, t := range h.tests {
		var out bytes.Buffer
		code, err := h.sess.Runner.Run(ctx, dash.BuildDir, t.Command, dash.TimeLimit, &out)
		res := Result{Name: t.Name, ExitCode: code, Passed: err == nil && code == 0, Output: out.String()}
		h.Results = append(h.Results, res)

		if !res.Passed {
			failed++
			logger.Warn("Test failed.", "test", t.Name, "exit_code", code, "error", err)
			if h.stopOnFailure {
				break
			}
			continue
		}
		if !h.quiet {
			logger.Info("Test passed.", "test", t.Name)
		}
	}

	if !h.quiet {
		logger.Info("Tests finished.", "total", len(h.Results), "failed", failed)
	}
	if failed > 0 {
		return -1, nil
	}
	return 0, nil
}
