// Package ctest_build implements ctest_build(): it resolves the build command
// of the project, runs it and reports how many errors and warnings the build
// printed.
package ctest_build

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/kballard/go-shellquote"
	"github.com/specialistvlad/buildgen/internal/argparse"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/dispatch"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/fsutil"
	"github.com/specialistvlad/buildgen/internal/generator"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the ctest_build command.
func (m *Module) Register(r *registry.Registry) {
	r.Register(dispatch.Adapt[Arguments](&Command{}))
}

// Arguments are the keywords of ctest_build().
type Arguments struct {
	dispatch.HandlerArguments
	NumberErrors   string
	NumberWarnings string
	Target         string
	Configuration  string
	Flags          string
	ProjectName    string
	ParallelLevel  string
}

// Command is the ctest_build command.
type Command struct{}

// Name implements dispatch.HandlerCommand.
func (c *Command) Name() string { return "ctest_build" }

// Parser implements dispatch.HandlerCommand.
func (c *Command) Parser([]string) *argparse.Parser[Arguments] {
	return dispatch.NewHandlerParser[Arguments]().
		String("NUMBER_ERRORS", func(a *Arguments) *string { return &a.NumberErrors }).
		String("NUMBER_WARNINGS", func(a *Arguments) *string { return &a.NumberWarnings }).
		String("TARGET", func(a *Arguments) *string { return &a.Target }).
		String("CONFIGURATION", func(a *Arguments) *string { return &a.Configuration }).
		String("FLAGS", func(a *Arguments) *string { return &a.Flags }).
		String("PROJECT_NAME", func(a *Arguments) *string { return &a.ProjectName }).
		String("PARALLEL_LEVEL", func(a *Arguments) *string { return &a.ParallelLevel })
}

// CheckArguments implements dispatch.HandlerCommand.
func (c *Command) CheckArguments(context.Context, *session.Session, *Arguments) error {
	return nil
}

// InitializeHandler implements dispatch.HandlerCommand.
func (c *Command) InitializeHandler(ctx context.Context, sess *session.Session, args *Arguments) (dispatch.Handler, error) {
	logger := ctxlog.FromContext(ctx).With("command", c.Name())
	vars := sess.Vars

	makeCommand, ok := vars.Nonempty("CTEST_BUILD_COMMAND")
	if ok {
		logger.Debug("Using custom build command.", "command", makeCommand)
	} else {
		cmd, err := c.generatorCommand(sess, args)
		if err != nil {
			return nil, err
		}
		makeCommand = cmd
	}
	sess.Dashboard.Set("MakeCommand", makeCommand)

	if v, ok := vars.Get("CTEST_USE_LAUNCHERS"); ok {
		sess.Dashboard.Set("UseLaunchers", v)
	}
	if v, ok := vars.Get("CTEST_LABELS_FOR_SUBPROJECTS"); ok {
		sess.Dashboard.Set("LabelsForSubprojects", v)
	}

	argv, err := shellquote.Split(makeCommand)
	if err != nil {
		return nil, errs.Usage("could not parse build command \"%s\": %v", makeCommand, err)
	}
	return &Handler{
		sess:  sess,
		argv:  argv,
		quiet: args.Quiet,
	}, nil
}

// generatorCommand builds the command line from CTEST_CMAKE_GENERATOR.
func (c *Command) generatorCommand(sess *session.Session, args *Arguments) (string, error) {
	vars := sess.Vars
	name, ok := vars.Nonempty("CTEST_CMAKE_GENERATOR")
	if !ok {
		return "", errs.Configuration("has no project to build. If this is a \"built with CMake\" project, verify that CTEST_CMAKE_GENERATOR is set. Otherwise, set CTEST_BUILD_COMMAND to build the project with a custom command line.")
	}

	config := args.Configuration
	if config == "" {
		config = vars.GetSafe("CTEST_BUILD_CONFIGURATION")
	}
	if config == "" {
		config = sess.Dashboard.ConfigType
	}
	if config == "" {
		config = "Release"
	}

	flags := args.Flags
	if flags == "" {
		flags = vars.GetSafe("CTEST_BUILD_FLAGS")
	}
	target := args.Target
	if target == "" {
		target = vars.GetSafe("CTEST_BUILD_TARGET")
	}

	gen, err := sess.Generators.New(name)
	if err != nil {
		return "", err
	}
	return gen.GenerateBuildCommand(generator.BuildRequest{
		CMakeCommand: sess.CMakeCommand,
		Target:       target,
		Config:       config,
		Parallel:     args.ParallelLevel,
		NativeFlags:  flags,
		IgnoreErrors: sess.Policies.IgnoreErrors(),
	}), nil
}

// ProcessAdditionalValues implements dispatch.HandlerCommand.
func (c *Command) ProcessAdditionalValues(_ context.Context, sess *session.Session, args *Arguments, h dispatch.Handler) {
	handler, ok := h.(*Handler)
	if !ok {
		return
	}
	if args.NumberErrors != "" {
		sess.Vars.Define(args.NumberErrors, strconv.Itoa(handler.Errors))
	}
	if args.NumberWarnings != "" {
		sess.Vars.Define(args.NumberWarnings, strconv.Itoa(handler.Warnings))
	}
}

var (
	errorPattern   = regexp.MustCompile(`(^|[^A-Za-z])([Ee]rror|ERROR)[ \t]*[:\[]|^[Bb]us [Ee]rror|^[Ss]egmentation [Vv]iolation|: fatal error`)
	warningPattern = regexp.MustCompile(`([Ww]arning|WARNING)[ \t]*[:\[]`)
)

// Handler runs the build command.
type Handler struct {
	sess  *session.Session
	argv  []string
	quiet bool

	Errors   int
	Warnings int
}

// Process implements dispatch.Handler.
func (h *Handler) Process(ctx context.Context) (int, error) {
	logger := ctxlog.FromContext(ctx).With("command", "ctest_build")
	dash := h.sess.Dashboard
	if !h.quiet {
		logger.Info("Run build command.", "argv", h.argv, "dir", dash.BuildDir)
	}

	var out bytes.Buffer
	code, err := h.sess.Runner.Run(ctx, dash.BuildDir, h.argv, dash.TimeLimit, &out)

	scanner := bufio.NewScanner(bytes.NewReader(out.Bytes()))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case errorPattern.MatchString(line):
			h.Errors++
		case warningPattern.MatchString(line):
			h.Warnings++
		}
	}

	logPath := filepath.Join(dash.BuildDir, "Testing", "Temporary", "LastBuild.log")
	if werr := fsutil.WriteFileAtomic(logPath, out.Bytes(), 0o644); werr != nil {
		logger.Warn("Could not write build log.", "path", logPath, "error", werr)
	}

	if err != nil {
		h.Errors++
		logger.Error("Build command could not run.", "error", err)
		return -1, nil
	}
	if !h.quiet {
		logger.Info("Build finished.", "exit_code", code, "errors", h.Errors, "warnings", h.Warnings)
	}
	if code != 0 || h.Errors > 0 {
		return -1, nil
	}
	return 0, nil
}
