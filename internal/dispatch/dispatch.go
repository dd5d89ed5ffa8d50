package dispatch

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/specialistvlad/buildgen/internal/argparse"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/fsutil"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
)

// Handler performs the work of a command once its configuration is known.
type Handler interface {
	// Process runs the handler and returns its status code.
	Process(ctx context.Context) (int, error)
}

// HandlerCommand is implemented by each ctest-style command. T is the
// command's argument struct, which embeds HandlerArguments.
type HandlerCommand[T any] interface {
	Name() string
	// Parser returns the keyword schema for this invocation. It receives
	// the raw arguments so a command can pick between signatures.
	Parser(raw []string) *argparse.Parser[T]
	// CheckArguments validates or normalizes the parsed arguments.
	CheckArguments(ctx context.Context, sess *session.Session, args *T) error
	// InitializeHandler builds the handler. Returning a nil handler and a
	// nil error reports a generic instantiation failure.
	InitializeHandler(ctx context.Context, sess *session.Session, args *T) (Handler, error)
	// ProcessAdditionalValues writes handler results back into the session.
	ProcessAdditionalValues(ctx context.Context, sess *session.Session, args *T, h Handler)
}

// Run executes cmd with raw arguments and reports the final lifecycle state
// alongside the error the caller should see.
func Run[T any, PT Arguments[T]](ctx context.Context, sess *session.Session, cmd HandlerCommand[T], raw []string) (State, error) {
	guard := newErrorStateGuard(sess)
	logger := ctxlog.FromContext(ctx).With("command", cmd.Name())

	var args T
	common := PT(&args).Common()
	res := cmd.Parser(raw).Parse(raw, &args)
	if common.CaptureCMakeError != "" {
		guard.captureInto(common.CaptureCMakeError)
	}

	state, err := execute[T, PT](ctx, sess, cmd, &args, res)
	logger.Debug("Command lifecycle ended.", "state", state.String())

	err = guard.finish(ctx, cmd.Name(), err)
	switch {
	case common.CaptureCMakeError != "" && sess.Vars.GetSafe(common.CaptureCMakeError) == "-1":
		state = AbortedWithCapture
	case err != nil:
		state = Failed
	}
	return state, err
}

// Execute is Run without the state.
func Execute[T any, PT Arguments[T]](ctx context.Context, sess *session.Session, cmd HandlerCommand[T], raw []string) error {
	_, err := Run[T, PT](ctx, sess, cmd, raw)
	return err
}

func execute[T any, PT Arguments[T]](ctx context.Context, sess *session.Session, cmd HandlerCommand[T], args *T, res argparse.Result) (State, error) {
	common := PT(args).Common()

	if err := cmd.CheckArguments(ctx, sess, args); err != nil {
		return Parsed, err
	}
	if kw, dup := res.DuplicateKeyword(); dup {
		return Parsed, errs.Usage("Called with more than one value for %s", kw)
	}
	if len(res.Unknown) > 0 {
		return Parsed, errs.Usage("called with unknown argument \"%s\".", res.Unknown[0])
	}

	if err := configure(ctx, sess, common); err != nil {
		return Validated, err
	}

	handler, err := cmd.InitializeHandler(ctx, sess, args)
	if err != nil {
		return Configured, err
	}
	if handler == nil {
		return Configured, errs.Newf(errs.KindConfiguration, "Cannot instantiate test handler %s", cmd.Name())
	}

	restore, err := fsutil.PushWorkingDirectory(sess.Dashboard.BuildDir)
	if err != nil {
		return Configured, errs.Wrap(errs.KindConfiguration, "", err)
	}
	status, err := handler.Process(ctx)
	if rerr := restore(); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return Executing, err
	}

	if common.ReturnValue != "" {
		sess.Vars.Define(common.ReturnValue, strconv.Itoa(status))
	}
	cmd.ProcessAdditionalValues(ctx, sess, args, handler)
	return Finalized, nil
}

// configure resolves the dashboard directories and re-reads the time limit.
func configure(ctx context.Context, sess *session.Session, common *HandlerArguments) error {
	vars := sess.Vars
	dash := sess.Dashboard
	logger := ctxlog.FromContext(ctx)

	if configType, ok := vars.Get("CTEST_CONFIGURATION_TYPE"); ok {
		dash.ConfigType = configType
	}

	buildDir := common.Build
	if buildDir == "" {
		buildDir = vars.GetSafe("CTEST_BINARY_DIRECTORY")
	}
	if buildDir == "" {
		return errs.Configuration("CTEST_BINARY_DIRECTORY not set")
	}
	abs, err := filepath.Abs(buildDir)
	if err != nil {
		return errs.Wrap(errs.KindConfiguration, "resolve build directory", err)
	}
	dash.BuildDir = abs

	sourceDir := common.Source
	if sourceDir == "" {
		sourceDir = vars.GetSafe("CTEST_SOURCE_DIRECTORY")
	}
	dash.SourceDir = ""
	if sourceDir != "" {
		if abs, err := filepath.Abs(sourceDir); err == nil {
			dash.SourceDir = abs
		}
	}
	logger.Debug("Dashboard directories resolved.", "build", dash.BuildDir, "source", dash.SourceDir)

	if changeID, ok := vars.Get("CTEST_CHANGE_ID"); ok {
		dash.Set("ChangeId", changeID)
	}

	dash.TimeLimit = 0
	if limit, ok := vars.Nonempty("CTEST_TIME_LIMIT"); ok {
		if seconds, err := strconv.ParseFloat(limit, 64); err == nil && seconds > 0 {
			dash.TimeLimit = time.Duration(seconds * float64(time.Second))
		}
	}
	return nil
}

type adapted[T any, PT Arguments[T]] struct {
	cmd HandlerCommand[T]
}

func (a adapted[T, PT]) Name() string { return a.cmd.Name() }

func (a adapted[T, PT]) Execute(ctx context.Context, sess *session.Session, args []string) error {
	return Execute[T, PT](ctx, sess, a.cmd, args)
}

// Adapt turns a handler command into a registry command.
func Adapt[T any, PT Arguments[T]](cmd HandlerCommand[T]) registry.Command {
	return adapted[T, PT]{cmd: cmd}
}
