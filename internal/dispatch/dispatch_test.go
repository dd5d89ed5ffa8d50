package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/argparse"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/project"
	"github.com/specialistvlad/buildgen/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArgs struct {
	HandlerArguments
	Count string
}

type fakeHandler struct {
	status int
	err    error
	fatal  bool
	sess   *session.Session
	cwd    string
}

func (h *fakeHandler) Process(ctx context.Context) (int, error) {
	h.cwd, _ = os.Getwd()
	if h.fatal {
		h.sess.IssueMessage(ctx, session.FatalError, "handler reported a problem")
	}
	return h.status, h.err
}

type fakeCommand struct {
	handler  *fakeHandler
	initErr  error
	nilInit  bool
	checkErr error
}

func (c *fakeCommand) Name() string { return "ctest_fake" }

func (c *fakeCommand) Parser([]string) *argparse.Parser[fakeArgs] {
	return NewHandlerParser[fakeArgs]().
		String("COUNT", func(a *fakeArgs) *string { return &a.Count })
}

func (c *fakeCommand) CheckArguments(context.Context, *session.Session, *fakeArgs) error {
	return c.checkErr
}

func (c *fakeCommand) InitializeHandler(_ context.Context, sess *session.Session, _ *fakeArgs) (Handler, error) {
	if c.initErr != nil || c.nilInit {
		return nil, c.initErr
	}
	c.handler.sess = sess
	return c.handler, nil
}

func (c *fakeCommand) ProcessAdditionalValues(_ context.Context, sess *session.Session, args *fakeArgs, h Handler) {
	if args.Count != "" {
		sess.Vars.Define(args.Count, "7")
	}
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	vars := ambient.New()
	dir := t.TempDir()
	vars.Define("CTEST_BINARY_DIRECTORY", dir)
	return session.New(project.New("demo", dir, dir), vars, policy.NewContext("3.20", nil, vars))
}

func TestRun_Success(t *testing.T) {
	sess := newTestSession(t)
	cmd := &fakeCommand{handler: &fakeHandler{status: 3}}

	state, err := Run[fakeArgs](context.Background(), sess, cmd,
		[]string{"RETURN_VALUE", "rv", "COUNT", "n", "CAPTURE_CMAKE_ERROR", "cap"})
	require.NoError(t, err)

	assert.Equal(t, Finalized, state)
	assert.Equal(t, "3", sess.Vars.GetSafe("rv"))
	assert.Equal(t, "7", sess.Vars.GetSafe("n"))
	assert.Equal(t, "0", sess.Vars.GetSafe("cap"))
	assert.False(t, sess.ErrorOccurred())

	buildDir, err := filepath.EvalSymlinks(sess.Vars.GetSafe("CTEST_BINARY_DIRECTORY"))
	require.NoError(t, err)
	handlerDir, err := filepath.EvalSymlinks(cmd.handler.cwd)
	require.NoError(t, err)
	assert.Equal(t, buildDir, handlerDir, "the handler runs inside the build directory")
}

func TestRun_CaptureContract(t *testing.T) {
	failure := errs.Usage("boom")
	testCases := []struct {
		name    string
		cmd     func() *fakeCommand
		raw     []string
		initial bool
	}{
		{"unknown argument", func() *fakeCommand { return &fakeCommand{handler: &fakeHandler{}} }, []string{"BOGUS"}, false},
		{"handler error", func() *fakeCommand { return &fakeCommand{handler: &fakeHandler{err: failure}} }, nil, true},
		{"init error", func() *fakeCommand { return &fakeCommand{initErr: failure} }, nil, false},
		{"nil handler", func() *fakeCommand { return &fakeCommand{nilInit: true} }, nil, true},
		{"fatal message", func() *fakeCommand { return &fakeCommand{handler: &fakeHandler{fatal: true}} }, nil, false},
		{"check error", func() *fakeCommand { return &fakeCommand{checkErr: failure} }, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name+"/captured", func(t *testing.T) {
			sess := newTestSession(t)
			sess.SetErrorOccurred(tc.initial)

			raw := append([]string{"CAPTURE_CMAKE_ERROR", "V"}, tc.raw...)
			state, err := Run[fakeArgs](context.Background(), sess, tc.cmd(), raw)

			require.NoError(t, err, "a captured failure reports success")
			assert.Equal(t, "-1", sess.Vars.GetSafe("V"))
			assert.Equal(t, tc.initial, sess.ErrorOccurred(), "flag restored to its pre-call value")
			assert.Equal(t, AbortedWithCapture, state)
		})

		t.Run(tc.name+"/uncaptured", func(t *testing.T) {
			sess := newTestSession(t)
			sess.SetErrorOccurred(tc.initial)

			_, err := Run[fakeArgs](context.Background(), sess, tc.cmd(), tc.raw)

			assert.True(t, sess.ErrorOccurred(), "a failure leaves the error flag set")
			if tc.name != "fatal message" {
				require.Error(t, err)
			}
		})
	}
}

func TestRun_UncapturedSuccessKeepsInitialFlag(t *testing.T) {
	for _, initial := range []bool{false, true} {
		sess := newTestSession(t)
		sess.SetErrorOccurred(initial)

		_, err := Run[fakeArgs](context.Background(), sess, &fakeCommand{handler: &fakeHandler{}}, nil)
		require.NoError(t, err)
		assert.Equal(t, initial, sess.ErrorOccurred())
	}
}

func TestRun_ArgumentErrors(t *testing.T) {
	testCases := []struct {
		name string
		raw  []string
		msg  string
	}{
		{"unknown", []string{"QUIET", "stray"}, `called with unknown argument "stray".`},
		{"duplicate", []string{"BUILD", "a", "BUILD", "b"}, "Called with more than one value for BUILD"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sess := newTestSession(t)
			state, err := Run[fakeArgs](context.Background(), sess, &fakeCommand{handler: &fakeHandler{}}, tc.raw)
			require.Error(t, err)
			assert.EqualError(t, err, tc.msg)
			assert.Equal(t, errs.KindUsage, errs.KindOf(err))
			assert.Equal(t, Failed, state)
		})
	}
}

func TestRun_Configuration(t *testing.T) {
	t.Run("missing build directory", func(t *testing.T) {
		sess := newTestSession(t)
		sess.Vars.Unset("CTEST_BINARY_DIRECTORY")

		_, err := Run[fakeArgs](context.Background(), sess, &fakeCommand{handler: &fakeHandler{}}, nil)
		require.Error(t, err)
		assert.EqualError(t, err, "CTEST_BINARY_DIRECTORY not set")
		assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	})

	t.Run("explicit directories and ambient values", func(t *testing.T) {
		sess := newTestSession(t)
		build := t.TempDir()
		sess.Vars.Define("CTEST_CONFIGURATION_TYPE", "RelWithDebInfo")
		sess.Vars.Define("CTEST_CHANGE_ID", "42")
		sess.Vars.Define("CTEST_TIME_LIMIT", "1.5")

		_, err := Run[fakeArgs](context.Background(), sess, &fakeCommand{handler: &fakeHandler{}},
			[]string{"BUILD", build, "SOURCE", "/src"})
		require.NoError(t, err)

		dash := sess.Dashboard
		assert.Equal(t, build, dash.BuildDir)
		assert.Equal(t, filepath.Clean("/src"), filepath.Clean(dash.SourceDir))
		assert.Equal(t, "RelWithDebInfo", dash.ConfigType)
		assert.Equal(t, 1500*time.Millisecond, dash.TimeLimit)
		changeID, _ := dash.Get("ChangeId")
		assert.Equal(t, "42", changeID)
	})

	t.Run("time limit re-read on every call", func(t *testing.T) {
		sess := newTestSession(t)
		sess.Vars.Define("CTEST_TIME_LIMIT", "10")
		require.NoError(t, Execute[fakeArgs](context.Background(), sess, &fakeCommand{handler: &fakeHandler{}}, nil))
		assert.Equal(t, 10*time.Second, sess.Dashboard.TimeLimit)

		sess.Vars.Unset("CTEST_TIME_LIMIT")
		require.NoError(t, Execute[fakeArgs](context.Background(), sess, &fakeCommand{handler: &fakeHandler{}}, nil))
		assert.Zero(t, sess.Dashboard.TimeLimit)
	})
}

func TestRun_NilHandlerMessage(t *testing.T) {
	sess := newTestSession(t)
	_, err := Run[fakeArgs](context.Background(), sess, &fakeCommand{nilInit: true}, nil)
	assert.EqualError(t, err, "Cannot instantiate test handler ctest_fake")
}

func TestAdapt(t *testing.T) {
	sess := newTestSession(t)
	cmd := Adapt[fakeArgs](&fakeCommand{handler: &fakeHandler{err: errors.New("nope")}})
	assert.Equal(t, "ctest_fake", cmd.Name())
	assert.Error(t, cmd.Execute(context.Background(), sess, nil))
}

func TestHandlerArguments_SubmitIndexValue(t *testing.T) {
	assert.Equal(t, 3, (&HandlerArguments{SubmitIndex: "3"}).SubmitIndexValue())
	assert.Equal(t, 0, (&HandlerArguments{SubmitIndex: "x"}).SubmitIndexValue())
}
