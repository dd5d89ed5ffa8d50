package dispatch

import (
	"context"
	"strings"

	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/session"
)

// unknownError stands in for a failure that carried no message.
const unknownError = "unknown error."

// errorStateGuard saves the session error flag on entry and restores it on
// exit according to the capture contract.
type errorStateGuard struct {
	sess    *session.Session
	initial bool
	capture string
}

func newErrorStateGuard(sess *session.Session) *errorStateGuard {
	g := &errorStateGuard{sess: sess, initial: sess.ErrorOccurred()}
	sess.SetErrorOccurred(false)
	return g
}

// captureInto makes the guard record the outcome in variable name.
func (g *errorStateGuard) captureInto(name string) {
	g.capture = name
}

// finish applies the contract to the outcome of the command and returns the
// error the caller should see.
func (g *errorStateGuard) finish(ctx context.Context, command string, err error) error {
	failed := err != nil || g.sess.ErrorOccurred()

	if g.capture == "" {
		g.sess.SetErrorOccurred(g.initial || failed)
		return err
	}

	result := "0"
	if failed {
		result = "-1"
		msg := unknownError
		if err != nil {
			msg = err.Error()
		}
		if !strings.HasSuffix(msg, unknownError) {
			ctxlog.FromContext(ctx).Error(command+" "+msg+" error from command", "command", command)
		}
	}
	g.sess.Vars.Define(g.capture, result)
	g.sess.SetErrorOccurred(g.initial)
	return nil
}
