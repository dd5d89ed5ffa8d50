package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/project"
	"github.com/specialistvlad/buildgen/internal/session"
	"github.com/stretchr/testify/require"
)

// NewSession creates a session for a project named "demo" whose source and
// binary directories are fresh temporary directories. The session runs
// commands through a FakeRunner, which is returned alongside it.
func NewSession(t *testing.T, minimumRequired string) (*session.Session, *FakeRunner) {
	t.Helper()

	root := t.TempDir()
	src := filepath.Join(root, "src")
	bin := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(bin, 0o755))

	vars := ambient.New()
	sess := session.New(project.New("demo", src, bin), vars, policy.NewContext(minimumRequired, nil, vars))
	runner := &FakeRunner{}
	sess.Runner = runner
	return sess, runner
}
