package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildgen/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_LoadError(t *testing.T) {
	// --- Arrange ---
	invalidHCL := `
		project "demo" {
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.hcl"), []byte(invalidHCL), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{"configure", "--registry", "memory", tempDir})

	// --- Assert ---
	require.Error(t, runErr)
	var exitErr *cli.ExitError
	require.True(t, errors.As(runErr, &exitErr))
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, exitErr.Message, "failed to parse HCL file")
}

func TestRun_Help(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"--help"}))
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ConfigureFailureExitCode(t *testing.T) {
	tempDir := t.TempDir()
	project := "project \"demo\" {}\ncommand \"export\" { args = [\"EXPORT\", \"nothing\"] }\n"
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.hcl"), []byte(project), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, []string{"configure", "--registry", "memory", tempDir})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Export set \"nothing\" not found.")
}
