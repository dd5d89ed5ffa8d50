package integrationtests

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/buildgen/internal/cli"
	"github.com/specialistvlad/buildgen/internal/pkgregistry"
	"github.com/specialistvlad/buildgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProject lays files out under a fresh project directory.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(testutil.Unindent(content)), 0o644))
	}
	return dir
}

// configure runs `buildgen configure` with a private home and registry.
func configure(t *testing.T, dir string, extra ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("BUILDGEN_PACKAGE_REGISTRY", "file")

	out := &testutil.SafeBuffer{}
	args := append([]string{"configure", "--log-level", "debug"}, extra...)
	args = append(args, dir)
	err := cli.Execute(context.Background(), args, out)
	if os.Getenv("BUILDGEN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
	}
	return out.String(), err
}

const libraryProject = `
	project "zlibx" {
	  minimum_required = "3.20"
	}

	target "zlibx" {
	  kind     = "library"
	  location = "libzlibx.a"
	}

	target "zlibx_tool" {
	  kind     = "executable"
	  location = "zlibx_tool"
	}

	export_set "zlibxTargets" { targets = ["zlibx", "zlibx_tool"] }
`

func TestConfigure_HCLProjectWritesExportFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.hcl": libraryProject + `
			command "export" { args = ["EXPORT", "zlibxTargets", "NAMESPACE", "zlibx::"] }
		`,
	})

	_, err := configure(t, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "build", "zlibxTargets.cmake"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "add_library(zlibx::zlibx UNKNOWN IMPORTED)")
	assert.Contains(t, content, "add_executable(zlibx::zlibx_tool IMPORTED)")
	assert.Less(t, strings.Index(content, "zlibx::zlibx "), strings.Index(content, "zlibx::zlibx_tool"))
}

func TestConfigure_YAMLCommandsAgainstHCLProject(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.hcl": libraryProject,
		"commands.yml": `
			commands:
			  - name: export
			    args: [TARGETS, zlibx, FILE, first.cmake]
			  - name: export
			    args: [TARGETS, zlibx_tool, FILE, first.cmake, APPEND]
		`,
	})

	_, err := configure(t, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "build", "first.cmake"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "add_library(zlibx UNKNOWN IMPORTED)")
	assert.Contains(t, string(data), "add_executable(zlibx_tool IMPORTED)")
}

func TestConfigure_BinaryDirFlag(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.hcl": libraryProject + `
			command "export" { args = ["TARGETS", "zlibx", "FILE", "zlibx.cmake"] }
		`,
	})
	bin := filepath.Join(t.TempDir(), "out")

	_, err := configure(t, dir, "-B", bin)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(bin, "zlibx.cmake"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "build", "zlibx.cmake"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigure_FailureReportsExitCode(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.hcl": libraryProject + `
			command "export" { args = ["TARGETS", "zlibx", "FILE", "zlibx.txt"] }
		`,
	})

	_, err := configure(t, dir)
	require.Error(t, err)

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, exitErr.Message, "FILE option given filename")
}

func TestConfigure_PackageRegistryRoundTrip(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.hcl": libraryProject + `
			variable "CMAKE_EXPORT_PACKAGE_REGISTRY" { value = true }
			command "export" { args = ["PACKAGE", "zlibx"] }
		`,
	})

	_, err := configure(t, dir)
	require.NoError(t, err)

	bin := filepath.Join(dir, "build")
	hash := pkgregistry.Digest(bin)
	data, err := os.ReadFile(filepath.Join(dir, "home", ".cmake", "packages", "zlibx", hash))
	require.NoError(t, err)
	assert.Equal(t, bin+"\n", string(data))

	out := &bytes.Buffer{}
	require.NoError(t, cli.Execute(context.Background(), []string{"registry", "list", "zlibx"}, out))
	assert.Equal(t, hash+" "+bin+"\n", out.String())
}

func TestConfigure_PackageRegistryDisabledByDefault(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.hcl": libraryProject + `
			command "export" { args = ["PACKAGE", "zlibx"] }
		`,
	})

	_, err := configure(t, dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "home", ".cmake", "packages", "zlibx"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigure_CapturedBuildFailureKeepsGoing(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"project.yaml": `
			project:
			  name: app
			  minimum_required: "3.20"
			targets:
			  - name: app_core
			    kind: library
			    location: libapp_core.a
			commands:
			  - name: ctest_build
			    args: [BUILD, build, CAPTURE_CMAKE_ERROR, build_error]
			  - name: export
			    args: [TARGETS, app_core, FILE, app.cmake]
		`,
	})

	logs, err := configure(t, dir)
	require.NoError(t, err)
	assert.Contains(t, logs, "has no project to build")

	_, err = os.Stat(filepath.Join(dir, "build", "app.cmake"))
	require.NoError(t, err)
}
