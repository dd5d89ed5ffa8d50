package ctest_submit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/specialistvlad/buildgen/internal/dispatch"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
	"github.com/specialistvlad/buildgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	sess, _ := testutil.NewSession(t, "3.20")
	sess.Vars.Define("CTEST_BINARY_DIRECTORY", sess.Project.BinaryDir)
	return sess
}

func run(sess *session.Session, args ...string) (dispatch.State, error) {
	return dispatch.Run[Arguments](context.Background(), sess, &Command{}, args)
}

func readManifest(t *testing.T, sess *session.Session, buildID string) Manifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(sess.Project.BinaryDir, "Testing", "Submit", buildID+".json"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestModule_Register(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	_, ok := r.Lookup("ctest_submit")
	assert.True(t, ok)
}

func TestPartFromName(t *testing.T) {
	p, ok := PartFromName("memcheck")
	require.True(t, ok)
	assert.Equal(t, "MemCheck", p)

	_, ok = PartFromName("Deploy")
	assert.False(t, ok)
}

func TestSubmit_AllPartsByDefault(t *testing.T) {
	sess := newSession(t)
	sess.Vars.Define("CTEST_DROP_SITE", "dash.example.com")
	sess.Vars.Define("CTEST_DROP_SITE_PASSWORD", "hunter2")
	sess.Vars.Define("CMAKE_TLS_VERIFY", "ON")

	state, err := run(sess, "BUILD_ID", "bid", "RETURN_VALUE", "rv", "HTTPHEADER", "X-A: 1", "X-B: 2")
	require.NoError(t, err)
	assert.Equal(t, dispatch.Finalized, state)
	assert.Equal(t, "0", sess.Vars.GetSafe("rv"))

	buildID := sess.Vars.GetSafe("bid")
	_, err = uuid.Parse(buildID)
	require.NoError(t, err)

	m := readManifest(t, sess, buildID)
	assert.Equal(t, Parts, m.Parts)
	assert.Equal(t, []string{"X-A: 1", "X-B: 2"}, m.HTTPHeaders)
	assert.Equal(t, "dash.example.com", m.Dashboard["DropSite"])
	assert.Equal(t, "ON", m.Dashboard["TLSVerify"])
	assert.NotContains(t, m.Dashboard, "DropSitePassword")
}

func TestSubmit_SubmitURLOverridesDropVariables(t *testing.T) {
	sess := newSession(t)
	sess.Vars.Define("CTEST_SUBMIT_URL", "https://from.var/submit.php")
	sess.Vars.Define("CTEST_DROP_SITE", "ignored")

	_, err := run(sess, "BUILD_ID", "bid")
	require.NoError(t, err)
	m := readManifest(t, sess, sess.Vars.GetSafe("bid"))
	assert.Equal(t, "https://from.var/submit.php", m.Dashboard["SubmitURL"])
	assert.NotContains(t, m.Dashboard, "DropSite")

	_, err = run(sess, "BUILD_ID", "bid", "SUBMIT_URL", "https://from.arg/submit.php")
	require.NoError(t, err)
	m = readManifest(t, sess, sess.Vars.GetSafe("bid"))
	assert.Equal(t, "https://from.arg/submit.php", m.Dashboard["SubmitURL"])
}

func TestSubmit_PartsAndFiles(t *testing.T) {
	sess := newSession(t)
	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("n"), 0o644))

	_, err := run(sess, "FILES", file, "BUILD_ID", "bid")
	require.NoError(t, err)
	m := readManifest(t, sess, sess.Vars.GetSafe("bid"))
	assert.Empty(t, m.Parts)
	assert.Equal(t, []string{file}, m.Files)

	_, err = run(sess, "PARTS", "build", "Test", "FILES", file, "BUILD_ID", "bid")
	require.NoError(t, err)
	m = readManifest(t, sess, sess.Vars.GetSafe("bid"))
	assert.Equal(t, []string{"Build", "Test"}, m.Parts)
	assert.Equal(t, []string{file}, m.Files)
}

func TestSubmit_InvalidPartsAndFiles(t *testing.T) {
	sess := newSession(t)
	missing := filepath.Join(t.TempDir(), "missing.xml")

	_, err := run(sess, "PARTS", "Build", "Deploy", "FILES", missing, "CAPTURE_CMAKE_ERROR", "ce")
	require.NoError(t, err)
	assert.Equal(t, "-1", sess.Vars.GetSafe("ce"))
	assert.False(t, sess.ErrorOccurred())

	var texts []string
	for _, m := range sess.Messages() {
		assert.Equal(t, session.FatalError, m.Type)
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{
		"Part name \"Deploy\" is invalid.",
		"File \"" + missing + "\" does not exist. Cannot submit a non-existent file.",
	}, texts)
}

func TestSubmit_ExtraFilesMustExist(t *testing.T) {
	sess := newSession(t)
	sess.Vars.Define("CTEST_EXTRA_SUBMIT_FILES", filepath.Join(t.TempDir(), "nope.txt"))

	_, err := run(sess)
	require.Error(t, err)
	assert.Equal(t, "problem submitting extra files.", err.Error())
}

func TestSubmit_CDashUpload(t *testing.T) {
	sess := newSession(t)
	upload := filepath.Join(t.TempDir(), "artifact.tgz")
	require.NoError(t, os.WriteFile(upload, []byte("data"), 0o644))

	_, err := run(sess, "CDASH_UPLOAD", upload, "CDASH_UPLOAD_TYPE", "tarball", "BUILD_ID", "bid")
	require.NoError(t, err)
	m := readManifest(t, sess, sess.Vars.GetSafe("bid"))
	assert.Equal(t, []string{"Upload"}, m.Parts)
	assert.Equal(t, upload, m.CDashUploadFile)
	assert.Equal(t, "tarball", m.CDashUploadType)

	_, err = run(sess, "CDASH_UPLOAD", upload, "PARTS", "Build")
	require.Error(t, err)
	assert.Equal(t, "called with unknown argument \"PARTS\".", err.Error())
}

func TestSubmit_CDashUploadMissingFile(t *testing.T) {
	sess := newSession(t)
	_, err := run(sess, "CDASH_UPLOAD", filepath.Join(t.TempDir(), "gone.tgz"), "RETURN_VALUE", "rv")
	require.NoError(t, err)
	assert.Equal(t, "-1", sess.Vars.GetSafe("rv"))
}
