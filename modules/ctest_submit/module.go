// Package ctest_submit implements ctest_submit(). Submissions are recorded as
// JSON manifests under <build>/Testing/Submit; nothing is sent over the
// network.
package ctest_submit

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/argparse"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/dispatch"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/fsutil"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
)

// Parts lists the dashboard parts in submission order.
var Parts = []string{
	"Start", "Update", "Configure", "Build", "Test", "Coverage",
	"MemCheck", "Notes", "ExtraFiles", "Upload", "Done",
}

// PartFromName returns the canonical spelling of a part name, matched
// case-insensitively.
func PartFromName(name string) (string, bool) {
	for _, p := range Parts {
		if strings.EqualFold(p, name) {
			return p, true
		}
	}
	return "", false
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the ctest_submit command.
func (m *Module) Register(r *registry.Registry) {
	r.Register(dispatch.Adapt[Arguments](&Command{}))
}

// Arguments are the keywords of ctest_submit().
type Arguments struct {
	dispatch.HandlerArguments
	BuildID      string
	HTTPHeaders  []string
	RetryCount   string
	RetryDelay   string
	SubmitURL    string
	InternalTest bool

	Parts []string
	Files []string

	CDashUpload     bool
	CDashUploadFile string
	CDashUploadType string
}

// Command is the ctest_submit command.
type Command struct{}

// Name implements dispatch.HandlerCommand.
func (c *Command) Name() string { return "ctest_submit" }

// Parser picks the CDASH_UPLOAD signature when the invocation starts with
// that keyword, and the PARTS/FILES signature otherwise.
func (c *Command) Parser(raw []string) *argparse.Parser[Arguments] {
	p := dispatch.NewHandlerParser[Arguments]().
		String("BUILD_ID", func(a *Arguments) *string { return &a.BuildID }).
		List("HTTPHEADER", func(a *Arguments) *[]string { return &a.HTTPHeaders }).
		String("RETRY_COUNT", func(a *Arguments) *string { return &a.RetryCount }).
		String("RETRY_DELAY", func(a *Arguments) *string { return &a.RetryDelay }).
		String("SUBMIT_URL", func(a *Arguments) *string { return &a.SubmitURL }).
		Flag("INTERNAL_TEST_CHECKSUM", func(a *Arguments) *bool { return &a.InternalTest })

	if len(raw) > 0 && raw[0] == "CDASH_UPLOAD" {
		return p.
			String("CDASH_UPLOAD", func(a *Arguments) *string { return &a.CDashUploadFile }).
			String("CDASH_UPLOAD_TYPE", func(a *Arguments) *string { return &a.CDashUploadType })
	}
	return p.
		List("PARTS", func(a *Arguments) *[]string { return &a.Parts }).
		List("FILES", func(a *Arguments) *[]string { return &a.Files })
}

// CheckArguments drops unknown parts and missing files, reporting each as a
// fatal message.
func (c *Command) CheckArguments(ctx context.Context, sess *session.Session, args *Arguments) error {
	args.CDashUpload = args.CDashUploadFile != ""

	if args.Parts != nil {
		kept := args.Parts[:0]
		for _, name := range args.Parts {
			part, ok := PartFromName(name)
			if !ok {
				sess.IssueMessage(ctx, session.FatalError, "Part name \""+name+"\" is invalid.")
				continue
			}
			kept = append(kept, part)
		}
		args.Parts = kept
	}

	if args.Files != nil {
		kept := args.Files[:0]
		for _, f := range args.Files {
			if !fileExists(f) {
				sess.IssueMessage(ctx, session.FatalError,
					"File \""+f+"\" does not exist. Cannot submit a non-existent file.")
				continue
			}
			kept = append(kept, f)
		}
		args.Files = kept
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// InitializeHandler implements dispatch.HandlerCommand.
func (c *Command) InitializeHandler(ctx context.Context, sess *session.Session, args *Arguments) (dispatch.Handler, error) {
	logger := ctxlog.FromContext(ctx).With("command", c.Name())
	vars := sess.Vars
	dash := sess.Dashboard

	fromVar := func(key, name string) bool {
		v, ok := vars.Get(name)
		if ok {
			dash.Set(key, v)
			if !args.Quiet {
				logger.Debug("Dashboard option set.", "option", key, "variable", name)
			}
		}
		return ok
	}

	switch {
	case args.SubmitURL != "":
		dash.Set("SubmitURL", args.SubmitURL)
	case fromVar("SubmitURL", "CTEST_SUBMIT_URL"):
	default:
		fromVar("DropMethod", "CTEST_DROP_METHOD")
		fromVar("DropSiteUser", "CTEST_DROP_SITE_USER")
		fromVar("DropSitePassword", "CTEST_DROP_SITE_PASSWORD")
		fromVar("DropSite", "CTEST_DROP_SITE")
		fromVar("DropLocation", "CTEST_DROP_LOCATION")
	}

	for _, tls := range []struct{ key, ctest, cmake string }{
		{"TLSVersion", "CTEST_TLS_VERSION", "CMAKE_TLS_VERSION"},
		{"TLSVerify", "CTEST_TLS_VERIFY", "CMAKE_TLS_VERIFY"},
	} {
		if fromVar(tls.key, tls.ctest) || fromVar(tls.key, tls.cmake) {
			continue
		}
		if v, ok := os.LookupEnv(tls.cmake); ok {
			dash.Set(tls.key, v)
		}
	}
	fromVar("CurlOptions", "CTEST_CURL_OPTIONS")
	fromVar("SubmitInactivityTimeout", "CTEST_SUBMIT_INACTIVITY_TIMEOUT")

	h := &Handler{
		sess:         sess,
		quiet:        args.Quiet,
		httpHeaders:  args.HTTPHeaders,
		retryCount:   args.RetryCount,
		retryDelay:   args.RetryDelay,
		internalTest: args.InternalTest,
		notes:        vars.List("CTEST_NOTES_FILES"),
	}

	if extra, ok := vars.Get("CTEST_EXTRA_SUBMIT_FILES"); ok {
		for _, f := range ambient.ExpandList(extra) {
			if !fileExists(f) {
				logger.Error("Cannot find extra file to submit.", "file", f)
				return nil, errs.Usage("problem submitting extra files.")
			}
			h.extraFiles = append(h.extraFiles, f)
		}
	}

	// No FILES and no PARTS selects every part. FILES alone selects no part.
	h.parts = Parts
	if args.Files != nil {
		h.parts = nil
		h.files = args.Files
	}
	if args.Parts != nil {
		h.parts = args.Parts
	}

	if args.CDashUpload {
		h.cdashUpload = true
		h.cdashUploadFile = args.CDashUploadFile
		h.cdashUploadType = args.CDashUploadType
	}
	return h, nil
}

// ProcessAdditionalValues stores the generated build id.
func (c *Command) ProcessAdditionalValues(_ context.Context, sess *session.Session, args *Arguments, h dispatch.Handler) {
	handler, ok := h.(*Handler)
	if !ok || args.BuildID == "" {
		return
	}
	sess.Vars.Define(args.BuildID, handler.BuildID)
}

// Manifest is the record of one submission.
type Manifest struct {
	BuildID         string            `json:"build_id"`
	Dashboard       map[string]string `json:"dashboard"`
	Parts           []string          `json:"parts"`
	Files           []string          `json:"files,omitempty"`
	ExtraFiles      []string          `json:"extra_files,omitempty"`
	Notes           []string          `json:"notes,omitempty"`
	HTTPHeaders     []string          `json:"http_headers,omitempty"`
	RetryCount      string            `json:"retry_count,omitempty"`
	RetryDelay      string            `json:"retry_delay,omitempty"`
	InternalTest    bool              `json:"internal_test_checksum,omitempty"`
	CDashUploadFile string            `json:"cdash_upload_file,omitempty"`
	CDashUploadType string            `json:"cdash_upload_type,omitempty"`
}

// Handler records a submission manifest.
type Handler struct {
	sess  *session.Session
	quiet bool

	parts        []string
	files        []string
	extraFiles   []string
	notes        []string
	httpHeaders  []string
	retryCount   string
	retryDelay   string
	internalTest bool

	cdashUpload     bool
	cdashUploadFile string
	cdashUploadType string

	// BuildID identifies the submission once Process succeeds.
	BuildID string
	// ManifestPath is where the manifest was written.
	ManifestPath string
}

// Process implements dispatch.Handler.
func (h *Handler) Process(ctx context.Context) (int, error) {
	logger := ctxlog.FromContext(ctx).With("command", "ctest_submit")
	dash := h.sess.Dashboard

	m := Manifest{
		BuildID:      uuid.NewString(),
		Dashboard:    make(map[string]string),
		Parts:        h.parts,
		Files:        h.files,
		ExtraFiles:   h.extraFiles,
		Notes:        h.notes,
		HTTPHeaders:  h.httpHeaders,
		RetryCount:   h.retryCount,
		RetryDelay:   h.retryDelay,
		InternalTest: h.internalTest,
	}
	for _, k := range dash.Keys() {
		if k == "DropSitePassword" {
			continue
		}
		v, _ := dash.Get(k)
		m.Dashboard[k] = v
	}

	if h.cdashUpload {
		if _, err := os.Stat(h.cdashUploadFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Error("Upload file not found.", "file", h.cdashUploadFile)
				return -1, nil
			}
			return -1, errs.Wrap(errs.KindIO, "stat upload file", err)
		}
		m.Parts = []string{"Upload"}
		m.CDashUploadFile = h.cdashUploadFile
		m.CDashUploadType = h.cdashUploadType
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return -1, errs.Wrap(errs.KindIO, "encode submission manifest", err)
	}
	path := filepath.Join(dash.BuildDir, "Testing", "Submit", m.BuildID+".json")
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return -1, errs.Wrap(errs.KindIO, "write submission manifest", err)
	}

	h.BuildID = m.BuildID
	h.ManifestPath = path
	if !h.quiet {
		logger.Info("Submission recorded.", "build_id", m.BuildID, "manifest", path, "parts", m.Parts)
	}
	return 0, nil
}
