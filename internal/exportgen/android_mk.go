package exportgen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildgen/internal/project"
)

// AndroidMK renders an Android.mk fragment declaring prebuilt modules for
// the exported libraries. Executables have no prebuilt form and are skipped.
type AndroidMK struct {
	buildFile
}

// NewAndroidMK creates an Android.mk file generator.
func NewAndroidMK(opts Options) *AndroidMK {
	return &AndroidMK{buildFile: buildFile{opts: opts}}
}

// Generate implements FileGenerator.
func (g *AndroidMK) Generate(gctx GenerateContext) ([]byte, error) {
	targets, err := g.exportedTargets(gctx.Project)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if !g.opts.Append {
		buf.WriteString("LOCAL_PATH := $(call my-dir)\n\n")
	}
	for _, t := range targets {
		if t.Kind != project.Library {
			continue
		}
		fmt.Fprintf(&buf, "include $(CLEAR_VARS)\n")
		fmt.Fprintf(&buf, "LOCAL_MODULE := %s%s\n", g.opts.Namespace, t.Name)
		fmt.Fprintf(&buf, "LOCAL_SRC_FILES := %s\n", filepath.ToSlash(filepath.Join(gctx.Project.BinaryDir, t.Location)))
		if len(t.Packages) > 0 {
			fmt.Fprintf(&buf, "LOCAL_EXPORT_LDLIBS := %s\n", ldlibs(t.Packages))
		}
		kind := "PREBUILT_SHARED_LIBRARY"
		if strings.HasSuffix(t.Location, ".a") {
			kind = "PREBUILT_STATIC_LIBRARY"
		}
		fmt.Fprintf(&buf, "include $(%s)\n\n", kind)
	}
	return buf.Bytes(), nil
}

func ldlibs(packages []string) string {
	flags := make([]string, len(packages))
	for i, pkg := range packages {
		flags[i] = "-l" + pkg
	}
	return strings.Join(flags, " ")
}
