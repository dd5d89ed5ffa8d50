package exportgen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildgen/internal/exportset"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/project"
)

// CMakeConfig renders a CMake script importing the exported targets.
type CMakeConfig struct {
	buildFile
	// ExportOld writes the pre-INTERFACE_LINK_LIBRARIES link interface.
	ExportOld bool
	// ExportPackageDependencies writes find_dependency() calls for the
	// packages recorded on the bound export set.
	ExportPackageDependencies bool
}

// NewCMakeConfig creates a CMake configuration file generator.
func NewCMakeConfig(opts Options) *CMakeConfig {
	return &CMakeConfig{buildFile: buildFile{opts: opts}}
}

// Generate implements FileGenerator.
func (g *CMakeConfig) Generate(gctx GenerateContext) ([]byte, error) {
	targets, err := g.exportedTargets(gctx.Project)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated by buildgen for project %q. Do not edit.\n", gctx.Project.Name)
	if !g.opts.Append {
		buf.WriteString("cmake_policy(PUSH)\ncmake_policy(VERSION 2.8.12...3.29)\n")
	}
	buf.WriteString("\n")

	if deps := g.dependencies(targets); len(deps) > 0 {
		buf.WriteString("include(CMakeFindDependencyMacro)\n")
		for _, dep := range deps {
			fmt.Fprintf(&buf, "find_dependency(%s)\n", dep)
		}
		buf.WriteString("\n")
	}

	if g.opts.CxxModulesDirectory != "" {
		fmt.Fprintf(&buf, "set(_buildgen_cxx_modules_directory \"%s\")\n\n",
			filepath.ToSlash(filepath.Join(filepath.Dir(g.opts.Path), g.opts.CxxModulesDirectory)))
	}

	exportOld := g.ExportOld && gctx.Policies != nil && gctx.Policies.Resolve(policy.CMP0022) != policy.New
	for _, t := range targets {
		g.writeTarget(&buf, gctx.Project, t, exportOld)
	}

	if !g.opts.Append {
		buf.WriteString("cmake_policy(POP)\n")
	}
	return buf.Bytes(), nil
}

func (g *CMakeConfig) writeTarget(buf *bytes.Buffer, p *project.Project, t *project.Target, exportOld bool) {
	name := g.opts.Namespace + t.Name
	switch t.Kind {
	case project.Executable:
		fmt.Fprintf(buf, "add_executable(%s IMPORTED)\n", name)
	default:
		fmt.Fprintf(buf, "add_library(%s UNKNOWN IMPORTED)\n", name)
	}

	fmt.Fprintf(buf, "set_target_properties(%s PROPERTIES\n", name)
	if len(t.Packages) > 0 && !exportOld {
		fmt.Fprintf(buf, "  INTERFACE_LINK_LIBRARIES \"%s\"\n", strings.Join(t.Packages, ";"))
	}
	location := filepath.ToSlash(filepath.Join(p.BinaryDir, t.Location))
	for _, config := range g.opts.Configurations {
		suffix := configSuffix(config)
		fmt.Fprintf(buf, "  IMPORTED_LOCATION%s \"%s\"\n", suffix, location)
		if exportOld && len(t.Packages) > 0 {
			fmt.Fprintf(buf, "  IMPORTED_LINK_INTERFACE_LIBRARIES%s \"%s\"\n", suffix, strings.Join(t.Packages, ";"))
		}
	}
	if xc := g.xcFrameworkLocation(t.Name); xc != "" {
		fmt.Fprintf(buf, "  IMPORTED_XCFRAMEWORK_LOCATION \"%s\"\n", filepath.ToSlash(xc))
	}
	buf.WriteString(")\n\n")
}

// dependencies returns the find_dependency() arguments in record order.
// Auto records are written only when an exported target links the package.
func (g *CMakeConfig) dependencies(targets []*project.Target) []string {
	set := g.opts.Set
	if !g.ExportPackageDependencies || set == nil {
		return nil
	}
	linked := make(map[string]bool)
	for _, t := range targets {
		for _, pkg := range t.Packages {
			linked[pkg] = true
		}
	}

	var out []string
	for _, pkg := range set.PackageDependencies() {
		dep, _ := set.LookupPackageDependency(pkg)
		switch dep.Enabled {
		case exportset.Off:
			continue
		case exportset.Auto:
			if !linked[pkg] {
				continue
			}
		}
		out = append(out, strings.Join(append([]string{pkg}, dep.ExtraArgs...), " "))
	}
	return out
}
