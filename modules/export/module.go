// Package export implements the export() command: it binds build-tree
// export files to targets or export sets, configures export sets and
// records build directories in the user package registry.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/specialistvlad/buildgen/internal/argparse"
	"github.com/specialistvlad/buildgen/internal/ctxlog"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/specialistvlad/buildgen/internal/exportgen"
	"github.com/specialistvlad/buildgen/internal/exportset"
	"github.com/specialistvlad/buildgen/internal/policy"
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/internal/session"
)

// ExperimentalPackageDependencies gates the EXPORT_PACKAGE_DEPENDENCIES and
// PACKAGE_DEPENDENCY keywords.
const ExperimentalPackageDependencies = "CMAKE_EXPERIMENTAL_EXPORT_PACKAGE_DEPENDENCIES"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the export command.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Command{})
}

// Command is the export() command.
type Command struct{}

// Name implements registry.Command.
func (c *Command) Name() string { return "export" }

type arguments struct {
	ExportSetName       string
	Targets             []string
	Namespace           string
	Filename            string
	AndroidMKFile       string
	CxxModulesDirectory string
	Append              bool
	ExportOld           bool

	PackageDependencyArgs     [][]string
	ExportPackageDependencies bool

	TargetArgs [][]string
}

type packageDependencyArguments struct {
	Enabled   string
	ExtraArgs []string
}

type targetArguments struct {
	XcFrameworkLocation string
}

var (
	packageDependencyParser = argparse.New[packageDependencyArguments]().
				String("ENABLED", func(a *packageDependencyArguments) *string { return &a.Enabled }).
				List("EXTRA_ARGS", func(a *packageDependencyArguments) *[]string { return &a.ExtraArgs })

	targetParser = argparse.New[targetArguments]().
			String("XCFRAMEWORK_LOCATION", func(a *targetArguments) *string { return &a.XcFrameworkLocation })

	packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

func newParser(form string, experimental bool) *argparse.Parser[arguments] {
	p := argparse.New[arguments]().
		String("NAMESPACE", func(a *arguments) *string { return &a.Namespace }).
		String("FILE", func(a *arguments) *string { return &a.Filename }).
		String("CXX_MODULES_DIRECTORY", func(a *arguments) *string { return &a.CxxModulesDirectory })

	switch form {
	case "EXPORT":
		p.String("EXPORT", func(a *arguments) *string { return &a.ExportSetName })
		if experimental {
			p.Flag("EXPORT_PACKAGE_DEPENDENCIES", func(a *arguments) *bool { return &a.ExportPackageDependencies })
		}
	case "SETUP":
		p.String("SETUP", func(a *arguments) *string { return &a.ExportSetName })
		if experimental {
			p.Groups("PACKAGE_DEPENDENCY", func(a *arguments) *[][]string { return &a.PackageDependencyArgs })
		}
		p.Groups("TARGET", func(a *arguments) *[][]string { return &a.TargetArgs })
	default:
		p.List("TARGETS", func(a *arguments) *[]string { return &a.Targets })
		p.String("ANDROID_MK", func(a *arguments) *string { return &a.AndroidMKFile })
		p.Flag("APPEND", func(a *arguments) *bool { return &a.Append })
		p.Flag("EXPORT_LINK_INTERFACE_LIBRARIES", func(a *arguments) *bool { return &a.ExportOld })
	}
	return p
}

func unknownArgument(arg string) error {
	return errs.Usage("Unknown argument: \"%s\".", arg)
}

// Execute implements registry.Command.
func (c *Command) Execute(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) < 1 {
		return errs.Usage("called with too few arguments")
	}
	if args[0] == "PACKAGE" {
		return handlePackage(ctx, sess, args)
	}

	_, experimental := sess.Vars.Nonempty(ExperimentalPackageDependencies)
	var a arguments
	res := newParser(args[0], experimental).Parse(args, &a)
	if len(res.Unknown) > 0 {
		return unknownArgument(res.Unknown[0])
	}

	if args[0] == "SETUP" {
		return handleSetup(sess, &a)
	}

	fname, android, err := exportFileName(sess, args[0], &a)
	if err != nil {
		return err
	}

	var set *exportset.Set
	var targets []string
	switch {
	case args[0] == "EXPORT":
		found, ok := sess.ExportSets.Find(a.ExportSetName)
		if !ok {
			return errs.Newf(errs.KindExportGraph, "Export set \"%s\" not found.", a.ExportSetName)
		}
		set = found
	case res.Seen("TARGETS"):
		for _, name := range a.Targets {
			if err := exportset.CheckExportable(sess.Project, name); err != nil {
				return err
			}
			targets = exportset.AppendTargets(targets, []string{name})
		}
		if a.Append && sess.ExportFiles.AppendTargets(fname, targets) {
			ctxlog.FromContext(ctx).Debug("Targets appended to export file.", "file", fname, "targets", targets)
			return nil
		}
	default:
		return errs.New(errs.KindExportGraph, "EXPORT or TARGETS specifier missing.")
	}

	opts := exportgen.Options{
		Path:                fname,
		Namespace:           a.Namespace,
		Append:              a.Append,
		CxxModulesDirectory: a.CxxModulesDirectory,
		Configurations:      sess.Configurations(),
		Set:                 set,
		Targets:             targets,
	}
	var gen exportgen.FileGenerator
	if android {
		gen = exportgen.NewAndroidMK(opts)
	} else {
		cfg := exportgen.NewCMakeConfig(opts)
		cfg.ExportOld = a.ExportOld
		cfg.ExportPackageDependencies = a.ExportPackageDependencies
		gen = cfg
	}

	warn := func(msg string) { sess.IssueMessage(ctx, session.AuthorWarning, msg) }
	if err := sess.ExportFiles.Bind(gen, sess.Policies.Resolve(policy.CMP0103), warn); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Export file bound.", "file", fname, "targets", gen.TargetNames())
	return nil
}

// exportFileName resolves the file an export writes and whether it is an
// Android.mk file.
func exportFileName(sess *session.Session, form string, a *arguments) (string, bool, error) {
	var fname string
	android := false
	if a.AndroidMKFile != "" {
		fname = a.AndroidMKFile
		android = true
	}

	switch {
	case a.Filename == "" && fname == "":
		if form != "EXPORT" {
			return "", false, errs.Usage("FILE <filename> option missing.")
		}
		fname = a.ExportSetName + ".cmake"
	case fname == "":
		if filepath.Ext(a.Filename) != ".cmake" {
			return "", false, errs.Usage("FILE option given filename \"%s\" which does not have an extension of \".cmake\".\n", a.Filename)
		}
		fname = a.Filename
	}

	if filepath.IsAbs(fname) {
		if !sess.Project.CanWriteFile(fname) {
			return "", false, errs.Usage("FILE option given filename \"%s\" which is in the source tree.\n", fname)
		}
		return filepath.Clean(fname), android, nil
	}
	return filepath.Join(sess.CurrentBinaryDir(), fname), android, nil
}

func handleSetup(sess *session.Session, a *arguments) error {
	set := sess.ExportSets.GetOrCreate(a.ExportSetName)

	for _, group := range a.PackageDependencyArgs {
		if len(group) == 0 {
			continue
		}
		var pd packageDependencyArguments
		res := packageDependencyParser.Parse(group[1:], &pd)
		if len(res.Unknown) > 0 {
			return unknownArgument(res.Unknown[0])
		}

		dep := set.PackageDependency(group[0])
		if pd.Enabled != "" {
			enabled, err := exportset.ParseEnabled(pd.Enabled)
			if err != nil {
				return err
			}
			dep.Enabled = enabled
		}
		dep.AppendExtraArgs(pd.ExtraArgs...)
	}

	for _, group := range a.TargetArgs {
		if len(group) == 0 {
			continue
		}
		var ta targetArguments
		res := targetParser.Parse(group[1:], &ta)
		if len(res.Unknown) > 0 {
			return unknownArgument(res.Unknown[0])
		}
		if err := set.SetXcFrameworkLocation(group[0], ta.XcFrameworkLocation); err != nil {
			return err
		}
	}
	return nil
}

func handlePackage(ctx context.Context, sess *session.Session, args []string) error {
	var pkg string
	for i, arg := range args[1:] {
		if i == 0 {
			pkg = arg
			continue
		}
		return errs.Usage("PACKAGE given unknown argument: %s", arg)
	}

	if pkg == "" {
		return errs.New(errs.KindPackageName, "PACKAGE must be given a package name.")
	}
	if !packageNamePattern.MatchString(pkg) {
		return errs.Newf(errs.KindPackageName,
			"PACKAGE given invalid package name \"%s\".  Package names must match \"%s\".",
			pkg, packageNamePattern.String())
	}

	logger := ctxlog.FromContext(ctx)
	switch sess.Policies.Resolve(policy.CMP0090) {
	case policy.New:
		if !sess.Vars.IsOn("CMAKE_EXPORT_PACKAGE_REGISTRY") {
			logger.Debug("Package registry export not enabled.", "package", pkg)
			return nil
		}
	default:
		if sess.Vars.IsOn("CMAKE_EXPORT_NO_PACKAGE_REGISTRY") {
			logger.Debug("Package registry export disabled.", "package", pkg)
			return nil
		}
	}

	if sess.PackageRegistry == nil {
		logger.Debug("No package registry configured.", "package", pkg)
		return nil
	}
	content := sess.CurrentBinaryDir()
	if _, err := sess.PackageRegistry.Store(ctx, pkg, content); err != nil {
		sess.IssueMessage(ctx, session.Warning, registryWarning(err))
	}
	return nil
}

// registryWarning renders a backend failure as "<what>\n<cause>\n".
func registryWarning(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Cause != nil {
		return fmt.Sprintf("%s\n%s\n", e.Message, e.Cause.Error())
	}
	return err.Error()
}
