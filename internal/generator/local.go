package generator

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LocalGenerator emits the per-directory parts of a makefile-style build.
type LocalGenerator struct {
	global    *global
	traits    LocalTraits
	Directory string
	Parent    *LocalGenerator
}

// Traits returns the settings received from the global generator.
func (lg *LocalGenerator) Traits() LocalTraits {
	return lg.traits
}

// SilentFlagDefinition returns the MAKESILENT variable line.
func (lg *LocalGenerator) SilentFlagDefinition() string {
	return "MAKESILENT = " + lg.traits.MakeSilentFlag
}

// NullDevice returns the path discarded output is redirected to.
func (lg *LocalGenerator) NullDevice() string {
	if lg.traits.DefineWindowsNULL {
		return "NUL"
	}
	return "/dev/null"
}

// WrapInDirectory returns the command lines running cmd inside dir.
// Shells without a usable "cd dir && cmd" change back explicitly.
func (lg *LocalGenerator) WrapInDirectory(dir string, cmd string) []string {
	dir = lg.convertPath(dir)
	if lg.traits.UnixCD {
		return []string{fmt.Sprintf("cd %s && %s", dir, cmd)}
	}
	return []string{
		"cd " + dir,
		cmd,
		"cd " + lg.convertPath(lg.Directory),
	}
}

// RecursiveMakeCall returns the rule line invoking make on another makefile.
func (lg *LocalGenerator) RecursiveMakeCall(makefile, target string) string {
	var b strings.Builder
	b.WriteString("$(MAKE)")
	if lg.traits.PassMakeflags {
		b.WriteString(" -$(MAKEFLAGS)")
	}
	fmt.Fprintf(&b, " $(MAKESILENT) -f %s %s", lg.quote(lg.convertPath(makefile)), target)
	return b.String()
}

// SymbolicRule returns a rule that always runs and never names a file.
func (lg *LocalGenerator) SymbolicRule(target string) string {
	rule := target + " :"
	if lg.global.traits.NeedSymbolicMark {
		rule += " .SYMBOLIC"
	}
	if hack := lg.global.traits.EmptyRuleHackCommand; hack != "" {
		rule += "\n\t" + hack
	}
	return rule
}

// Include returns the directive including another makefile.
func (lg *LocalGenerator) Include(path string) string {
	return lg.global.traits.IncludeDirective + " " + lg.quote(lg.convertPath(path))
}

// LibraryName returns the file name of a library.
func (lg *LocalGenerator) LibraryName(name, prefix, suffix string) string {
	if lg.traits.IgnoreLibPrefix {
		prefix = ""
	}
	return prefix + name + suffix
}

func (lg *LocalGenerator) convertPath(p string) string {
	if lg.global.traits.WindowsShell {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return filepath.ToSlash(p)
}

func (lg *LocalGenerator) quote(p string) string {
	if lg.global.traits.WatcomWMake || strings.ContainsAny(p, " \t") {
		return `"` + p + `"`
	}
	return p
}
