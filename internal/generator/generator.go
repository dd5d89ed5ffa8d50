package generator

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgen/internal/errs"
)

// Definitions is the ambient store EnableLanguage seeds.
type Definitions interface {
	Define(name, value string)
	Get(name string) (string, bool)
}

// BuildRequest describes one native build invocation.
type BuildRequest struct {
	// CMakeCommand is the cmake executable driving the build.
	CMakeCommand string
	Target       string
	Config       string
	Parallel     string
	// NativeFlags are passed through to the native tool.
	NativeFlags string
	// IgnoreErrors adds the backend's ignore-errors flag.
	IgnoreErrors bool
}

// Documentation is the catalog entry of a backend.
type Documentation struct {
	Name  string
	Brief string
}

// Generator is a global generator: it owns the local generators of a
// project and knows how to invoke the native build.
type Generator interface {
	Name() string
	Traits() Traits
	EnableLanguage(langs []string, defs Definitions, optional bool) error
	CreateLocalGenerator(dir string, parent *LocalGenerator) *LocalGenerator
	LocalGenerators() []*LocalGenerator
	GenerateBuildCommand(req BuildRequest) string
	Describe() Documentation
}

// LanguageHook seeds backend specific definitions before the shared
// language setup runs.
type LanguageHook func(langs []string, defs Definitions)

type global struct {
	traits Traits
	hook   LanguageHook
	locals []*LocalGenerator
}

func newGlobal(traits Traits, hook LanguageHook) *global {
	return &global{traits: traits, hook: hook}
}

func (g *global) Name() string   { return g.traits.Name }
func (g *global) Traits() Traits { return g.traits }

func (g *global) Describe() Documentation {
	return Documentation{Name: g.traits.Name, Brief: g.traits.Brief}
}

// generatorVarSuffix maps a language to its CMAKE_GENERATOR_<X> suffix.
var generatorVarSuffix = map[string]string{
	"C":       "CC",
	"CXX":     "CXX",
	"Fortran": "FC",
	"RC":      "RC",
	"ASM":     "ASM",
}

func (g *global) EnableLanguage(langs []string, defs Definitions, optional bool) error {
	if g.hook != nil {
		g.hook(langs, defs)
	}

	defs.Define("CMAKE_GENERATOR", g.traits.Name)
	if _, ok := defs.Get("CMAKE_MAKE_PROGRAM"); !ok {
		defs.Define("CMAKE_MAKE_PROGRAM", g.traits.DefaultMakeProgram)
	}

	for _, lang := range langs {
		suffix, ok := generatorVarSuffix[lang]
		if !ok {
			if optional {
				continue
			}
			return errs.Configuration("Language %s is not supported by the %s generator.", lang, g.traits.Name)
		}
		compilerVar := fmt.Sprintf("CMAKE_%s_COMPILER", lang)
		if _, set := defs.Get(compilerVar); !set {
			if driver, ok := defs.Get("CMAKE_GENERATOR_" + suffix); ok {
				defs.Define(compilerVar, driver)
			}
		}
		defs.Define(fmt.Sprintf("CMAKE_%s_COMPILER_LOADED", lang), "1")
	}
	return nil
}

func (g *global) CreateLocalGenerator(dir string, parent *LocalGenerator) *LocalGenerator {
	lg := &LocalGenerator{
		global:    g,
		Directory: dir,
		Parent:    parent,
		traits:    g.traits.Local,
	}
	g.locals = append(g.locals, lg)
	return lg
}

func (g *global) LocalGenerators() []*LocalGenerator {
	return g.locals
}

func (g *global) GenerateBuildCommand(req BuildRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\"%s\" --build .", req.CMakeCommand)
	if req.Config != "" {
		fmt.Fprintf(&b, " --config \"%s\"", req.Config)
	}
	if req.Parallel != "" {
		fmt.Fprintf(&b, " --parallel \"%s\"", req.Parallel)
	}
	if req.Target != "" {
		fmt.Fprintf(&b, " --target \"%s\"", req.Target)
	}

	sep := " -- "
	if req.IgnoreErrors && g.traits.IgnoreErrorsFlag != "" {
		b.WriteString(sep)
		b.WriteString(g.traits.IgnoreErrorsFlag)
		sep = " "
	}
	if req.NativeFlags != "" {
		b.WriteString(sep)
		b.WriteString(req.NativeFlags)
	}
	return b.String()
}

func watcomLanguageHook(_ []string, defs Definitions) {
	defs.Define("WATCOM", "1")
	defs.Define("CMAKE_QUOTE_INCLUDE_PATHS", "1")
	defs.Define("CMAKE_MANGLE_OBJECT_FILE_NAMES", "1")
	defs.Define("CMAKE_MAKE_LINE_CONTINUE", "&")
	defs.Define("CMAKE_MAKE_SYMBOLIC_RULE", ".SYMBOLIC")
	defs.Define("CMAKE_GENERATOR_CC", "wcl386")
	defs.Define("CMAKE_GENERATOR_CXX", "wcl386")
}

func mingwLanguageHook(_ []string, defs Definitions) {
	defs.Define("MINGW", "1")
	defs.Define("CMAKE_GENERATOR_CC", "gcc")
	defs.Define("CMAKE_GENERATOR_CXX", "g++")
}

func nmakeLanguageHook(_ []string, defs Definitions) {
	defs.Define("CMAKE_GENERATOR_CC", "cl")
	defs.Define("CMAKE_GENERATOR_CXX", "cl")
	defs.Define("CMAKE_GENERATOR_RC", "rc")
}
