// Package generator composes native build invocations for the supported
// build tool backends. Every backend is a trait bundle plus an optional
// EnableLanguage hook on top of one shared implementation.
package generator

import "runtime"

// LocalTraits parameterizes the per-directory generators of a backend.
type LocalTraits struct {
	DefineWindowsNULL bool
	MakeSilentFlag    string
	IgnoreLibPrefix   bool
	PassMakeflags     bool
	UnixCD            bool
}

// Traits is the immutable description of a backend.
type Traits struct {
	Name  string
	Brief string

	FindMakeProgramFile  string
	DefaultMakeProgram   string
	IncludeDirective     string
	EmptyRuleHackCommand string
	IgnoreErrorsFlag     string

	ToolSupportsColor bool
	NeedSymbolicMark  bool
	WindowsShell      bool
	WatcomWMake       bool
	MultiConfig       bool

	Local LocalTraits
}

var onWindows = runtime.GOOS == "windows"

var unixMakefiles = Traits{
	Name:                 "Unix Makefiles",
	Brief:                "Generates standard UNIX makefiles.",
	FindMakeProgramFile:  "CMakeUnixFindMake.cmake",
	DefaultMakeProgram:   "make",
	IncludeDirective:     "include",
	IgnoreErrorsFlag:     "-i",
	ToolSupportsColor:    true,
	Local: LocalTraits{
		MakeSilentFlag: "-s",
		PassMakeflags:  true,
		UnixCD:         true,
	},
}

var mingwMakefiles = Traits{
	Name:                "MinGW Makefiles",
	Brief:               "Generates a make file for use with mingw32-make.",
	FindMakeProgramFile: "CMakeMinGWFindMake.cmake",
	DefaultMakeProgram:  "mingw32-make",
	IncludeDirective:    "include",
	IgnoreErrorsFlag:    "-i",
	ToolSupportsColor:   true,
	WindowsShell:        true,
	Local: LocalTraits{
		DefineWindowsNULL: true,
		MakeSilentFlag:    "-s",
		UnixCD:            true,
	},
}

var nmakeMakefiles = Traits{
	Name:                 "NMake Makefiles",
	Brief:                "Generates NMake makefiles.",
	FindMakeProgramFile:  "CMakeNMakeFindMake.cmake",
	DefaultMakeProgram:   "nmake",
	IncludeDirective:     "include",
	EmptyRuleHackCommand: "@cd .",
	IgnoreErrorsFlag:     "/I",
	WindowsShell:         true,
	Local: LocalTraits{
		DefineWindowsNULL: true,
		MakeSilentFlag:    "/nologo",
		IgnoreLibPrefix:   true,
	},
}

var watcomWMake = Traits{
	Name:                 "Watcom WMake",
	Brief:                "Generates Watcom WMake makefiles.",
	FindMakeProgramFile:  "CMakeFindWMake.cmake",
	DefaultMakeProgram:   "wmake",
	IncludeDirective:     "!include",
	EmptyRuleHackCommand: "@cd .",
	IgnoreErrorsFlag:     "-i",
	ToolSupportsColor:    true,
	NeedSymbolicMark:     true,
	WindowsShell:         onWindows,
	WatcomWMake:          true,
	Local: LocalTraits{
		DefineWindowsNULL: true,
		MakeSilentFlag:    "-h",
		IgnoreLibPrefix:   true,
	},
}

var ninja = Traits{
	Name:                "Ninja",
	Brief:               "Generates build.ninja files.",
	FindMakeProgramFile: "CMakeNinjaFindMake.cmake",
	DefaultMakeProgram:  "ninja",
	IncludeDirective:    "include",
	IgnoreErrorsFlag:    "-k0",
	ToolSupportsColor:   true,
	Local: LocalTraits{
		UnixCD: true,
	},
}
