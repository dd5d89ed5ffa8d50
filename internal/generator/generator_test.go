package generator

import (
	"testing"

	"github.com/specialistvlad/buildgen/internal/ambient"
	"github.com/specialistvlad/buildgen/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_New(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, []string{"MinGW Makefiles", "NMake Makefiles", "Ninja", "Unix Makefiles", "Watcom WMake"}, c.Names())

	g, err := c.New("Watcom WMake")
	require.NoError(t, err)
	assert.Equal(t, "Watcom WMake", g.Name())
	assert.Equal(t, "Generates Watcom WMake makefiles.", g.Describe().Brief)

	_, err = c.New("Borland Makefiles")
	require.Error(t, err)
	assert.EqualError(t, err, `could not create generator named "Borland Makefiles"`)
	assert.Equal(t, errs.KindGeneratorCreation, errs.KindOf(err))

	assert.Panics(t, func() { c.Register("Ninja", nil) })
	assert.Len(t, c.Describe(), 5)
}

func TestGenerateBuildCommand(t *testing.T) {
	testCases := []struct {
		name string
		gen  string
		req  BuildRequest
		want string
	}{
		{
			name: "minimal",
			gen:  "Unix Makefiles",
			req:  BuildRequest{CMakeCommand: "cmake"},
			want: `"cmake" --build .`,
		},
		{
			name: "everything",
			gen:  "Unix Makefiles",
			req: BuildRequest{
				CMakeCommand: "/usr/bin/cmake", Config: "Debug", Parallel: "4",
				Target: "all", NativeFlags: "-j2", IgnoreErrors: true,
			},
			want: `"/usr/bin/cmake" --build . --config "Debug" --parallel "4" --target "all" -- -i -j2`,
		},
		{
			name: "native flags only",
			gen:  "Ninja",
			req:  BuildRequest{CMakeCommand: "cmake", Config: "Release", NativeFlags: "-v"},
			want: `"cmake" --build . --config "Release" -- -v`,
		},
		{
			name: "ignore errors without native flags",
			gen:  "NMake Makefiles",
			req:  BuildRequest{CMakeCommand: "cmake", IgnoreErrors: true},
			want: `"cmake" --build . -- /I`,
		},
	}

	c := NewCatalog()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := c.New(tc.gen)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.GenerateBuildCommand(tc.req))
		})
	}
}

func TestWatcom_EnableLanguage(t *testing.T) {
	g, err := NewCatalog().New("Watcom WMake")
	require.NoError(t, err)

	defs := ambient.New()
	defs.Define("CMAKE_MAKE_PROGRAM", "/opt/watcom/wmake")
	require.NoError(t, g.EnableLanguage([]string{"C", "CXX"}, defs, false))

	want := map[string]string{
		"WATCOM":                         "1",
		"CMAKE_QUOTE_INCLUDE_PATHS":      "1",
		"CMAKE_MANGLE_OBJECT_FILE_NAMES": "1",
		"CMAKE_MAKE_LINE_CONTINUE":       "&",
		"CMAKE_MAKE_SYMBOLIC_RULE":       ".SYMBOLIC",
		"CMAKE_GENERATOR_CC":             "wcl386",
		"CMAKE_GENERATOR_CXX":            "wcl386",
		"CMAKE_C_COMPILER":               "wcl386",
		"CMAKE_CXX_COMPILER":             "wcl386",
		"CMAKE_GENERATOR":                "Watcom WMake",
		"CMAKE_MAKE_PROGRAM":             "/opt/watcom/wmake",
	}
	for name, value := range want {
		got, ok := defs.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}
}

func TestEnableLanguage_Unsupported(t *testing.T) {
	g, err := NewCatalog().New("Unix Makefiles")
	require.NoError(t, err)

	defs := ambient.New()
	require.NoError(t, g.EnableLanguage([]string{"Swift"}, defs, true))
	assert.Equal(t, "make", defs.GetSafe("CMAKE_MAKE_PROGRAM"))

	err = g.EnableLanguage([]string{"Swift"}, defs, false)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
}

func TestWatcom_LocalGenerator(t *testing.T) {
	g, err := NewCatalog().New("Watcom WMake")
	require.NoError(t, err)

	root := g.CreateLocalGenerator("/b", nil)
	sub := g.CreateLocalGenerator("/b/sub", root)
	assert.Equal(t, []*LocalGenerator{root, sub}, g.LocalGenerators())
	assert.Same(t, root, sub.Parent)

	traits := sub.Traits()
	assert.True(t, traits.DefineWindowsNULL)
	assert.Equal(t, "-h", traits.MakeSilentFlag)
	assert.True(t, traits.IgnoreLibPrefix)
	assert.False(t, traits.PassMakeflags)
	assert.False(t, traits.UnixCD)

	assert.Equal(t, "MAKESILENT = -h", sub.SilentFlagDefinition())
	assert.Equal(t, "NUL", sub.NullDevice())
	assert.Equal(t, "all : .SYMBOLIC\n\t@cd .", sub.SymbolicRule("all"))
	assert.Equal(t, "foo.lib", sub.LibraryName("foo", "lib", ".lib"))
	assert.Len(t, sub.WrapInDirectory("/b/other", "wmake"), 3)
	assert.Contains(t, sub.Include("/b/sub/depend.make"), `!include "`)
	assert.Contains(t, sub.RecursiveMakeCall("/b/Makefile2", "all"), "$(MAKE) $(MAKESILENT) -f \"")
}

func TestUnix_LocalGenerator(t *testing.T) {
	g, err := NewCatalog().New("Unix Makefiles")
	require.NoError(t, err)
	lg := g.CreateLocalGenerator("/b", nil)

	assert.Equal(t, "/dev/null", lg.NullDevice())
	assert.Equal(t, "all :", lg.SymbolicRule("all"))
	assert.Equal(t, "libfoo.a", lg.LibraryName("foo", "lib", ".a"))
	assert.Equal(t, []string{"cd /b/sub && make"}, lg.WrapInDirectory("/b/sub", "make"))
	assert.Equal(t, "include /b/depend.make", lg.Include("/b/depend.make"))
	assert.Equal(t, "$(MAKE) -$(MAKEFLAGS) $(MAKESILENT) -f /b/Makefile2 all", lg.RecursiveMakeCall("/b/Makefile2", "all"))
}
