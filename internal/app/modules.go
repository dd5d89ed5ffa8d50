package app

import (
	"github.com/specialistvlad/buildgen/internal/registry"
	"github.com/specialistvlad/buildgen/modules/ctest_build"
	"github.com/specialistvlad/buildgen/modules/ctest_submit"
	"github.com/specialistvlad/buildgen/modules/ctest_test"
	"github.com/specialistvlad/buildgen/modules/export"
)

// coreModules is the definitive list of all modules that are compiled into
// the buildgen binary.
var coreModules = []registry.Module{
	&export.Module{},
	&ctest_build.Module{},
	&ctest_test.Module{},
	&ctest_submit.Module{},
}
