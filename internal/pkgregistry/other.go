//go:build !windows

package pkgregistry

import "github.com/specialistvlad/buildgen/internal/errs"

const defaultKind = KindFile

func openWindowsBackend() (Backend, error) {
	return nil, errs.Configuration("the Windows registry backend is only available on Windows")
}
