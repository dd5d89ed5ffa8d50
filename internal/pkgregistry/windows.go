//go:build windows

package pkgregistry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/buildgen/internal/errs"
	"golang.org/x/sys/windows/registry"
)

const defaultKind = KindWindowsRegistry

const packagesKey = `Software\Kitware\CMake\Packages\`

// WindowsBackend stores entries as string values named by their hash under
// HKEY_CURRENT_USER\Software\Kitware\CMake\Packages\<package>.
type WindowsBackend struct{}

func openWindowsBackend() (Backend, error) {
	return WindowsBackend{}, nil
}

func registryError(msg, key string, err error) error {
	return errs.Wrap(errs.KindIO, fmt.Sprintf("%s\n  HKEY_CURRENT_USER\\%s", msg, key), err)
}

// Has implements Backend.
func (WindowsBackend) Has(_ context.Context, pkg, hash string) (bool, error) {
	key := packagesKey + pkg
	k, err := registry.OpenKey(registry.CURRENT_USER, key, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, registryError("Cannot open registry key", key, err)
	}
	defer k.Close()

	_, _, err = k.GetStringValue(hash)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, registryError(fmt.Sprintf("Cannot read registry value \"%s\" under key", hash), key, err)
	}
	return true, nil
}

// Put implements Backend.
func (WindowsBackend) Put(_ context.Context, pkg, hash, content string) error {
	key := packagesKey + pkg
	k, _, err := registry.CreateKey(registry.CURRENT_USER, key, registry.SET_VALUE)
	if err != nil {
		return registryError("Cannot create/open registry key", key, err)
	}
	defer k.Close()

	if err := k.SetStringValue(hash, content); err != nil {
		return registryError(fmt.Sprintf("Cannot set registry value \"%s\" under key", hash), key, err)
	}
	return nil
}

// Entries implements Backend.
func (WindowsBackend) Entries(_ context.Context, pkg string) (map[string]string, error) {
	entries := make(map[string]string)
	key := packagesKey + pkg
	k, err := registry.OpenKey(registry.CURRENT_USER, key, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, registryError("Cannot open registry key", key, err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, registryError("Cannot enumerate registry values under key", key, err)
	}
	for _, name := range names {
		v, _, err := k.GetStringValue(name)
		if err != nil {
			continue
		}
		entries[name] = v
	}
	return entries, nil
}

// Close implements Backend.
func (WindowsBackend) Close() error { return nil }
