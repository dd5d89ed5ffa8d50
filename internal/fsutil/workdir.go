package fsutil

import (
	"fmt"
	"os"
)

// PushWorkingDirectory changes the process working directory to dir and
// returns a function restoring the previous one. The restore function must
// be called on every exit path, typically with defer.
func PushWorkingDirectory(dir string) (func() error, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("change directory to %q: %w", dir, err)
	}
	return func() error {
		if err := os.Chdir(prev); err != nil {
			return fmt.Errorf("restore working directory %q: %w", prev, err)
		}
		return nil
	}, nil
}
