package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildgen/internal/config"
	"github.com/specialistvlad/buildgen/internal/hcl_adapter"
	"github.com/specialistvlad/buildgen/internal/yaml_adapter"
)

// Project file formats.
const (
	FormatAuto = "auto"
	FormatHCL  = "hcl"
	FormatYAML = "yaml"
)

// NewLoader returns the loader for format. The auto format reads HCL files
// first, then YAML files, and merges both.
func NewLoader(format string) (config.Loader, error) {
	switch format {
	case FormatHCL:
		return hcl_adapter.NewLoader(), nil
	case FormatYAML:
		return yaml_adapter.NewLoader(), nil
	case FormatAuto, "":
		return multiLoader{hcl_adapter.NewLoader(), yaml_adapter.NewLoader()}, nil
	}
	return nil, fmt.Errorf("no loader for format %q", format)
}

type multiLoader []config.Loader

func (m multiLoader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	merged := &config.Model{}
	for _, l := range m {
		part, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := merged.Merge(part); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
