package session

import (
	"sort"
	"time"
)

// Dashboard is the testing configuration shared by the ctest commands of a
// pass.
type Dashboard struct {
	// ConfigType is the configuration requested on the command line, the
	// equivalent of "ctest -C".
	ConfigType string
	TimeLimit  time.Duration
	SourceDir  string
	BuildDir   string

	values map[string]string
}

// NewDashboard creates an empty dashboard configuration.
func NewDashboard() *Dashboard {
	return &Dashboard{values: make(map[string]string)}
}

// Set records a handler option such as UseLaunchers.
func (d *Dashboard) Set(key, value string) {
	d.values[key] = value
}

// Get returns a handler option.
func (d *Dashboard) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the recorded option names, sorted.
func (d *Dashboard) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
