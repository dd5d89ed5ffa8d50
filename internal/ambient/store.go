// Package ambient holds the variable store a configure pass reads its
// settings from. Values are plain strings; lists use ';' as a separator and
// booleans follow the usual ON/OFF truthiness rules.
package ambient

import (
	"sort"
	"strconv"
	"strings"
)

// Store is a flat variable scope. The zero value is not usable; call New.
type Store struct {
	vars map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{vars: make(map[string]string)}
}

// Define sets a variable, replacing any previous value.
func (s *Store) Define(name, value string) {
	s.vars[name] = value
}

// Unset removes a variable.
func (s *Store) Unset(name string) {
	delete(s.vars, name)
}

// Get returns the value of a variable and whether it is defined.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// GetSafe returns the value of a variable, or "" when undefined.
func (s *Store) GetSafe(name string) string {
	return s.vars[name]
}

// Nonempty returns the value of a variable only when it is defined and not
// empty.
func (s *Store) Nonempty(name string) (string, bool) {
	v, ok := s.vars[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// IsOn reports whether the variable holds a true constant.
func (s *Store) IsOn(name string) bool {
	v, ok := s.vars[name]
	return ok && IsOn(v)
}

// IsOff reports whether the variable is undefined or holds a false constant.
func (s *Store) IsOff(name string) bool {
	v, ok := s.vars[name]
	return !ok || IsOff(v)
}

// List returns the variable expanded as a ';' separated list.
func (s *Store) List(name string) []string {
	return ExpandList(s.vars[name])
}

// Names returns all defined variable names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsOn reports whether value is one of 1, ON, YES, TRUE, Y or a non-zero
// number.
func IsOn(value string) bool {
	switch strings.ToUpper(value) {
	case "1", "ON", "YES", "TRUE", "Y":
		return true
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f != 0
	}
	return false
}

// IsOff reports whether value is empty, one of 0, OFF, NO, FALSE, N, IGNORE,
// NOTFOUND, or ends in -NOTFOUND.
func IsOff(value string) bool {
	upper := strings.ToUpper(value)
	switch upper {
	case "", "0", "OFF", "NO", "FALSE", "N", "IGNORE", "NOTFOUND":
		return true
	}
	if strings.HasSuffix(upper, "-NOTFOUND") {
		return true
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f == 0
	}
	return false
}

// ExpandList splits a ';' separated list, dropping empty elements.
func ExpandList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ";") {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// JoinList is the inverse of ExpandList.
func JoinList(items []string) string {
	return strings.Join(items, ";")
}
