// Package policy resolves versioned behavior switches into OLD, WARN or NEW
// decisions for one configure pass.
package policy

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgen/internal/errs"
	"golang.org/x/mod/semver"
)

// ID names a policy, e.g. CMP0103.
type ID string

const (
	CMP0022 ID = "CMP0022"
	CMP0061 ID = "CMP0061"
	CMP0090 ID = "CMP0090"
	CMP0103 ID = "CMP0103"
)

// Status is the resolved decision for a policy.
type Status int

const (
	Warn Status = iota
	Old
	New
)

func (s Status) String() string {
	switch s {
	case Old:
		return "OLD"
	case New:
		return "NEW"
	default:
		return "WARN"
	}
}

// ParseStatus accepts OLD or NEW, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(s) {
	case "OLD":
		return Old, true
	case "NEW":
		return New, true
	}
	return Warn, false
}

type definition struct {
	introduced string
	summary    string
}

var table = map[ID]definition{
	CMP0022: {"2.8.12", "INTERFACE_LINK_LIBRARIES defines the link interface."},
	CMP0061: {"3.4", "CTest does not by default tell make to ignore errors (-i)."},
	CMP0090: {"3.15", "export(PACKAGE) does not populate package registry by default."},
	CMP0103: {"3.18", "Multiple calls to export command with same FILE without APPEND is no longer allowed."},
}

// IDs returns every known policy id in ascending order.
func IDs() []ID {
	return []ID{CMP0022, CMP0061, CMP0090, CMP0103}
}

// Lookup parses a policy id supplied by configuration.
func Lookup(s string) (ID, error) {
	id := ID(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := table[id]; !ok {
		return "", errs.Configuration("Policy %q is not known to this version.", s)
	}
	return id, nil
}

// Introduced returns the version that introduced the policy.
func Introduced(id ID) string {
	return mustDefinition(id).introduced
}

// Warning renders the compatibility warning issued when a policy is unset.
func Warning(id ID) string {
	def := mustDefinition(id)
	return fmt.Sprintf("Policy %s is not set: %s  "+
		"Run \"cmake --help-policy %s\" for policy details.  "+
		"Use the cmake_policy command to set the policy and suppress this warning.",
		id, def.summary, id)
}

func mustDefinition(id ID) definition {
	def, ok := table[id]
	if !ok {
		panic(fmt.Sprintf("policy: unknown policy id %q", id))
	}
	return def
}

// canonicalVersion converts "3.18" into the "v3.18" form semver expects.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	// Tweak levels are dropped.
	if parts := strings.SplitN(v, ".", 4); len(parts) == 4 {
		v = strings.Join(parts[:3], ".")
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
