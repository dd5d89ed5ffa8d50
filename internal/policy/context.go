package policy

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Defaults supplies the CMAKE_POLICY_DEFAULT_CMPNNNN values of the ambient
// store. A nil Defaults means no defaults are set.
type Defaults interface {
	Get(name string) (string, bool)
}

// Context is the policy snapshot of one configure pass. It is created once
// and passed explicitly to every component that needs a decision.
type Context struct {
	minimumRequired string
	overrides       map[ID]Status
	defaults        Defaults
	cache           map[ID]Status
}

// NewContext captures the minimum required version, the explicit policy
// settings and the ambient defaults. Overrides for unknown ids panic.
func NewContext(minimumRequired string, overrides map[ID]Status, defaults Defaults) *Context {
	c := &Context{
		minimumRequired: canonicalVersion(minimumRequired),
		overrides:       make(map[ID]Status, len(overrides)),
		defaults:        defaults,
		cache:           make(map[ID]Status),
	}
	for id, status := range overrides {
		mustDefinition(id)
		c.overrides[id] = status
	}
	return c
}

// Resolve returns the decision for id. The first call computes it; later
// calls return the cached value.
func (c *Context) Resolve(id ID) Status {
	if status, ok := c.cache[id]; ok {
		return status
	}
	status := c.compute(id)
	c.cache[id] = status
	return status
}

func (c *Context) compute(id ID) Status {
	def := mustDefinition(id)
	if status, ok := c.overrides[id]; ok {
		return status
	}
	if c.minimumRequired != "" && semver.Compare(c.minimumRequired, canonicalVersion(def.introduced)) >= 0 {
		return New
	}
	if c.defaults != nil {
		if v, ok := c.defaults.Get(fmt.Sprintf("CMAKE_POLICY_DEFAULT_%s", id)); ok {
			if status, ok := ParseStatus(v); ok {
				return status
			}
		}
	}
	return Warn
}

// IgnoreErrors reports whether legacy ctest builds pass the make
// ignore-errors flag.
func (c *Context) IgnoreErrors() bool {
	return c.Resolve(CMP0061) != New
}
