package generator

import (
	"sort"

	"github.com/specialistvlad/buildgen/internal/errs"
)

// Factory creates a fresh global generator.
type Factory func() Generator

// Catalog maps generator names to factories.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog returns a catalog holding every built-in backend.
func NewCatalog() *Catalog {
	c := &Catalog{factories: make(map[string]Factory)}
	c.Register(unixMakefiles.Name, func() Generator { return newGlobal(unixMakefiles, nil) })
	c.Register(mingwMakefiles.Name, func() Generator { return newGlobal(mingwMakefiles, mingwLanguageHook) })
	c.Register(nmakeMakefiles.Name, func() Generator { return newGlobal(nmakeMakefiles, nmakeLanguageHook) })
	c.Register(watcomWMake.Name, func() Generator { return newGlobal(watcomWMake, watcomLanguageHook) })
	c.Register(ninja.Name, func() Generator { return newGlobal(ninja, nil) })
	return c
}

// Register adds a backend. Registering a name twice is a programming error.
func (c *Catalog) Register(name string, f Factory) {
	if _, exists := c.factories[name]; exists {
		panic("generator: duplicate registration of " + name)
	}
	c.factories[name] = f
}

// New creates the named generator.
func (c *Catalog) New(name string) (Generator, error) {
	f, ok := c.factories[name]
	if !ok {
		return nil, errs.Newf(errs.KindGeneratorCreation, "could not create generator named \"%s\"", name)
	}
	return f(), nil
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the documentation of every backend, sorted by name.
func (c *Catalog) Describe() []Documentation {
	docs := make([]Documentation, 0, len(c.factories))
	for _, name := range c.Names() {
		docs = append(docs, c.factories[name]().Describe())
	}
	return docs
}
