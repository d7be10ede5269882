// Package pydoc builds documentation objects for Python modules from their
// source text.
//
// Modules are registered in a Context, the shared linking context that
// LinkInheritance walks to resolve base classes across module boundaries.
// A Context is an explicit value passed to every call that needs it; there
// is no package-level registry.
package pydoc

import (
	"sort"
	"strings"
)

// Context holds every module built for one documentation run, keyed by
// qualified module name.
type Context struct {
	modules map[string]*Module
}

// NewContext returns an empty linking context.
func NewContext() *Context {
	return &Context{modules: make(map[string]*Module)}
}

// Add registers m under its name and binds it to the context. A module
// already registered under the same name is replaced and returned.
func (c *Context) Add(m *Module) *Module {
	prev := c.modules[m.Name]
	c.modules[m.Name] = m
	m.ctx = c
	if prev != nil && prev != m {
		prev.ctx = nil
		return prev
	}
	return nil
}

// Module returns the module registered under name, or nil.
func (c *Context) Module(name string) *Module {
	return c.modules[name]
}

// Len reports the number of registered modules.
func (c *Context) Len() int {
	return len(c.modules)
}

// Modules returns the registered modules sorted by name.
func (c *Context) Modules() []*Module {
	mods := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool {
		return mods[i].Name < mods[j].Name
	})
	return mods
}

// FindClass resolves a qualified class name such as "pkg.mod.Class". Names
// re-exported through imports ("from .impl import Class" in pkg/__init__.py)
// are followed.
func (c *Context) FindClass(refname string) *Class {
	return c.findClass(refname, 0)
}

const maxReexportDepth = 8

func (c *Context) findClass(refname string, depth int) *Class {
	if depth > maxReexportDepth {
		return nil
	}
	idx := strings.LastIndexByte(refname, '.')
	if idx <= 0 {
		return nil
	}
	m := c.modules[refname[:idx]]
	if m == nil {
		return nil
	}
	name := refname[idx+1:]
	if cls := m.Class(name); cls != nil {
		return cls
	}
	if target, ok := m.imports[name]; ok && target != refname {
		return c.findClass(target, depth+1)
	}
	for _, star := range m.stars {
		if cls := c.findClass(star+"."+name, depth+1); cls != nil {
			return cls
		}
	}
	return nil
}
