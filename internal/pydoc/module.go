package pydoc

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/agentflare-ai/pydoc-export/internal/pysrc"
)

// Module documents one Python source file.
type Module struct {
	Name      string
	Path      string
	Doc       string
	Source    string
	IsPackage bool

	Variables []*Variable
	Functions []*Function
	Classes   []*Class

	// All is the module's __all__ list, nil when the module does not
	// declare one.
	All []string

	imports map[string]string
	stars   []string
	ctx     *Context
}

// Class documents a class definition.
type Class struct {
	Module     *Module
	Name       string
	QualName   string
	Doc        string
	Params     string
	Decorators []string
	Bases      []*Base

	Methods      []*Function
	ClassVars    []*Variable
	InstanceVars []*Variable

	// Ancestors and Inherited are filled by LinkInheritance.
	Ancestors []*Class
	Inherited []InheritedGroup

	Source string
	Line   int
}

// Base is one entry of a class's base list.
type Base struct {
	// Expr is the base as written in the source.
	Expr string
	// RefName is Expr resolved through the module's imports.
	RefName string
	// Class is set when RefName names a class of the same Context.
	Class *Class
}

// InheritedGroup lists the members a class inherits from one ancestor.
type InheritedGroup struct {
	From    *Class
	Members []InheritedMember
}

// InheritedMember names one inherited member and its qualified name.
type InheritedMember struct {
	Name    string
	RefName string
}

// FunctionKind distinguishes module functions from the kinds of methods.
type FunctionKind string

const (
	KindFunction     FunctionKind = "function"
	KindMethod       FunctionKind = "method"
	KindClassMethod  FunctionKind = "classmethod"
	KindStaticMethod FunctionKind = "staticmethod"
)

// Function documents a module function or a method.
type Function struct {
	Module     *Module
	Class      *Class
	Name       string
	QualName   string
	Doc        string
	Params     string
	Returns    string
	Async      bool
	Decorators []string
	Kind       FunctionKind

	// InheritsFrom is the ancestor method this method overrides.
	InheritsFrom *Function
	docInherited bool

	Source string
	Line   int
}

// Signature renders the parameter list and return annotation.
func (f *Function) Signature() string {
	sig := "(" + f.Params + ")"
	if f.Returns != "" {
		sig += " -> " + f.Returns
	}
	return sig
}

// VariableKind tells where a variable is defined.
type VariableKind string

const (
	KindModuleVar   VariableKind = "module"
	KindClassVar    VariableKind = "class"
	KindInstanceVar VariableKind = "instance"
	KindProperty    VariableKind = "property"
)

// Variable documents a module, class or instance variable, or a property.
type Variable struct {
	Name       string
	QualName   string
	Doc        string
	Annotation string
	Value      string
	Kind       VariableKind
	Line       int
}

// NewModule parses src, builds the module documentation and registers it in
// ctx.
func NewModule(ctx *Context, name, path string, src []byte) (*Module, error) {
	m, err := ParseModule(name, path, src)
	if err != nil {
		return nil, err
	}
	ctx.Add(m)
	return m, nil
}

// ParseModule builds the documentation of one module without registering
// it in a Context.
func ParseModule(name, path string, src []byte) (*Module, error) {
	f, err := pysrc.Parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	m := &Module{
		Name:      name,
		Path:      path,
		Source:    string(src),
		IsPackage: filepath.Base(path) == "__init__.py",
		imports:   make(map[string]string),
	}
	b := &builder{mod: m, file: f}
	b.module(f.Body)
	return m, nil
}

// Class returns the documented class with the given short name, or nil.
func (m *Module) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Function returns the documented module function with the given name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Submodules returns the modules of the same Context that are direct
// children of a package module, sorted by name. Plain modules have none.
func (m *Module) Submodules() []*Module {
	if !m.IsPackage || m.ctx == nil {
		return nil
	}
	prefix := m.Name + "."
	var subs []*Module
	for _, sub := range m.ctx.Modules() {
		rest, ok := strings.CutPrefix(sub.Name, prefix)
		if ok && rest != "" && !strings.Contains(rest, ".") {
			subs = append(subs, sub)
		}
	}
	return subs
}

// Parent returns the package module that contains m, or nil when it is
// not registered in the same Context.
func (m *Module) Parent() *Module {
	if m.ctx == nil {
		return nil
	}
	name := parentName(m.Name)
	if name == "" {
		return nil
	}
	if p := m.ctx.Module(name); p != nil && p.IsPackage {
		return p
	}
	return nil
}

// Imports returns the local names bound by import statements and the
// qualified names they refer to.
func (m *Module) Imports() map[string]string {
	out := make(map[string]string, len(m.imports))
	for k, v := range m.imports {
		out[k] = v
	}
	return out
}

// Method returns the method with the given name, or nil.
func (c *Class) Method(name string) *Function {
	for _, f := range c.Methods {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// MemberNames lists methods, class variables and instance variables in
// definition order.
func (c *Class) MemberNames() []string {
	names := make([]string, 0, len(c.Methods)+len(c.ClassVars)+len(c.InstanceVars))
	for _, v := range c.ClassVars {
		names = append(names, v.Name)
	}
	for _, v := range c.InstanceVars {
		names = append(names, v.Name)
	}
	for _, f := range c.Methods {
		names = append(names, f.Name)
	}
	return names
}

func isPublic(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func (m *Module) exported(name string) bool {
	if m.All != nil {
		return slices.Contains(m.All, name)
	}
	return isPublic(name)
}
