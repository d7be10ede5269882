package pydoc

import (
	"slices"
	"strings"
)

// LinkInheritance resolves the bases of every class in ctx, computes each
// class's ancestors and inherited members, and lets undocumented methods
// inherit the docstring of the method they override. Calling it again
// after more modules were added recomputes everything.
func LinkInheritance(ctx *Context) {
	mods := ctx.Modules()
	for _, m := range mods {
		for _, c := range m.Classes {
			c.Ancestors = nil
			c.Inherited = nil
			for _, f := range c.Methods {
				if f.docInherited {
					f.Doc, f.docInherited = "", false
				}
				f.InheritsFrom = nil
			}
			for _, base := range c.Bases {
				base.RefName = m.resolve(base.Expr)
				base.Class = ctx.FindClass(base.RefName)
			}
		}
	}

	lin := &linearizer{done: make(map[*Class][]*Class), active: make(map[*Class]bool)}
	for _, m := range mods {
		for _, c := range m.Classes {
			c.Ancestors = lin.mro(c)[1:]
		}
	}
	for _, m := range mods {
		for _, c := range m.Classes {
			c.Inherited = inheritedGroups(c)
			inheritDocs(c)
		}
	}
}

// RefName returns the fully qualified name of the class.
func (c *Class) RefName() string {
	return c.Module.Name + "." + c.QualName
}

// RefName returns the fully qualified name of the function.
func (f *Function) RefName() string {
	return f.Module.Name + "." + f.QualName
}

// resolve turns a base expression as written in the module into a
// qualified name, following the module's imports. Names that are neither
// imported nor defined locally (builtins such as object or Exception) are
// returned unchanged.
func (m *Module) resolve(expr string) string {
	expr = strings.TrimSpace(expr)
	if idx := strings.IndexByte(expr, '['); idx >= 0 {
		expr = strings.TrimSpace(expr[:idx])
	}
	head, rest, dotted := strings.Cut(expr, ".")
	if target, ok := m.imports[head]; ok {
		if dotted {
			return target + "." + rest
		}
		return target
	}
	if !dotted && m.Class(head) != nil {
		return m.Name + "." + head
	}
	if !dotted {
		for _, star := range m.stars {
			if m.ctx != nil && m.ctx.FindClass(star+"."+head) != nil {
				return star + "." + head
			}
		}
	}
	return expr
}

type linearizer struct {
	done   map[*Class][]*Class
	active map[*Class]bool
}

// mro returns c followed by its linked ancestors in method resolution
// order. C3 linearization is used; when the hierarchy has no consistent C3
// order the ancestors are listed depth-first, left to right.
func (l *linearizer) mro(c *Class) []*Class {
	if order, ok := l.done[c]; ok {
		return order
	}
	if l.active[c] {
		return []*Class{c}
	}
	l.active[c] = true
	defer delete(l.active, c)

	var (
		seqs    [][]*Class
		parents []*Class
	)
	for _, base := range c.Bases {
		if base.Class == nil || base.Class == c {
			continue
		}
		seqs = append(seqs, l.mro(base.Class))
		parents = append(parents, base.Class)
	}
	seqs = append(seqs, parents)

	order, ok := merge(seqs)
	if !ok || slices.Contains(order, c) {
		order = depthFirst(c)[1:]
	}
	order = append([]*Class{c}, order...)
	l.done[c] = order
	return order
}

// merge is the C3 merge step.
func merge(seqs [][]*Class) ([]*Class, bool) {
	var out []*Class
	for {
		nonEmpty := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				nonEmpty = append(nonEmpty, s)
			}
		}
		seqs = nonEmpty
		if len(seqs) == 0 {
			return out, true
		}
		var head *Class
		for _, s := range seqs {
			if !inTail(seqs, s[0]) {
				head = s[0]
				break
			}
		}
		if head == nil {
			return nil, false
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(seqs [][]*Class, c *Class) bool {
	for _, s := range seqs {
		for _, x := range s[1:] {
			if x == c {
				return true
			}
		}
	}
	return false
}

func depthFirst(c *Class) []*Class {
	seen := make(map[*Class]bool)
	var out []*Class
	var visit func(*Class)
	visit = func(k *Class) {
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
		for _, base := range k.Bases {
			if base.Class != nil {
				visit(base.Class)
			}
		}
	}
	visit(c)
	return out
}

// inheritedGroups lists, per ancestor, the members c gets from it and does
// not define itself. A member is attributed to the first ancestor in
// resolution order that defines it.
func inheritedGroups(c *Class) []InheritedGroup {
	seen := make(map[string]bool)
	for _, name := range c.MemberNames() {
		seen[name] = true
	}
	var groups []InheritedGroup
	for _, anc := range c.Ancestors {
		var members []InheritedMember
		for _, name := range anc.MemberNames() {
			if seen[name] {
				continue
			}
			seen[name] = true
			members = append(members, InheritedMember{
				Name:    name,
				RefName: anc.RefName() + "." + name,
			})
		}
		if len(members) > 0 {
			groups = append(groups, InheritedGroup{From: anc, Members: members})
		}
	}
	return groups
}

func inheritDocs(c *Class) {
	for _, f := range c.Methods {
		for _, anc := range c.Ancestors {
			overridden := anc.Method(f.Name)
			if overridden == nil {
				continue
			}
			if f.InheritsFrom == nil {
				f.InheritsFrom = overridden
			}
			if f.Doc == "" && overridden.Doc != "" {
				f.Doc, f.docInherited = overridden.Doc, true
			}
			if f.Doc != "" {
				break
			}
		}
	}
}
