package pydoc

import (
	"slices"
	"strings"

	"github.com/agentflare-ai/pydoc-export/internal/pysrc"
)

type builder struct {
	mod  *Module
	file *pysrc.File
}

func (b *builder) module(body []*pysrc.Node) {
	b.mod.Doc = leadingDoc(body)
	b.collectImports(body)
	b.collectAll(body)
	b.definitions(body, make(map[string]*pysrc.Node))
}

// definitions documents the classes, functions and variables of body,
// descending into module-level blocks such as try/except fallbacks, version
// checks and with statements. owner maps each documented name to the body
// that defined it: a later definition in the same body replaces the earlier
// one, while a definition in another branch is ignored once the name is
// documented. `if __name__ == "__main__":` blocks are skipped.
func (b *builder) definitions(body []*pysrc.Node, owner map[string]*pysrc.Node) {
	m := b.mod
	scope := scopeOf(body)
	claim := func(name string) bool {
		prev, ok := owner[name]
		if ok && prev != scope {
			return false
		}
		owner[name] = scope
		return true
	}
	for i, n := range body {
		switch n.Kind {
		case pysrc.KindClass:
			if m.exported(n.Name) && claim(n.Name) {
				m.Classes = upsert(m.Classes, b.class(n), func(c *Class) bool { return c.Name == n.Name })
			}
		case pysrc.KindDef:
			if m.exported(n.Name) && claim(n.Name) {
				f := b.function(n, nil)
				f.Kind = KindFunction
				m.Functions = upsert(m.Functions, f, func(g *Function) bool { return g.Name == n.Name })
			}
		case pysrc.KindAssign:
			doc := docFor(body, i)
			for _, target := range n.Targets {
				if strings.Contains(target, ".") || !m.exported(target) {
					continue
				}
				if doc == "" && !m.listed(target) {
					continue
				}
				if !claim(target) {
					continue
				}
				v := &Variable{
					Name:       target,
					QualName:   target,
					Doc:        doc,
					Annotation: n.Annotation,
					Value:      n.Value,
					Kind:       KindModuleVar,
					Line:       n.Start,
				}
				m.Variables = upsert(m.Variables, v, func(w *Variable) bool { return w.Name == target })
			}
		case pysrc.KindBlock:
			if !isMainGuard(n) {
				b.definitions(n.Body, owner)
			}
		}
	}
}

// scopeOf identifies a statement list by its first node.
func scopeOf(body []*pysrc.Node) *pysrc.Node {
	if len(body) == 0 {
		return nil
	}
	return body[0]
}

func upsert[T any](list []T, item T, same func(T) bool) []T {
	if i := slices.IndexFunc(list, same); i >= 0 {
		list[i] = item
		return list
	}
	return append(list, item)
}

func isMainGuard(n *pysrc.Node) bool {
	if n.Keyword != "if" {
		return false
	}
	text := strings.NewReplacer(" ", "", "\t", "", "'", "\"").Replace(n.Text)
	return text == `if__name__=="__main__":` || text == `if"__main__"==__name__:`
}

// collectImports fills the import table. Imports nested in blocks
// (try/except ImportError, if TYPE_CHECKING) are included.
func (b *builder) collectImports(body []*pysrc.Node) {
	for _, n := range body {
		switch n.Kind {
		case pysrc.KindImport:
			for _, im := range n.Imports {
				b.addImport(im)
			}
		case pysrc.KindBlock:
			b.collectImports(n.Body)
		}
	}
}

func (b *builder) addImport(im pysrc.Import) {
	m := b.mod
	if im.Name == "" {
		if im.As != "" {
			m.imports[im.As] = im.Module
		} else {
			head := im.Bound()
			m.imports[head] = head
		}
		return
	}
	from := m.absModule(im.Level, im.Module)
	if from == "" {
		return
	}
	if im.Name == "*" {
		m.stars = append(m.stars, from)
		return
	}
	m.imports[im.Bound()] = from + "." + im.Name
}

// absModule resolves the module part of a possibly relative import.
func (m *Module) absModule(level int, mod string) string {
	if level == 0 {
		return mod
	}
	pkg := m.Name
	if !m.IsPackage {
		pkg = parentName(pkg)
	}
	for i := 1; i < level; i++ {
		pkg = parentName(pkg)
	}
	switch {
	case pkg == "":
		return mod
	case mod == "":
		return pkg
	default:
		return pkg + "." + mod
	}
}

func parentName(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return ""
}

func (b *builder) collectAll(body []*pysrc.Node) {
	for _, n := range body {
		if n.Kind != pysrc.KindAssign || len(n.Targets) != 1 || n.Targets[0] != "__all__" {
			continue
		}
		if names, ok := stringList(n.Value); ok {
			b.mod.All = names
		}
	}
}

// stringList decodes a list or tuple display of string literals.
func stringList(value string) ([]string, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return nil, false
	}
	switch value[0] {
	case '[', '(':
		value = value[1 : len(value)-1]
	default:
		return nil, false
	}
	names := []string{}
	for _, part := range pysrc.SplitTopLevel(value, ',') {
		s, ok := pysrc.StringValue(part)
		if !ok {
			return nil, false
		}
		names = append(names, s)
	}
	return names, true
}

func (m *Module) listed(name string) bool {
	return slices.Contains(m.All, name)
}

func (b *builder) class(n *pysrc.Node) *Class {
	c := &Class{
		Module:     b.mod,
		Name:       n.Name,
		QualName:   n.Name,
		Doc:        leadingDoc(n.Body),
		Decorators: n.Decorators,
		Source:     b.file.Lines(n.Start, n.End),
		Line:       n.Start,
	}
	for _, expr := range baseExprs(n.Args) {
		c.Bases = append(c.Bases, &Base{Expr: expr})
	}

	for i, child := range n.Body {
		switch child.Kind {
		case pysrc.KindDef:
			b.member(c, child)
		case pysrc.KindAssign:
			doc := docFor(n.Body, i)
			for _, target := range child.Targets {
				if strings.Contains(target, ".") || !isPublic(target) {
					continue
				}
				c.ClassVars = append(c.ClassVars, &Variable{
					Name:       target,
					QualName:   c.QualName + "." + target,
					Doc:        doc,
					Annotation: child.Annotation,
					Value:      child.Value,
					Kind:       KindClassVar,
					Line:       child.Start,
				})
			}
		}
	}
	return c
}

func (b *builder) member(c *Class, n *pysrc.Node) {
	switch {
	case n.Name == "__init__":
		c.Params = dropSelf(n.Args)
		if doc := leadingDoc(n.Body); doc != "" {
			if c.Doc != "" {
				c.Doc += "\n\n"
			}
			c.Doc += doc
		}
		b.instanceVars(c, n.Body)
		return
	case n.Name == "__call__":
	case !isPublic(n.Name):
		return
	}

	kind := KindMethod
	for _, deco := range n.Decorators {
		switch deco {
		case "staticmethod":
			kind = KindStaticMethod
		case "classmethod":
			kind = KindClassMethod
		case "property", "functools.cached_property", "cached_property":
			c.InstanceVars = append(c.InstanceVars, &Variable{
				Name:       n.Name,
				QualName:   c.QualName + "." + n.Name,
				Doc:        leadingDoc(n.Body),
				Annotation: n.Returns,
				Kind:       KindProperty,
				Line:       n.Start,
			})
			return
		}
		if strings.HasSuffix(deco, ".setter") || strings.HasSuffix(deco, ".deleter") {
			return
		}
	}
	f := b.function(n, c)
	f.Kind = kind
	if existing := c.Method(f.Name); existing != nil {
		*existing = *f
		return
	}
	c.Methods = append(c.Methods, f)
}

// instanceVars documents "self.x = ..." assignments of __init__ that carry
// a docstring.
func (b *builder) instanceVars(c *Class, body []*pysrc.Node) {
	for i, n := range body {
		if n.Kind != pysrc.KindAssign {
			continue
		}
		doc := docFor(body, i)
		if doc == "" {
			continue
		}
		for _, target := range n.Targets {
			name, ok := strings.CutPrefix(target, "self.")
			if !ok || strings.Contains(name, ".") || !isPublic(name) {
				continue
			}
			c.InstanceVars = append(c.InstanceVars, &Variable{
				Name:       name,
				QualName:   c.QualName + "." + name,
				Doc:        doc,
				Annotation: n.Annotation,
				Value:      n.Value,
				Kind:       KindInstanceVar,
				Line:       n.Start,
			})
		}
	}
}

func (b *builder) function(n *pysrc.Node, c *Class) *Function {
	f := &Function{
		Module:     b.mod,
		Class:      c,
		Name:       n.Name,
		QualName:   n.Name,
		Doc:        leadingDoc(n.Body),
		Params:     n.Args,
		Returns:    n.Returns,
		Async:      n.Async,
		Decorators: n.Decorators,
		Source:     b.file.Lines(n.Start, n.End),
		Line:       n.Start,
	}
	if c != nil {
		f.QualName = c.QualName + "." + n.Name
	}
	return f
}

// baseExprs returns the positional entries of a class's argument list;
// keyword arguments such as metaclass=Meta are dropped.
func baseExprs(args string) []string {
	var out []string
	for _, part := range pysrc.SplitTopLevel(args, ',') {
		if part == "" || strings.HasPrefix(part, "*") {
			continue
		}
		if key, _, ok := strings.Cut(part, "="); ok && isName(strings.TrimSpace(key)) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func dropSelf(args string) string {
	parts := pysrc.SplitTopLevel(args, ',')
	if len(parts) > 0 && (parts[0] == "self" || strings.HasPrefix(parts[0], "self:")) {
		parts = parts[1:]
	}
	return strings.Join(parts, ", ")
}

func leadingDoc(body []*pysrc.Node) string {
	if len(body) > 0 && body[0].Kind == pysrc.KindString {
		return CleanDoc(body[0].Str)
	}
	return ""
}

// docFor returns the docstring of the assignment body[i]: a string
// statement right after it, or the "#:" comments right above it.
func docFor(body []*pysrc.Node, i int) string {
	if i+1 < len(body) && body[i+1].Kind == pysrc.KindString {
		return CleanDoc(body[i+1].Str)
	}
	var lines []string
	for _, c := range body[i].Comments {
		if rest, ok := strings.CutPrefix(c, "#:"); ok {
			lines = append(lines, strings.TrimPrefix(rest, " "))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CleanDoc normalizes docstring indentation: tabs are expanded, the
// common indentation of all lines after the first is removed and leading
// and trailing blank lines are dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")
	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if indent := len(line) - len(trimmed); margin < 0 || indent < margin {
			margin = indent
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
