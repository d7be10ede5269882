package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
)

// Text renders m as a reStructuredText document using the Python domain
// directives (py:class, py:function, ...).
func Text(m *pydoc.Module, opts Options) (string, error) {
	var b strings.Builder
	r := &rstRenderer{w: &b, opts: opts}
	r.module(m)
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

type rstRenderer struct {
	w    io.Writer
	opts Options
}

func (r *rstRenderer) module(m *pydoc.Module) {
	kind := "Module"
	if m.IsPackage {
		kind = "Package"
	}
	r.title(fmt.Sprintf("%s ``%s``", kind, m.Name), '=')
	fmt.Fprintf(r.w, ".. py:module:: %s\n\n", m.Name)
	r.body(m.Doc, 0)
	r.source(m.Source, 0)

	if subs := m.Submodules(); len(subs) > 0 {
		r.title("Sub-modules", '-')
		for _, sub := range subs {
			fmt.Fprintf(r.w, "* :py:mod:`%s`\n", sub.Name)
		}
		fmt.Fprintln(r.w)
	}
	if len(m.Variables) > 0 {
		r.title("Global variables", '-')
		for _, v := range m.Variables {
			r.variable("data", v, 0)
		}
	}
	if len(m.Functions) > 0 {
		r.title("Functions", '-')
		for _, f := range m.Functions {
			r.function("function", f, 0)
		}
	}
	if len(m.Classes) > 0 {
		r.title("Classes", '-')
		for _, c := range m.Classes {
			r.class(c)
		}
	}
}

func (r *rstRenderer) title(text string, underline rune) {
	fmt.Fprintf(r.w, "%s\n%s\n\n", text, strings.Repeat(string(underline), utf8.RuneCountInString(text)))
}

func (r *rstRenderer) class(c *pydoc.Class) {
	fmt.Fprintf(r.w, ".. py:class:: %s(%s)\n", c.QualName, c.Params)
	fmt.Fprintln(r.w)
	if len(c.Bases) > 0 {
		bases := make([]string, 0, len(c.Bases))
		for _, base := range c.Bases {
			ref := base.RefName
			if ref == "" {
				ref = base.Expr
			}
			bases = append(bases, fmt.Sprintf(":py:class:`%s`", ref))
		}
		fmt.Fprintf(r.w, "   Bases: %s\n\n", strings.Join(bases, ", "))
	}
	r.body(c.Doc, 3)
	r.source(c.Source, 3)
	if len(c.Ancestors) > 0 {
		names := make([]string, 0, len(c.Ancestors))
		for _, anc := range c.Ancestors {
			names = append(names, fmt.Sprintf(":py:class:`%s`", anc.RefName()))
		}
		fmt.Fprintf(r.w, "   Ancestors: %s\n\n", strings.Join(names, ", "))
	}
	for _, v := range c.ClassVars {
		r.variable("attribute", v, 3)
	}
	for _, v := range c.InstanceVars {
		r.variable("attribute", v, 3)
	}
	for _, f := range c.Methods {
		r.function("method", f, 3)
	}
	for _, group := range c.Inherited {
		names := make([]string, 0, len(group.Members))
		for _, member := range group.Members {
			names = append(names, fmt.Sprintf(":py:obj:`%s <%s>`", member.Name, member.RefName))
		}
		fmt.Fprintf(r.w, "   Inherited from :py:class:`%s`: %s\n\n", group.From.RefName(), strings.Join(names, ", "))
	}
}

func (r *rstRenderer) function(directive string, f *pydoc.Function, indent int) {
	pad := strings.Repeat(" ", indent)
	name := f.Name
	if directive == "function" {
		name = f.QualName
	}
	fmt.Fprintf(r.w, "%s.. py:%s:: %s%s\n", pad, directive, name, f.Signature())
	if f.Async {
		fmt.Fprintf(r.w, "%s   :async:\n", pad)
	}
	switch f.Kind {
	case pydoc.KindClassMethod:
		fmt.Fprintf(r.w, "%s   :classmethod:\n", pad)
	case pydoc.KindStaticMethod:
		fmt.Fprintf(r.w, "%s   :staticmethod:\n", pad)
	}
	fmt.Fprintln(r.w)
	if f.InheritsFrom != nil {
		fmt.Fprintf(r.w, "%s   Inherited from :py:meth:`%s`.\n\n", pad, f.InheritsFrom.RefName())
	}
	r.body(f.Doc, indent+3)
	r.source(f.Source, indent+3)
}

func (r *rstRenderer) variable(directive string, v *pydoc.Variable, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(r.w, "%s.. py:%s:: %s\n", pad, directive, v.Name)
	if v.Annotation != "" {
		fmt.Fprintf(r.w, "%s   :type: %s\n", pad, v.Annotation)
	}
	if v.Value != "" && !strings.Contains(v.Value, "\n") {
		fmt.Fprintf(r.w, "%s   :value: %s\n", pad, v.Value)
	}
	fmt.Fprintln(r.w)
	r.body(v.Doc, indent+3)
}

func (r *rstRenderer) body(doc string, indent int) {
	if doc == "" {
		return
	}
	fmt.Fprintf(r.w, "%s\n\n", indentLines(doc, indent))
}

func (r *rstRenderer) source(src string, indent int) {
	if !r.opts.ShowSource || strings.TrimSpace(src) == "" {
		return
	}
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(r.w, "%s.. code-block:: python\n\n%s\n\n", pad, indentLines(src, indent+3))
}

func indentLines(text string, indent int) string {
	if indent == 0 {
		return text
	}
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
