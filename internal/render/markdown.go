package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
)

type markdownRenderer struct {
	options Options
	mod     *pydoc.Module
}

// Markdown writes m as Markdown, suitable for terminal rendering.
func Markdown(w io.Writer, m *pydoc.Module, opts Options) {
	r := &markdownRenderer{options: opts, mod: m}
	r.renderModule(w)
}

// MarkdownSymbol writes the class, function or method ("Class.method") of m
// called symbol. It reports whether m defines it.
func MarkdownSymbol(w io.Writer, m *pydoc.Module, symbol string, opts Options) bool {
	r := &markdownRenderer{options: opts, mod: m}
	name, method, _ := strings.Cut(symbol, ".")
	if c := m.Class(name); c != nil {
		if method == "" {
			r.renderClassDoc(w, c)
			return true
		}
		if f := c.Method(method); f != nil {
			r.renderFuncDoc(w, f)
			return true
		}
		return false
	}
	if f := m.Function(name); f != nil && method == "" {
		r.renderFuncDoc(w, f)
		return true
	}
	return false
}

func (r *markdownRenderer) renderModule(w io.Writer) {
	fmt.Fprintf(w, "# module %s\n\n", r.mod.Name)
	fmt.Fprintf(w, "`import %s`\n\n", r.mod.Name)
	if doc := ToMarkdown(r.mod.Doc); doc != "" {
		fmt.Fprintln(w, doc)
		fmt.Fprintln(w)
	}
	r.renderModuleSummary(w)
	if subs := r.mod.Submodules(); len(subs) > 0 {
		fmt.Fprintf(w, "## Sub-modules\n\n")
		for _, sub := range subs {
			fmt.Fprintln(w, bulletLine(sub.Name, Summary(sub.Doc)))
		}
		fmt.Fprintln(w)
	}
	r.renderVariablesSection(w, "## Variables", r.mod.Variables)
	r.renderFuncsSection(w, "## Functions", r.mod.Functions)
	for _, c := range r.mod.Classes {
		r.renderClassDoc(w, c)
	}
}

func (r *markdownRenderer) renderModuleSummary(w io.Writer) {
	var entries []string
	for _, v := range r.mod.Variables {
		entries = append(entries, bulletLine(v.Name, Summary(v.Doc)))
	}
	for _, f := range r.mod.Functions {
		entries = append(entries, bulletLine(signature(f), Summary(f.Doc)))
	}
	for _, c := range r.mod.Classes {
		entries = append(entries, bulletLine("class "+c.Name, Summary(c.Doc)))
	}
	if len(entries) == 0 {
		return
	}
	sort.Strings(entries)
	for _, entry := range entries {
		fmt.Fprintln(w, entry)
	}
	fmt.Fprintln(w)
}

func (r *markdownRenderer) renderClassDoc(w io.Writer, c *pydoc.Class) {
	fmt.Fprintf(w, "## class %s\n\n", c.Name)
	r.writeCodeBlock(w, classHeader(c))
	if len(c.Bases) > 0 {
		bases := make([]string, 0, len(c.Bases))
		for _, base := range c.Bases {
			ref := base.RefName
			if ref == "" {
				ref = base.Expr
			}
			bases = append(bases, "`"+ref+"`")
		}
		fmt.Fprintf(w, "Bases: %s\n\n", strings.Join(bases, ", "))
	}
	if doc := ToMarkdown(c.Doc); doc != "" {
		fmt.Fprintln(w, doc)
		fmt.Fprintln(w)
	}
	if r.options.ShowSource {
		r.writeCodeBlock(w, c.Source)
	}
	r.renderVariablesSection(w, "### Class variables", c.ClassVars)
	r.renderVariablesSection(w, "### Instance variables", c.InstanceVars)
	r.renderFuncsSection(w, "### Methods", c.Methods)
	for _, group := range c.Inherited {
		names := make([]string, 0, len(group.Members))
		for _, member := range group.Members {
			names = append(names, "`"+member.Name+"`")
		}
		fmt.Fprintf(w, "Inherited from `%s`: %s\n\n", group.From.RefName(), strings.Join(names, ", "))
	}
}

func (r *markdownRenderer) renderVariablesSection(w io.Writer, title string, vars []*pydoc.Variable) {
	if len(vars) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n\n", title)
	for _, v := range vars {
		line := v.Name
		if v.Annotation != "" {
			line += ": " + v.Annotation
		}
		fmt.Fprintln(w, bulletLine(line, Summary(v.Doc)))
	}
	fmt.Fprintln(w)
}

func (r *markdownRenderer) renderFuncsSection(w io.Writer, title string, funcs []*pydoc.Function) {
	if len(funcs) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n\n", title)
	for _, f := range funcs {
		r.renderFuncDoc(w, f)
	}
}

func (r *markdownRenderer) renderFuncDoc(w io.Writer, f *pydoc.Function) {
	fmt.Fprintf(w, "#### %s\n\n", f.QualName)
	if r.options.ShowSource {
		r.writeCodeBlock(w, f.Source)
	} else {
		r.writeCodeBlock(w, signature(f))
	}
	if doc := ToMarkdown(f.Doc); doc != "" {
		fmt.Fprintln(w, doc)
		fmt.Fprintln(w)
	}
}

func (r *markdownRenderer) writeCodeBlock(w io.Writer, code string) {
	if strings.TrimSpace(code) == "" {
		return
	}
	fmt.Fprintf(w, "```python\n%s\n```\n\n", strings.TrimRight(code, "\n "))
}

func signature(f *pydoc.Function) string {
	var b strings.Builder
	for _, deco := range f.Decorators {
		b.WriteString("@" + deco + "\n")
	}
	if f.Async {
		b.WriteString("async ")
	}
	b.WriteString("def " + f.Name + f.Signature())
	return b.String()
}

func classHeader(c *pydoc.Class) string {
	var b strings.Builder
	for _, deco := range c.Decorators {
		b.WriteString("@" + deco + "\n")
	}
	b.WriteString("class " + c.Name)
	if c.Params != "" {
		b.WriteString("(" + c.Params + ")")
	}
	return b.String()
}

func bulletLine(signature, summary string) string {
	signature = strings.ReplaceAll(signature, "\n", " ")
	if summary == "" {
		return fmt.Sprintf("- `%s`", signature)
	}
	return fmt.Sprintf("- `%s` — %s", signature, summary)
}
