package export

import (
	"iter"
	"strings"

	"github.com/pkg/errors"

	"github.com/agentflare-ai/pydoc-export/internal/config"
	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
	"github.com/agentflare-ai/pydoc-export/internal/render"
)

// Page is one output document. Rendering is deferred until HTML, Text or
// Render is called, so a Page costs nothing until it is consumed.
type Page struct {
	// Name is the fully qualified dotted module name; it is also the
	// output file name without extension.
	Name   string
	Module *pydoc.Module

	opts render.Options
}

// HTML renders the page as an HTML document.
func (p Page) HTML() (string, error) {
	return render.HTML(p.Module, p.opts)
}

// Text renders the page as reStructuredText.
func (p Page) Text() (string, error) {
	return render.Text(p.Module, p.opts)
}

// Render renders the page in the given format.
func (p Page) Render(f config.Format) (string, error) {
	switch f {
	case config.HTML:
		return p.HTML()
	case config.RST:
		return p.Text()
	default:
		return "", errors.Wrapf(config.ErrInvalidFormat, "%q", string(f))
	}
}

// Walk yields the page of m followed, depth first, by the pages of its
// submodules. The sequence is lazy and may be ranged over again, which
// walks the module tree anew.
func Walk(m *pydoc.Module, parent string, opts render.Options) iter.Seq[Page] {
	return func(yield func(Page) bool) {
		walk(m, parent, opts, yield)
	}
}

func walk(m *pydoc.Module, parent string, opts render.Options, yield func(Page) bool) bool {
	name := pageName(m.Name, parent)
	if !yield(Page{Name: name, Module: m, opts: opts}) {
		return false
	}
	for _, sub := range m.Submodules() {
		if !walk(sub, name, opts, yield) {
			return false
		}
	}
	return true
}

// pageName qualifies name with its parent page name unless name is already
// qualified by it. Module names are fully qualified, so a submodule page
// keeps its own name ("pkg.sub", never ".pkg.sub" or "pkg.pkg.sub").
func pageName(name, parent string) string {
	if parent == "" || name == parent || strings.HasPrefix(name, parent+".") {
		return name
	}
	return parent + "." + name
}
