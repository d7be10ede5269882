// Package render turns documented Python modules into HTML pages,
// reStructuredText documents and Markdown.
package render

import (
	"bytes"
	_ "embed"
	"html/template"
	"strings"

	"github.com/pkg/errors"

	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
)

// Options tunes the rendered output.
type Options struct {
	// ShowSource embeds the highlighted source of the module, its classes
	// and its functions.
	ShowSource bool
}

//go:embed templates/module.html.tmpl
var moduleTemplate string

var pageTemplate = template.Must(template.New("module").Funcs(funcs(nil, Options{})).Parse(moduleTemplate))

type htmlPage struct {
	Module     *pydoc.Module
	Parent     *pydoc.Module
	Submodules []*pydoc.Module
	CSS        template.CSS
}

// HTML renders m as a standalone HTML page.
func HTML(m *pydoc.Module, opts Options) (string, error) {
	page := htmlPage{
		Module:     m,
		Parent:     m.Parent(),
		Submodules: m.Submodules(),
	}
	if opts.ShowSource {
		css, err := highlightCSS()
		if err != nil {
			return "", err
		}
		page.CSS = template.CSS(css)
	}

	t, err := pageTemplate.Clone()
	if err != nil {
		return "", errors.Wrap(err, "clone page template")
	}
	var buf bytes.Buffer
	if err := t.Funcs(funcs(m, opts)).Execute(&buf, page); err != nil {
		return "", errors.Wrapf(err, "render %s", m.Name)
	}
	return buf.String(), nil
}

func funcs(m *pydoc.Module, opts Options) template.FuncMap {
	return template.FuncMap{
		"doc": func(doc string) (template.HTML, error) {
			out, err := DocHTML(doc)
			// goldmark escapes docstring text; raw HTML is omitted
			return template.HTML(out), err
		},
		"summary": Summary,
		"source": func(src string) (template.HTML, error) {
			if !opts.ShowSource || strings.TrimSpace(src) == "" {
				return "", nil
			}
			out, err := highlight(src)
			if err != nil {
				return "", err
			}
			return template.HTML(`<details class="source"><summary>Expand source code</summary>` + out + `</details>`), nil
		},
		"moduleURL": ModuleURL,
		"classURL": func(c *pydoc.Class) string {
			return classURL(m, c)
		},
		"memberURL": func(c *pydoc.Class, name string) string {
			return classURL(m, c) + "." + name
		},
	}
}

// ModuleURL is the relative URL of a module's HTML page.
func ModuleURL(m *pydoc.Module) string {
	return m.Name + ".html"
}

func classURL(from *pydoc.Module, c *pydoc.Class) string {
	if c.Module == from {
		return "#" + c.QualName
	}
	return ModuleURL(c.Module) + "#" + c.QualName
}
