package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/pkg/errors"

	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
)

// IndexEntry is one module listed on the index page.
type IndexEntry struct {
	Title   string
	Link    string
	Summary string
}

// NewIndexEntry describes m for an index whose pages use extension ext.
func NewIndexEntry(name string, m *pydoc.Module, ext string) IndexEntry {
	return IndexEntry{
		Title:   name,
		Link:    name + "." + ext,
		Summary: Summary(m.Doc),
	}
}

func sortEntries(entries []IndexEntry) []IndexEntry {
	sorted := append([]IndexEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

// buildTOC lists the entries as a Markdown bullet list.
func buildTOC(entries []IndexEntry) []byte {
	if len(entries) == 0 {
		return nil
	}
	var buf bytes.Buffer
	buf.WriteString("## Modules\n\n")
	for _, entry := range entries {
		if entry.Summary != "" {
			fmt.Fprintf(&buf, "- [%s](%s) — %s\n", entry.Title, entry.Link, entry.Summary)
		} else {
			fmt.Fprintf(&buf, "- [%s](%s)\n", entry.Title, entry.Link)
		}
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="generator" content="pydoc-export">
<title>{{.Title}}</title>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
{{.Body}}
</main>
</body>
</html>
`))

// IndexHTML renders the index page listing every exported module.
func IndexHTML(title string, entries []IndexEntry) (string, error) {
	var body bytes.Buffer
	if toc := buildTOC(sortEntries(entries)); len(toc) > 0 {
		if err := markdown.Convert(toc, &body); err != nil {
			return "", errors.Wrap(err, "convert index")
		}
	}
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body.String())})
	if err != nil {
		return "", errors.Wrap(err, "render index")
	}
	return buf.String(), nil
}

// IndexText renders the index page as reStructuredText.
func IndexText(title string, entries []IndexEntry) string {
	var buf bytes.Buffer
	r := &rstRenderer{w: &buf}
	r.title(title, '=')
	for _, entry := range sortEntries(entries) {
		fmt.Fprintf(&buf, "* `%s <%s>`_", entry.Title, entry.Link)
		if entry.Summary != "" {
			fmt.Fprintf(&buf, " -- %s", entry.Summary)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
