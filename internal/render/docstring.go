package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// sections maps the lower-cased numpydoc and Google style section titles
// to whether their body is a list of entries.
var sections = map[string]bool{
	"args":              true,
	"arguments":         true,
	"attributes":        true,
	"keyword args":      true,
	"keyword arguments": true,
	"other parameters":  true,
	"parameters":        true,
	"params":            true,
	"raises":            true,
	"receives":          true,
	"return":            true,
	"returns":           true,
	"warns":             true,
	"yield":             true,
	"yields":            true,

	"example":    false,
	"examples":   false,
	"methods":    false,
	"note":       false,
	"notes":      false,
	"references": false,
	"see also":   false,
	"todo":       false,
	"warning":    false,
	"warnings":   false,
}

// typeOnly sections describe values by type rather than by name.
var typeOnly = map[string]bool{
	"raises": true, "return": true, "returns": true, "warns": true, "yield": true, "yields": true,
}

type docStyle int

const (
	styleNumpy docStyle = iota
	styleGoogle
)

// ToMarkdown converts a cleaned docstring to Markdown: numpydoc and
// Google style sections become titled entry lists and bare doctest blocks
// become Python code fences. Other text passes through unchanged.
func ToMarkdown(doc string) string {
	lines := strings.Split(doc, "\n")
	var out []string
	inFence := false
	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			out = append(out, line)
			i++
			continue
		}
		if inFence {
			out = append(out, line)
			i++
			continue
		}
		if title, ok := numpyHeader(lines, i); ok {
			end := i + 2
			for end < len(lines) {
				if _, next := numpyHeader(lines, end); next {
					break
				}
				end++
			}
			out = append(out, section(title, lines[i+2:end], styleNumpy)...)
			i = end
			continue
		}
		if title, ok := googleHeader(line); ok {
			end := i + 1
			for end < len(lines) && (strings.TrimSpace(lines[end]) == "" || indentOf(lines[end]) > 0) {
				end++
			}
			out = append(out, section(title, lines[i+1:end], styleGoogle)...)
			i = end
			continue
		}
		if strings.HasPrefix(line, ">>>") {
			end := i
			for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
				end++
			}
			out = append(out, "```python")
			out = append(out, lines[i:end]...)
			out = append(out, "```")
			i = end
			continue
		}
		out = append(out, line)
		i++
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func numpyHeader(lines []string, i int) (string, bool) {
	if i+1 >= len(lines) || indentOf(lines[i]) > 0 {
		return "", false
	}
	title := strings.TrimSpace(lines[i])
	if _, known := sections[strings.ToLower(title)]; !known {
		return "", false
	}
	underline := strings.TrimSpace(lines[i+1])
	if len(underline) < 3 || strings.Trim(underline, "-") != "" {
		return "", false
	}
	return title, true
}

func googleHeader(line string) (string, bool) {
	if indentOf(line) > 0 {
		return "", false
	}
	title, ok := strings.CutSuffix(strings.TrimSpace(line), ":")
	if !ok {
		return "", false
	}
	if _, known := sections[strings.ToLower(title)]; !known {
		return "", false
	}
	return title, true
}

func section(title string, body []string, style docStyle) []string {
	body = dedent(trimBlank(body))
	key := strings.ToLower(title)
	out := []string{"", "**" + title + "**", ""}
	if !sections[key] {
		return append(append(out, body...), "")
	}

	var item []string
	flush := func() {
		if len(item) > 0 {
			out = append(out, entry(item[0], item[1:], key, style))
			item = nil
		}
	}
	for _, line := range body {
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case indentOf(line) == 0:
			flush()
			item = []string{line}
		default:
			item = append(item, strings.TrimSpace(line))
		}
	}
	flush()
	return append(out, "")
}

// entry renders one list entry. head is the unindented first line, rest
// are its description lines.
func entry(head string, rest []string, section string, style docStyle) string {
	var name, typ, desc string
	head = strings.TrimSpace(head)
	switch style {
	case styleNumpy:
		if n, t, ok := strings.Cut(head, " : "); ok {
			name, typ = strings.TrimSpace(n), strings.TrimSpace(t)
		} else if typeOnly[section] {
			typ = head
		} else {
			name = strings.TrimSuffix(head, " :")
		}
	case styleGoogle:
		n, d, ok := cutColon(head)
		switch {
		case !ok && typeOnly[section]:
			desc = head
		case !ok:
			name = head
		case typeOnly[section]:
			typ, desc = n, d
		default:
			name, desc = n, d
			if open := strings.IndexByte(name, '('); open > 0 && strings.HasSuffix(name, ")") {
				name, typ = strings.TrimSpace(name[:open]), name[open+1:len(name)-1]
			}
		}
	}
	if len(rest) > 0 {
		desc = strings.TrimSpace(desc + " " + strings.Join(rest, " "))
	}

	var b strings.Builder
	b.WriteString("- ")
	switch {
	case name != "" && typ != "":
		fmt.Fprintf(&b, "**%s** (`%s`)", name, typ)
	case name != "":
		fmt.Fprintf(&b, "**%s**", name)
	case typ != "":
		fmt.Fprintf(&b, "`%s`", typ)
	}
	if desc != "" {
		if name != "" || typ != "" {
			b.WriteString(": ")
		}
		b.WriteString(desc)
	}
	return b.String()
}

// cutColon splits a Google style entry head on its first ": " (or trailing
// colon) outside parentheses.
func cutColon(s string) (string, string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ':':
			if depth == 0 && (i+1 == len(s) || s[i+1] == ' ') {
				head := strings.TrimSpace(s[:i])
				if strings.Contains(head, " ") && !strings.Contains(head, "(") {
					return "", "", false
				}
				return head, strings.TrimSpace(s[i+1:]), true
			}
		}
	}
	return "", "", false
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func dedent(lines []string) []string {
	margin := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := indentOf(line); margin < 0 || n < margin {
			margin = n
		}
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= margin && margin > 0 {
			line = line[margin:]
		}
		out[i] = line
	}
	return out
}

func indentOf(line string) int {
	count := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			count++
			continue
		}
		break
	}
	return count
}

// DocHTML renders a docstring as an HTML fragment.
func DocHTML(doc string) (string, error) {
	if strings.TrimSpace(doc) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(ToMarkdown(doc)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Summary returns the first sentence of a docstring's first paragraph.
func Summary(doc string) string {
	para, _, _ := strings.Cut(strings.TrimSpace(doc), "\n\n")
	para = strings.Join(strings.Fields(para), " ")
	if idx := strings.Index(para, ". "); idx >= 0 {
		return para[:idx+1]
	}
	return para
}
