package pysrc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies the statement a Node was built from.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindClass
	KindDef
	KindAssign
	KindImport
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindClass:
		return "class"
	case KindDef:
		return "def"
	case KindAssign:
		return "assign"
	case KindImport:
		return "import"
	case KindBlock:
		return "block"
	default:
		return "other"
	}
}

// Node is one statement of the outline.
type Node struct {
	Kind Kind
	// Start and End are 1-based physical line numbers, decorators included.
	Start int
	End   int
	Text  string
	// Comments are the comment lines directly above the statement.
	Comments []string

	// Name is the class or function name.
	Name       string
	Decorators []string
	// Args holds the raw text between the parentheses of a class (bases)
	// or a def (parameters).
	Args    string
	Returns string
	Async   bool

	// Targets, Annotation and Value describe assignments. Targets are
	// names or dotted attributes such as self.x.
	Targets    []string
	Annotation string
	Value      string

	// Str is the decoded value of a KindString statement.
	Str string

	Imports []Import

	// Keyword is the leading keyword of a KindBlock (if, try, with ...).
	Keyword string
	Body    []*Node
}

// Import is one name bound by an import statement.
type Import struct {
	// Module is the imported module path without leading dots.
	Module string
	// Name is the member imported by "from Module import Name"; empty for
	// plain "import Module".
	Name string
	// As is the alias, empty when none was given.
	As string
	// Level counts the leading dots of a relative import.
	Level int
}

// Bound returns the local name the import binds.
func (im Import) Bound() string {
	switch {
	case im.As != "":
		return im.As
	case im.Name != "":
		return im.Name
	default:
		head, _, _ := strings.Cut(im.Module, ".")
		return head
	}
}

// File is a parsed Python source file.
type File struct {
	Body  []*Node
	lines []string
}

// Lines returns the physical source lines start..end (1-based, inclusive).
func (f *File) Lines(start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(f.lines) {
		end = len(f.lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(f.lines[start-1:end], "\n")
}

// Parse builds the statement outline of a Python source file.
func Parse(src []byte) (*File, error) {
	text := normalizeNewlines(src)
	lines, err := splitLogicalLines(text)
	if err != nil {
		return nil, err
	}
	p := &parser{lines: lines}
	body, err := p.block(0)
	if err != nil {
		return nil, err
	}
	return &File{Body: body, lines: strings.Split(text, "\n")}, nil
}

type parser struct {
	lines []logicalLine
	pos   int
}

func (p *parser) block(indent int) ([]*Node, error) {
	var (
		nodes      []*Node
		decorators []string
		decoStart  int
		dedented   bool
	)
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.indent < indent {
			break
		}
		if ln.indent > indent {
			if dedented {
				return nil, &SyntaxError{Line: ln.start, Msg: "unindent does not match any outer indentation level"}
			}
			return nil, &SyntaxError{Line: ln.start, Msg: "unexpected indent"}
		}
		p.pos++
		dedented = false

		if strings.HasPrefix(ln.text, "@") {
			if len(decorators) == 0 {
				decoStart = ln.start
			}
			decorators = append(decorators, strings.TrimSpace(ln.text[1:]))
			continue
		}

		stmts, header, err := p.statement(ln)
		if err != nil {
			return nil, err
		}
		if header != nil {
			if header.Kind == KindClass || header.Kind == KindDef {
				header.Decorators = decorators
				if len(decorators) > 0 {
					header.Start = decoStart
				}
			}
			if header.Body == nil {
				if p.pos >= len(p.lines) || p.lines[p.pos].indent <= indent {
					return nil, &SyntaxError{Line: ln.end, Msg: "expected an indented block"}
				}
				body, err := p.block(p.lines[p.pos].indent)
				if err != nil {
					return nil, err
				}
				header.Body = body
				if len(body) > 0 {
					header.End = body[len(body)-1].End
				}
				dedented = true
			}
		}
		decorators = nil
		nodes = append(nodes, stmts...)
	}
	return nodes, nil
}

// statement turns one logical line into nodes. A compound statement header
// is returned as header so the caller can attach an indented body; an
// inline body ("def f(): pass") is parsed directly.
func (p *parser) statement(ln logicalLine) ([]*Node, *Node, error) {
	keyword := leadingWord(ln.text)
	if isCompound(keyword, ln.text) {
		n := p.compound(ln, keyword)
		colon := headerColon(ln.text)
		if colon < 0 {
			return nil, nil, &SyntaxError{Line: ln.start, Msg: "expected ':'"}
		}
		if rest := strings.TrimSpace(ln.text[colon+1:]); rest != "" {
			n.Body = []*Node{}
			for _, part := range splitTopLevel(rest, ';') {
				inline := ln
				inline.text = part
				inline.comments = nil
				stmts, _, err := p.statement(inline)
				if err != nil {
					return nil, nil, err
				}
				n.Body = append(n.Body, stmts...)
			}
			return []*Node{n}, n, nil
		}
		return []*Node{n}, n, nil
	}

	parts := splitTopLevel(ln.text, ';')
	nodes := make([]*Node, 0, len(parts))
	for _, part := range parts {
		n := simple(part)
		n.Start, n.End = ln.start, ln.end
		n.Comments = ln.comments
		nodes = append(nodes, n)
	}
	return nodes, nil, nil
}

var compound = map[string]bool{
	"class": true, "def": true, "if": true, "elif": true, "else": true,
	"for": true, "while": true, "try": true, "except": true, "finally": true,
	"with": true,
}

func isCompound(keyword, text string) bool {
	switch keyword {
	case "async":
		return isAsyncCompound(text)
	case "match", "case":
		// soft keywords: "match = 1" is an assignment
		rest := strings.TrimSpace(text[len(keyword):])
		return rest != "" && strings.IndexByte("=.,:", rest[0]) < 0 && strings.HasSuffix(text, ":")
	}
	return compound[keyword]
}

func isAsyncCompound(text string) bool {
	rest := strings.TrimSpace(strings.TrimPrefix(text, "async"))
	switch leadingWord(rest) {
	case "def", "for", "with":
		return true
	}
	return false
}

func (p *parser) compound(ln logicalLine, keyword string) *Node {
	n := &Node{
		Kind:     KindBlock,
		Start:    ln.start,
		End:      ln.end,
		Text:     ln.text,
		Comments: ln.comments,
		Keyword:  keyword,
	}
	text := ln.text
	if keyword == "async" {
		n.Async = true
		text = strings.TrimSpace(strings.TrimPrefix(text, "async"))
		keyword = leadingWord(text)
		n.Keyword = keyword
	}
	switch keyword {
	case "class":
		n.Kind = KindClass
		rest := strings.TrimSpace(text[len("class"):])
		n.Name = leadingWord(rest)
		rest = strings.TrimSpace(rest[len(n.Name):])
		if strings.HasPrefix(rest, "[") {
			if end := matchingBracket(rest, 0); end > 0 {
				rest = strings.TrimSpace(rest[end+1:])
			}
		}
		if strings.HasPrefix(rest, "(") {
			if end := matchingBracket(rest, 0); end > 0 {
				n.Args = collapseSpace(rest[1:end])
			}
		}
	case "def":
		n.Kind = KindDef
		rest := strings.TrimSpace(text[len("def"):])
		n.Name = leadingWord(rest)
		rest = strings.TrimSpace(rest[len(n.Name):])
		if strings.HasPrefix(rest, "[") {
			if end := matchingBracket(rest, 0); end > 0 {
				rest = strings.TrimSpace(rest[end+1:])
			}
		}
		if strings.HasPrefix(rest, "(") {
			if end := matchingBracket(rest, 0); end > 0 {
				n.Args = collapseSpace(rest[1:end])
				rest = strings.TrimSpace(rest[end+1:])
			}
		}
		if strings.HasPrefix(rest, "->") {
			if colon := headerColon(rest); colon > 0 {
				n.Returns = collapseSpace(rest[2:colon])
			}
		}
	}
	return n
}

// headerColon finds the colon ending a compound statement header.
func headerColon(text string) int {
	idx := -1
	walkTopLevel(text, func(i int, c byte) bool {
		if c == ':' && (i+1 >= len(text) || text[i+1] != '=') {
			idx = i
			return false
		}
		return true
	})
	return idx
}

func simple(text string) *Node {
	n := &Node{Kind: KindOther, Text: text}
	switch leadingWord(text) {
	case "import":
		n.Kind = KindImport
		n.Imports = parseImport(strings.TrimSpace(text[len("import"):]))
		return n
	case "from":
		n.Kind = KindImport
		n.Imports = parseFromImport(strings.TrimSpace(text[len("from"):]))
		return n
	}
	if s, ok := StringValue(text); ok {
		n.Kind = KindString
		n.Str = s
		return n
	}
	if targets, annotation, value, ok := parseAssign(text); ok {
		n.Kind = KindAssign
		n.Targets = targets
		n.Annotation = annotation
		n.Value = value
	}
	return n
}

func parseImport(rest string) []Import {
	var out []Import
	for _, part := range splitTopLevel(rest, ',') {
		mod, alias := splitAlias(part)
		if mod == "" {
			continue
		}
		out = append(out, Import{Module: mod, As: alias})
	}
	return out
}

func parseFromImport(rest string) []Import {
	idx := strings.Index(rest, " import")
	if idx < 0 {
		return nil
	}
	mod, names := strings.TrimSpace(rest[:idx]), rest[idx+len(" import"):]
	if names == "" || names[0] != ' ' && names[0] != '(' {
		return nil
	}
	level := len(mod) - len(strings.TrimLeft(mod, "."))
	mod = strings.TrimSpace(mod[level:])
	names = strings.TrimSpace(names)
	names = strings.TrimSuffix(strings.TrimPrefix(names, "("), ")")
	var out []Import
	for _, part := range splitTopLevel(names, ',') {
		name, alias := splitAlias(part)
		if name == "" {
			continue
		}
		out = append(out, Import{Module: mod, Name: name, As: alias, Level: level})
	}
	return out
}

func splitAlias(part string) (string, string) {
	fields := strings.Fields(part)
	switch {
	case len(fields) == 3 && fields[1] == "as":
		return fields[0], fields[2]
	case len(fields) >= 1:
		return fields[0], ""
	}
	return "", ""
}

// parseAssign recognizes "a = b = value", "a: T = value", "a: T" and
// tuple targets. Augmented assignments are not assignments for
// documentation purposes.
func parseAssign(text string) (targets []string, annotation, value string, ok bool) {
	rest := text
	for {
		eq := assignIndex(rest)
		if eq < 0 {
			break
		}
		lhs := strings.TrimSpace(rest[:eq])
		if len(targets) == 0 {
			if name, ann, isAnn := splitAnnotation(lhs); isAnn {
				if !isTarget(name) {
					return nil, "", "", false
				}
				return []string{name}, ann, strings.TrimSpace(rest[eq+1:]), true
			}
		}
		names := targetNames(lhs)
		if names == nil {
			if len(targets) == 0 {
				return nil, "", "", false
			}
			break
		}
		targets = append(targets, names...)
		rest = rest[eq+1:]
	}
	if len(targets) > 0 {
		return targets, "", strings.TrimSpace(rest), true
	}
	if name, ann, isAnn := splitAnnotation(text); isAnn && isTarget(name) {
		return []string{name}, ann, "", true
	}
	return nil, "", "", false
}

// assignIndex returns the index of the first top-level plain "=".
func assignIndex(s string) int {
	idx := -1
	walkTopLevel(s, func(i int, c byte) bool {
		if c != '=' {
			return true
		}
		if i+1 < len(s) && s[i+1] == '=' {
			return true
		}
		if i > 0 && strings.IndexByte("=!<>+-*/%&|^@:", s[i-1]) >= 0 {
			return true
		}
		idx = i
		return false
	})
	return idx
}

func splitAnnotation(lhs string) (string, string, bool) {
	colon := -1
	walkTopLevel(lhs, func(i int, c byte) bool {
		if c == ':' {
			colon = i
			return false
		}
		return true
	})
	if colon < 0 {
		return "", "", false
	}
	return strings.TrimSpace(lhs[:colon]), collapseSpace(lhs[colon+1:]), true
}

func targetNames(lhs string) []string {
	lhs = strings.TrimSpace(lhs)
	if strings.HasPrefix(lhs, "(") && strings.HasSuffix(lhs, ")") ||
		strings.HasPrefix(lhs, "[") && strings.HasSuffix(lhs, "]") {
		lhs = lhs[1 : len(lhs)-1]
	}
	parts := splitTopLevel(lhs, ',')
	if len(parts) == 0 {
		return nil
	}
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimPrefix(part, "*")
		if !isTarget(part) {
			return nil
		}
		names = append(names, part)
	}
	return names
}

func isTarget(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if !isIdentifier(seg) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

func leadingWord(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		end += size
	}
	return s[:end]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
