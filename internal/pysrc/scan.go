// Package pysrc reads Python source text without executing it.
//
// It splits a file into logical lines, groups them into an indentation
// outline and recognizes the statements that carry documentation: class and
// function definitions, assignments, imports and bare string literals.
// Everything else is kept as an opaque statement.
package pysrc

import (
	"fmt"
	"strings"
)

// SyntaxError reports source text the scanner could not split into
// statements.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// logicalLine is one Python statement line after joining bracketed and
// backslash-continued physical lines. Comments are removed from text.
type logicalLine struct {
	indent   int
	start    int
	end      int
	text     string
	comments []string
}

func normalizeNewlines(src []byte) string {
	s := string(src)
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func splitLogicalLines(src string) ([]logicalLine, error) {
	var (
		lines    []logicalLine
		buf      strings.Builder
		brackets []bracket
		pending  []string

		line       = 1
		start      int
		indent     int
		atStart    = true
		inString   bool
		quote      byte
		triple     bool
		stringLine int
	)
	emit := func(end int) {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		lines = append(lines, logicalLine{
			indent:   indent,
			start:    start,
			end:      end,
			text:     text,
			comments: pending,
		})
		pending = nil
	}

	i := 0
	for i < len(src) {
		c := src[i]
		if atStart {
			col, j := 0, i
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\f') {
				switch src[j] {
				case '\t':
					col = (col/8 + 1) * 8
				case ' ':
					col++
				default:
					col = 0
				}
				j++
			}
			if j >= len(src) {
				break
			}
			switch src[j] {
			case '\n':
				pending = nil
				line++
				i = j + 1
				continue
			case '#':
				end := strings.IndexByte(src[j:], '\n')
				if end < 0 {
					end = len(src) - j
				}
				pending = append(pending, src[j:j+end])
				i = j + end
				if i < len(src) {
					i++
					line++
				}
				continue
			}
			indent = col
			start = line
			atStart = false
			i = j
			continue
		}

		if inString {
			switch {
			case c == '\\' && i+1 < len(src):
				buf.WriteByte(c)
				buf.WriteByte(src[i+1])
				if src[i+1] == '\n' {
					line++
				}
				i += 2
				continue
			case c == quote && !triple:
				buf.WriteByte(c)
				inString = false
				i++
				continue
			case c == quote && triple && strings.HasPrefix(src[i:], strings.Repeat(string(quote), 3)):
				buf.WriteString(src[i : i+3])
				inString = false
				i += 3
				continue
			case c == '\n':
				if !triple {
					return nil, &SyntaxError{Line: stringLine, Msg: "unterminated string literal"}
				}
				line++
			}
			buf.WriteByte(c)
			i++
			continue
		}

		switch c {
		case '#':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			i += end
			continue
		case '\\':
			if i+1 < len(src) && src[i+1] == '\n' {
				buf.WriteByte(' ')
				line++
				i += 2
				continue
			}
		case '\'', '"':
			inString = true
			quote = c
			stringLine = line
			triple = strings.HasPrefix(src[i:], strings.Repeat(string(c), 3))
			if triple {
				buf.WriteString(src[i : i+3])
				i += 3
				continue
			}
		case '(', '[', '{':
			brackets = append(brackets, bracket{char: c, line: line})
		case ')', ']', '}':
			if len(brackets) == 0 {
				return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("unmatched '%c'", c)}
			}
			open := brackets[len(brackets)-1]
			if closing[open.char] != c {
				return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("closing parenthesis '%c' does not match opening parenthesis '%c' on line %d", c, open.char, open.line)}
			}
			brackets = brackets[:len(brackets)-1]
		case '\n':
			if len(brackets) > 0 {
				buf.WriteByte(' ')
				line++
				i++
				continue
			}
			emit(line)
			line++
			atStart = true
			i++
			continue
		}
		buf.WriteByte(c)
		i++
	}

	if inString {
		if triple {
			return nil, &SyntaxError{Line: stringLine, Msg: "unterminated triple-quoted string literal"}
		}
		return nil, &SyntaxError{Line: stringLine, Msg: "unterminated string literal"}
	}
	if len(brackets) > 0 {
		open := brackets[len(brackets)-1]
		return nil, &SyntaxError{Line: open.line, Msg: fmt.Sprintf("'%c' was never closed", open.char)}
	}
	emit(line)
	return lines, nil
}

type bracket struct {
	char byte
	line int
}

var closing = map[byte]byte{'(': ')', '[': ']', '{': '}'}
