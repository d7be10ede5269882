package pysrc

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// walkTopLevel calls fn for every byte of s that is outside string literals
// and brackets. fn returns false to stop the walk.
func walkTopLevel(s string, fn func(i int, c byte) bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'', '"':
			_, _, end, ok := scanString(s, i)
			if !ok {
				return
			}
			i = end - 1
			continue
		case '(', '[', '{':
			if depth == 0 && !fn(i, c) {
				return
			}
			depth++
			continue
		case ')', ']', '}':
			depth--
			if depth == 0 && !fn(i, c) {
				return
			}
			continue
		}
		if depth == 0 && !fn(i, c) {
			return
		}
	}
}

// splitTopLevel splits s on sep where sep is outside brackets and strings.
// Parts are trimmed; empty trailing parts are dropped.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	last := 0
	walkTopLevel(s, func(i int, c byte) bool {
		if c == sep {
			parts = append(parts, strings.TrimSpace(s[last:i]))
			last = i + 1
		}
		return true
	})
	if tail := strings.TrimSpace(s[last:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// matchingBracket returns the index of the bracket closing the one at open.
func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'', '"':
			_, _, end, ok := scanString(s, i)
			if !ok {
				return -1
			}
			i = end - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scanString reads the string literal whose opening quote is at s[i]. It
// returns the quote sequence, the raw body between the quotes and the index
// just past the closing quote.
func scanString(s string, i int) (quote, body string, end int, ok bool) {
	q := s[i]
	quote = string(q)
	if strings.HasPrefix(s[i:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	j := i + len(quote)
	for j < len(s) {
		switch {
		case s[j] == '\\':
			j += 2
			continue
		case strings.HasPrefix(s[j:], quote):
			return quote, s[i+len(quote) : j], j + len(quote), true
		}
		j++
	}
	return quote, "", len(s), false
}

// StringValue reports whether text is a string literal expression (one or
// more adjacent literals, as Python concatenates them) and returns its
// decoded value. Byte strings and f-strings are not documentation strings
// and report false.
func StringValue(text string) (string, bool) {
	var out strings.Builder
	i, found := 0, false
	for i < len(text) {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n') {
			i++
		}
		if i >= len(text) {
			break
		}
		p := i
		for p < len(text) && p-i < 2 && strings.IndexByte("rRbBuUfF", text[p]) >= 0 {
			p++
		}
		if p >= len(text) || (text[p] != '\'' && text[p] != '"') {
			return "", false
		}
		prefix := strings.ToLower(text[i:p])
		if strings.ContainsAny(prefix, "bf") {
			return "", false
		}
		_, body, end, ok := scanString(text, p)
		if !ok {
			return "", false
		}
		if strings.Contains(prefix, "r") {
			out.WriteString(body)
		} else {
			out.WriteString(unescape(body))
		}
		found = true
		i = end
	}
	return out.String(), found
}

var hexWidth = map[byte]int{'x': 2, 'u': 4, 'U': 8}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
		case '\\', '\'', '"':
			out.WriteByte(e)
		case 'a':
			out.WriteByte('\a')
		case 'b':
			out.WriteByte('\b')
		case 'f':
			out.WriteByte('\f')
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case 'v':
			out.WriteByte('\v')
		case 'x', 'u', 'U':
			width := hexWidth[e]
			if i+1+width > len(s) {
				out.WriteByte('\\')
				out.WriteByte(e)
				continue
			}
			n, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(n)) {
				out.WriteByte('\\')
				out.WriteByte(e)
				continue
			}
			out.WriteRune(rune(n))
			i += width
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 8, 32)
			out.WriteRune(rune(n))
			i = j - 1
		default:
			out.WriteByte('\\')
			out.WriteByte(e)
		}
	}
	return out.String()
}

// SplitTopLevel splits s on sep outside of brackets and string literals.
func SplitTopLevel(s string, sep byte) []string {
	return splitTopLevel(s, sep)
}
