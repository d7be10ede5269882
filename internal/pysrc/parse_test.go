package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `#!/usr/bin/env python
"""Module docstring.

Second paragraph.
"""
import os, sys as system
from .base import (Base,
                   Mixin as M)

#: Answer to everything.
ANSWER = 42

value = {"a": 1,  # trailing comment with "quote
         "b": 2}
"""Docs for value."""

@decorator
class Child(Base, M, metaclass=Meta):
    """Child docstring."""

    limit: int = 3

    def __init__(self, x, y=1):
        self.x = x
        """The x."""

    @property
    def size(self) -> int:
        return 1

    async def fetch(self, *args, **kwargs) -> dict[str, int]:
        'Fetch things.'
        pass

def helper(a: int = 1, b="#not a comment") -> None: pass
`

func TestParseOutline(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	kinds := make([]Kind, 0, len(f.Body))
	for _, n := range f.Body {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []Kind{
		KindString, KindImport, KindImport, KindAssign, KindAssign, KindString, KindClass, KindDef,
	}, kinds)

	assert.Equal(t, "Module docstring.\n\nSecond paragraph.\n", f.Body[0].Str)

	imports := append(f.Body[1].Imports, f.Body[2].Imports...)
	require.Len(t, imports, 4)
	assert.Equal(t, Import{Module: "os"}, imports[0])
	assert.Equal(t, Import{Module: "sys", As: "system"}, imports[1])
	assert.Equal(t, Import{Module: "base", Name: "Base", Level: 1}, imports[2])
	assert.Equal(t, "M", imports[3].Bound())

	answer := f.Body[3]
	assert.Equal(t, []string{"ANSWER"}, answer.Targets)
	assert.Equal(t, []string{"#: Answer to everything."}, answer.Comments)

	value := f.Body[4]
	assert.Equal(t, []string{"value"}, value.Targets)
	assert.Equal(t, 13, value.Start)
	assert.Equal(t, 14, value.End)

	cls := f.Body[6]
	assert.Equal(t, "Child", cls.Name)
	assert.Equal(t, "Base, M, metaclass=Meta", cls.Args)
	assert.Equal(t, []string{"decorator"}, cls.Decorators)
	assert.Equal(t, 17, cls.Start)
	require.Len(t, cls.Body, 5)
	assert.Equal(t, "Child docstring.", cls.Body[0].Str)
	assert.Equal(t, "int", cls.Body[1].Annotation)
	assert.Equal(t, "3", cls.Body[1].Value)

	init := cls.Body[2]
	assert.Equal(t, "__init__", init.Name)
	assert.Equal(t, "self, x, y=1", init.Args)
	require.Len(t, init.Body, 2)
	assert.Equal(t, []string{"self.x"}, init.Body[0].Targets)

	size := cls.Body[3]
	assert.Equal(t, []string{"property"}, size.Decorators)
	assert.Equal(t, "int", size.Returns)

	fetch := cls.Body[4]
	assert.True(t, fetch.Async)
	assert.Equal(t, "dict[str, int]", fetch.Returns)
	assert.Equal(t, "Fetch things.", fetch.Body[0].Str)

	helper := f.Body[7]
	assert.Equal(t, `a: int = 1, b="#not a comment"`, helper.Args)
	assert.Equal(t, "None", helper.Returns)
	require.Len(t, helper.Body, 1)
	assert.Equal(t, helper.Start, helper.End)

	assert.Contains(t, f.Lines(cls.Start, cls.End), "async def fetch")
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		src        string
		kind       Kind
		targets    []string
		annotation string
		value      string
	}{
		{src: "a = b = 1", kind: KindAssign, targets: []string{"a", "b"}, value: "1"},
		{src: "x, y = pair", kind: KindAssign, targets: []string{"x", "y"}, value: "pair"},
		{src: "f = lambda a=1: a", kind: KindAssign, targets: []string{"f"}, value: "lambda a=1: a"},
		{src: "n: int", kind: KindAssign, targets: []string{"n"}, annotation: "int"},
		{src: "counter += 1", kind: KindOther},
		{src: "d['k'] = 1", kind: KindOther},
		{src: "x == 3", kind: KindOther},
		{src: "call(a=1)", kind: KindOther},
		{src: "match = 3", kind: KindAssign, targets: []string{"match"}, value: "3"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f, err := Parse([]byte(tt.src + "\n"))
			require.NoError(t, err)
			require.Len(t, f.Body, 1)
			n := f.Body[0]
			assert.Equal(t, tt.kind, n.Kind)
			assert.Equal(t, tt.targets, n.Targets)
			assert.Equal(t, tt.annotation, n.Annotation)
			assert.Equal(t, tt.value, n.Value)
		})
	}
}

func TestParseCompoundBlocks(t *testing.T) {
	src := `try:
    from fast import Impl
except ImportError:
    from slow import Impl

if __name__ == "__main__":
    main()

match command:
    case "go":
        pass
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, f.Body, 4)
	assert.Equal(t, "try", f.Body[0].Keyword)
	assert.Equal(t, KindImport, f.Body[0].Body[0].Kind)
	assert.Equal(t, "except", f.Body[1].Keyword)
	assert.Equal(t, "if", f.Body[2].Keyword)
	assert.Equal(t, "match", f.Body[3].Keyword)
	require.Len(t, f.Body[3].Body, 1)
	assert.Equal(t, "case", f.Body[3].Body[0].Keyword)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{name: "unterminated string", src: "x = 1\ny = 'abc\n", line: 2},
		{name: "unterminated docstring", src: "\"\"\"never closed\n", line: 1},
		{name: "unclosed bracket", src: "x = [1,\n2,\n", line: 1},
		{name: "unmatched bracket", src: "x = 1)\n", line: 1},
		{name: "unexpected indent", src: "x = 1\n    y = 2\n", line: 2},
		{name: "missing block", src: "def f():\nx = 1\n", line: 1},
		{name: "bad dedent", src: "if x:\n        a = 1\n    b = 2\n", line: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.line, syntaxErr.Line)
		})
	}
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{text: `"plain"`, want: "plain", ok: true},
		{text: `'tab\tand\nnewline'`, want: "tab\tand\nnewline", ok: true},
		{text: `r"raw\n"`, want: `raw\n`, ok: true},
		{text: `"a" 'b'`, want: "ab", ok: true},
		{text: `u"\u00e9"`, want: "é", ok: true},
		{text: `"""triple "quoted" text"""`, want: `triple "quoted" text`, ok: true},
		{text: `b"bytes"`, ok: false},
		{text: `f"{x}"`, ok: false},
		{text: `"a" + "b"`, ok: false},
		{text: `name`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := StringValue(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
