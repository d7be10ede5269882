package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
)

func linkedPair(t *testing.T) (*pydoc.Module, *pydoc.Module) {
	t.Helper()
	ctx := pydoc.NewContext()
	a, err := pydoc.NewModule(ctx, "a", "a.py", []byte(`"""Module a."""

class A:
    """Base class A.

    Parameters
    ----------
    size : int
        How big.
    """

    def greet(self, name: str) -> str:
        """Say hello to *name*."""
        return name
`))
	require.NoError(t, err)
	b, err := pydoc.NewModule(ctx, "b", "b.py", []byte(`"""Module b <script>."""
from a import A

#: Default greeting.
GREETING = "hi"

class B(A):
    """Derived class."""

    async def fetch(self, url, *, timeout=3.0):
        pass

def helper(x):
    """Help with x.

    Args:
        x (int): The input.

    Returns:
        int: Twice x.
    """
    return x * 2
`))
	require.NoError(t, err)
	pydoc.LinkInheritance(ctx)
	return a, b
}

func TestHTML(t *testing.T) {
	_, b := linkedPair(t)
	page, err := HTML(b, Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "<!doctype html>"))
	assert.Contains(t, page, "<title>b API documentation</title>")
	assert.Contains(t, page, `<a href="a.html#A">a.A</a>`, "base links to its page")
	assert.Contains(t, page, "<h3>Ancestors</h3>")
	assert.Contains(t, page, `<a href="a.html#A.greet">greet</a>`, "inherited member listed")
	assert.Contains(t, page, `id="GREETING"`)
	assert.Contains(t, page, "<p>Default greeting.</p>")
	assert.Contains(t, page, "async def <span class=\"ident\">fetch</span>")
	assert.Contains(t, page, "<strong>Args</strong>")
	assert.Contains(t, page, "<strong>x</strong> (<code>int</code>): The input.")
	assert.NotContains(t, page, "<script>")
	assert.NotContains(t, page, "Expand source code")

	again, err := HTML(b, Options{})
	require.NoError(t, err)
	assert.Equal(t, page, again)
}

func TestHTMLShowSource(t *testing.T) {
	a, _ := linkedPair(t)
	page, err := HTML(a, Options{ShowSource: true})
	require.NoError(t, err)
	assert.Contains(t, page, "Expand source code")
	assert.Contains(t, page, `class="chroma"`)
	assert.Contains(t, page, ".chroma")
}

func TestText(t *testing.T) {
	_, b := linkedPair(t)
	text, err := Text(b, Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "Module ``b``\n============\n\n.. py:module:: b\n"))
	assert.Contains(t, text, "Global variables\n----------------\n")
	assert.Contains(t, text, ".. py:data:: GREETING\n   :value: \"hi\"\n\n   Default greeting.\n")
	assert.Contains(t, text, ".. py:class:: B()\n\n   Bases: :py:class:`a.A`\n")
	assert.Contains(t, text, "   .. py:method:: fetch(self, url, *, timeout=3.0)\n      :async:\n")
	assert.Contains(t, text, "   Inherited from :py:class:`a.A`: :py:obj:`greet <a.A.greet>`")
	assert.Contains(t, text, ".. py:function:: helper(x)\n\n   Help with x.\n")
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.False(t, strings.HasSuffix(text, "\n\n"))
}

func TestMarkdown(t *testing.T) {
	a, _ := linkedPair(t)
	var buf bytes.Buffer
	Markdown(&buf, a, Options{})
	out := buf.String()
	assert.Contains(t, out, "# module a\n")
	assert.Contains(t, out, "- `class A` — Base class A.")
	assert.Contains(t, out, "## class A\n")
	assert.Contains(t, out, "```python\ndef greet(self, name: str) -> str\n```")
	assert.Contains(t, out, "- **size** (`int`): How big.")
}

func TestMarkdownSymbol(t *testing.T) {
	a, b := linkedPair(t)
	var buf bytes.Buffer
	require.True(t, MarkdownSymbol(&buf, a, "A.greet", Options{}))
	assert.Contains(t, buf.String(), "#### A.greet\n")
	assert.NotContains(t, buf.String(), "## class A")

	buf.Reset()
	require.True(t, MarkdownSymbol(&buf, b, "helper", Options{}))
	assert.Contains(t, buf.String(), "#### helper\n")

	assert.False(t, MarkdownSymbol(&buf, b, "missing", Options{}))
	assert.False(t, MarkdownSymbol(&buf, b, "B.missing", Options{}))
	assert.False(t, MarkdownSymbol(&buf, b, "helper.x", Options{}))
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "plain",
			doc:  "Just text.\n\nMore *text*.",
			want: "Just text.\n\nMore *text*.",
		},
		{
			name: "numpy parameters and returns",
			doc:  "Sum.\n\nParameters\n----------\na : int\n    First.\nb\n    Second\n    line.\n\nReturns\n-------\nint\n    The sum.",
			want: "Sum.\n\n\n**Parameters**\n\n- **a** (`int`): First.\n- **b**: Second line.\n\n\n**Returns**\n\n- `int`: The sum.",
		},
		{
			name: "google args and raises",
			doc:  "Load.\n\nArgs:\n    path (str): Where.\n    strict: Fail fast.\n\nRaises:\n    ValueError: If bad.",
			want: "Load.\n\n\n**Args**\n\n- **path** (`str`): Where.\n- **strict**: Fail fast.\n\n\n**Raises**\n\n- `ValueError`: If bad.",
		},
		{
			name: "text section",
			doc:  "Notes\n-----\nKeep it\n    indented.",
			want: "**Notes**\n\nKeep it\n    indented.",
		},
		{
			name: "doctest",
			doc:  "Example use.\n\n>>> add(1, 2)\n3\n\nDone.",
			want: "Example use.\n\n```python\n>>> add(1, 2)\n3\n```\n\nDone.",
		},
		{
			name: "fenced code untouched",
			doc:  "```\nReturns:\n    nothing\n```",
			want: "```\nReturns:\n    nothing\n```",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMarkdown(tt.doc))
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "First sentence.", Summary("First sentence. Second one.\n\nBody."))
	assert.Equal(t, "Wrapped line continues.", Summary("Wrapped line\ncontinues.\n\nBody."))
	assert.Equal(t, "", Summary(""))
}

func TestIndex(t *testing.T) {
	a, b := linkedPair(t)
	entries := []IndexEntry{NewIndexEntry("b", b, "html"), NewIndexEntry("a", a, "html")}

	page, err := IndexHTML("Modules", entries)
	require.NoError(t, err)
	assert.Contains(t, page, `<a href="a.html">a</a> — Module a.`)
	assert.Less(t, strings.Index(page, `href="a.html"`), strings.Index(page, `href="b.html"`))

	text := IndexText("Modules", []IndexEntry{NewIndexEntry("a", a, "rst")})
	assert.Equal(t, "Modules\n=======\n\n* `a <a.rst>`_ -- Module a.\n", text)
}
