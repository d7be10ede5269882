package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflare-ai/pydoc-export/internal/config"
	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
	"github.com/agentflare-ai/pydoc-export/internal/render"
)

var project = map[string]string{
	"a.py":            "\"\"\"Module a.\"\"\"\n\nclass A:\n    \"\"\"Base.\"\"\"\n\n    def run(self):\n        \"\"\"Run.\"\"\"\n",
	"b.py":            "from a import A\n\nclass B(A):\n    pass\n",
	"notes.txt":       "not python\n",
	"pkg/__init__.py": "\"\"\"The package.\"\"\"\n",
	"pkg/sub.py":      "\"\"\"Sub module.\"\"\"\nfrom . import helpers\n",
	"pkg/helpers.py":  "def helper():\n    pass\n",
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func testConfig(input, output string, format config.Format) config.Config {
	cfg := config.Default()
	cfg.Input = input
	cfg.Output = output
	cfg.Format = format
	cfg.Jobs = 2
	return cfg
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunHTML(t *testing.T) {
	root := writeTree(t, project)
	out := filepath.Join(t.TempDir(), "nested", "doc")

	summary, err := New(testConfig(root, out, config.HTML)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Files)
	assert.Equal(t, 5, summary.Modules)
	assert.Equal(t, 5, summary.Pages)
	assert.Equal(t, []string{"a.html", "b.html", "pkg.helpers.html", "pkg.html", "pkg.sub.html"}, listDir(t, out))

	page, err := os.ReadFile(filepath.Join(out, "b.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<a href="a.html#A">a.A</a>`)

	pkg, err := os.ReadFile(filepath.Join(out, "pkg.html"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `<a href="pkg.sub.html">pkg.sub</a>`)
}

func TestRunRST(t *testing.T) {
	root := writeTree(t, project)
	out := t.TempDir()

	summary, err := New(testConfig(root, out, config.RST)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Pages)
	for _, name := range listDir(t, out) {
		assert.True(t, strings.HasSuffix(name, ".rst"), name)
	}
}

func TestRunIdempotent(t *testing.T) {
	root := writeTree(t, project)
	out := t.TempDir()
	cfg := testConfig(root, out, config.HTML)
	cfg.ShowSource = true

	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	first := map[string][]byte{}
	for _, name := range listDir(t, out) {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		first[name] = data
	}

	_, err = New(cfg).Run(context.Background())
	require.NoError(t, err)
	for name, data := range first {
		again, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, again), name)
	}
}

func TestRunReusesOutputDir(t *testing.T) {
	root := writeTree(t, project)
	out := t.TempDir()
	keep := filepath.Join(out, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("mine"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.html"), []byte("stale"), 0o644))

	_, err := New(testConfig(root, out, config.HTML)).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
	page, err := os.ReadFile(filepath.Join(out, "a.html"))
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(page))
}

func TestRunExcludesSelf(t *testing.T) {
	files := map[string]string{"document.py": "import pdoc\n"}
	for k, v := range project {
		files[k] = v
	}
	root := writeTree(t, files)
	out := t.TempDir()

	summary, err := New(testConfig(root, out, config.HTML), WithSelf(filepath.Join(root, "document.py"))).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Files)
	assert.NotContains(t, listDir(t, out), "document.html")
}

func TestRunExcludeAndIndex(t *testing.T) {
	root := writeTree(t, project)
	out := t.TempDir()
	cfg := testConfig(root, out, config.RST)
	cfg.Exclude = []string{"pkg.h*"}
	cfg.Index = true

	summary, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Pages)
	assert.Equal(t, filepath.Join(out, "index.rst"), summary.Index)
	assert.NotContains(t, listDir(t, out), "pkg.helpers.rst")

	index, err := os.ReadFile(summary.Index)
	require.NoError(t, err)
	assert.Contains(t, string(index), "* `a <a.rst>`_ -- Module a.")
	assert.Contains(t, string(index), "* `pkg.sub <pkg.sub.rst>`_ -- Sub module.")
}

func TestRunSyntaxError(t *testing.T) {
	files := map[string]string{"broken.py": "def f(:\n    pass\n"}
	for k, v := range project {
		files[k] = v
	}
	root := writeTree(t, files)
	out := filepath.Join(t.TempDir(), "doc")

	_, err := New(testConfig(root, out, config.HTML)).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.py")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "nothing is written when parsing fails")
}

func TestRunDuplicateModuleNames(t *testing.T) {
	root := writeTree(t, map[string]string{
		"one/util.py": "\"\"\"First.\"\"\"\n",
		"two/util.py": "\"\"\"Second.\"\"\"\n",
	})
	out := t.TempDir()
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	summary, err := New(testConfig(root, out, config.RST), WithLogger(logger)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.Pages)
	assert.Contains(t, logs.String(), "duplicate module name")

	data, err := os.ReadFile(filepath.Join(out, "util.rst"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Second.")
}

func TestRunPackageRoot(t *testing.T) {
	root := filepath.Join(writeTree(t, map[string]string{
		"mylib/__init__.py":     "\"\"\"The library.\"\"\"\n",
		"mylib/core.py":         "class Core:\n    \"\"\"Core.\"\"\"\n",
		"mylib/ext.py":          "from .core import Core\n\nclass Ext(Core):\n    pass\n",
		"mylib/sub/__init__.py": "",
	}), "mylib")
	out := t.TempDir()

	_, err := New(testConfig(root, out, config.HTML)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mylib.core.html", "mylib.ext.html", "mylib.html", "mylib.sub.html"}, listDir(t, out))

	pkg, err := os.ReadFile(filepath.Join(out, "mylib.html"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `<a href="mylib.core.html">mylib.core</a>`)
	assert.Contains(t, string(pkg), `<a href="mylib.sub.html">mylib.sub</a>`)

	ext, err := os.ReadFile(filepath.Join(out, "mylib.ext.html"))
	require.NoError(t, err)
	assert.Contains(t, string(ext), `<a href="mylib.core.html#Core">mylib.core.Core</a>`)
}

func TestRunInputErrors(t *testing.T) {
	_, err := New(testConfig(filepath.Join(t.TempDir(), "missing"), t.TempDir(), config.HTML)).Run(context.Background())
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.py")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(testConfig(file, t.TempDir(), config.HTML)).Run(context.Background())
	require.ErrorContains(t, err, "not a directory")
}

func TestWalk(t *testing.T) {
	ctx := pydoc.NewContext()
	for name, path := range map[string]string{
		"pkg":          "pkg/__init__.py",
		"pkg.sub":      "pkg/sub/__init__.py",
		"pkg.sub.leaf": "pkg/sub/leaf.py",
		"pkg.mod":      "pkg/mod.py",
	} {
		_, err := pydoc.NewModule(ctx, name, path, []byte("x = 1\n"))
		require.NoError(t, err)
	}

	var names []string
	for page := range Walk(ctx.Module("pkg"), "", render.Options{}) {
		names = append(names, page.Name)
	}
	assert.Equal(t, []string{"pkg", "pkg.mod", "pkg.sub", "pkg.sub.leaf"}, names)

	var first []string
	for page := range Walk(ctx.Module("pkg"), "", render.Options{}) {
		first = append(first, page.Name)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"pkg", "pkg.mod"}, first)
}

func TestPageName(t *testing.T) {
	tests := []struct {
		name, parent, want string
	}{
		{name: "pkg", parent: "", want: "pkg"},
		{name: "pkg.sub", parent: "pkg", want: "pkg.sub"},
		{name: "pkg.sub.leaf", parent: "pkg.sub", want: "pkg.sub.leaf"},
		{name: "sub", parent: "pkg", want: "pkg.sub"},
		{name: "pkgx", parent: "pkg", want: "pkg.pkgx"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.parent, func(t *testing.T) {
			got := pageName(tt.name, tt.parent)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.HasPrefix(got, "."))
		})
	}
}

func TestPageRender(t *testing.T) {
	ctx := pydoc.NewContext()
	m, err := pydoc.NewModule(ctx, "m", "m.py", []byte("\"\"\"Doc.\"\"\"\n"))
	require.NoError(t, err)
	page := Page{Name: "m", Module: m}

	html, err := page.Render(config.HTML)
	require.NoError(t, err)
	assert.Contains(t, html, "<!doctype html>")

	text, err := page.Render(config.RST)
	require.NoError(t, err)
	assert.Contains(t, text, ".. py:module:: m")

	_, err = page.Render(config.Format("pdf"))
	require.ErrorIs(t, err, config.ErrInvalidFormat)
}
