package pyfiles

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() fstest.MapFS {
	return fstest.MapFS{
		"a.py":                &fstest.MapFile{Data: []byte("class A: pass\n")},
		"b.py":                &fstest.MapFile{Data: []byte("from a import A\n")},
		"notes.txt":           &fstest.MapFile{Data: []byte("not python\n")},
		"setup.pyc":           &fstest.MapFile{Data: []byte{0x00}},
		"document.py":         &fstest.MapFile{Data: []byte("# the exporter itself\n")},
		"pkg/__init__.py":     &fstest.MapFile{},
		"pkg/sub.py":          &fstest.MapFile{},
		"pkg/inner/mod.py":    &fstest.MapFile{},
		"build/generated.py":  &fstest.MapFile{},
		"build/.gitignore":    &fstest.MapFile{Data: []byte("skip.py\n")},
		"build/skip.py":       &fstest.MapFile{},
		".gitignore":          &fstest.MapFile{Data: []byte("# comment\nbuild/\n")},
		"scripts/tool.py":     &fstest.MapFile{},
		"scripts/README.md":   &fstest.MapFile{},
		"scripts/data/x.json": &fstest.MapFile{},
	}
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "all python files",
			want: []string{
				"a.py", "b.py", "build/generated.py", "build/skip.py", "document.py",
				"pkg/__init__.py", "pkg/inner/mod.py", "pkg/sub.py", "scripts/tool.py",
			},
		},
		{
			name: "self excluded",
			opts: Options{Self: "document.py"},
			want: []string{
				"a.py", "b.py", "build/generated.py", "build/skip.py",
				"pkg/__init__.py", "pkg/inner/mod.py", "pkg/sub.py", "scripts/tool.py",
			},
		},
		{
			name: "self outside the tree",
			opts: Options{Self: "../bin/pydoc-export"},
			want: []string{
				"a.py", "b.py", "build/generated.py", "build/skip.py", "document.py",
				"pkg/__init__.py", "pkg/inner/mod.py", "pkg/sub.py", "scripts/tool.py",
			},
		},
		{
			name: "ignore patterns",
			opts: Options{Ignore: []string{"pkg/inner/", "b.py"}},
			want: []string{
				"a.py", "build/generated.py", "build/skip.py", "document.py",
				"pkg/__init__.py", "pkg/sub.py", "scripts/tool.py",
			},
		},
		{
			name: "gitignore files",
			opts: Options{GitIgnore: true},
			want: []string{
				"a.py", "b.py", "document.py",
				"pkg/__init__.py", "pkg/inner/mod.py", "pkg/sub.py", "scripts/tool.py",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Discover(context.Background(), tree(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, files)
		})
	}
}

func TestDiscoverNestedGitignore(t *testing.T) {
	fsys := fstest.MapFS{
		"keep.py":            &fstest.MapFile{},
		"lib/.gitignore":     &fstest.MapFile{Data: []byte("gen_*.py\n")},
		"lib/gen_parser.py":  &fstest.MapFile{},
		"lib/parser.py":      &fstest.MapFile{},
		"other/gen_thing.py": &fstest.MapFile{},
	}
	files, err := Discover(context.Background(), fsys, Options{GitIgnore: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.py", "lib/parser.py", "other/gen_thing.py"}, files)
}

func TestDiscoverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, tree(), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverSymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	if err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "sub", "alias.py")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.py"), filepath.Join(dir, "dangling.py")))

	files, err := Discover(context.Background(), os.DirFS(dir), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"real.py", "sub/alias.py"}, files)
}

func TestModuleName(t *testing.T) {
	isPkg := PackageDirs(tree())
	tests := []struct {
		rel  string
		want string
	}{
		{rel: "a.py", want: "a"},
		{rel: "pkg/__init__.py", want: "pkg"},
		{rel: "pkg/sub.py", want: "pkg.sub"},
		{rel: "pkg/inner/mod.py", want: "mod"},
		{rel: "scripts/tool.py", want: "tool"},
		{rel: "__init__.py", want: "project"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, ModuleName(tt.rel, "project", isPkg))
		})
	}
}

func TestModuleNameNestedPackages(t *testing.T) {
	fsys := fstest.MapFS{
		"src/top/__init__.py":            &fstest.MapFile{},
		"src/top/mid/__init__.py":        &fstest.MapFile{},
		"src/top/mid/leaf.py":            &fstest.MapFile{},
		"src/top/mid/deeper/__init__.py": &fstest.MapFile{},
	}
	isPkg := PackageDirs(fsys)
	assert.Equal(t, "top.mid.leaf", ModuleName("src/top/mid/leaf.py", "root", isPkg))
	assert.Equal(t, "top.mid", ModuleName("src/top/mid/__init__.py", "root", isPkg))
	assert.Equal(t, "top.mid.deeper", ModuleName("src/top/mid/deeper/__init__.py", "root", isPkg))
}

func TestModuleNamePackageRoot(t *testing.T) {
	fsys := fstest.MapFS{
		"__init__.py":          &fstest.MapFile{},
		"base.py":              &fstest.MapFile{},
		"sub/__init__.py":      &fstest.MapFile{},
		"sub/leaf.py":          &fstest.MapFile{},
		"scripts/tool.py":      &fstest.MapFile{},
		"scripts/deep/more.py": &fstest.MapFile{},
	}
	isPkg := PackageDirs(fsys)
	tests := []struct {
		rel  string
		want string
	}{
		{rel: "__init__.py", want: "proj"},
		{rel: "base.py", want: "proj.base"},
		{rel: "sub/__init__.py", want: "proj.sub"},
		{rel: "sub/leaf.py", want: "proj.sub.leaf"},
		{rel: "scripts/tool.py", want: "tool"},
		{rel: "scripts/deep/more.py", want: "more"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, ModuleName(tt.rel, "proj", isPkg))
		})
	}
}
