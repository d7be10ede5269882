// Package pyfiles finds the Python source files of a directory tree and
// derives their dotted module names.
package pyfiles

import (
	"context"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Ext is the suffix of the files Discover reports.
const Ext = ".py"

// Options controls Discover.
type Options struct {
	// Self is the slash-separated path of the running program relative to
	// the walked filesystem. It is left out of the result when found.
	Self string
	// Ignore holds extra gitignore-syntax patterns applied from the root.
	Ignore []string
	// GitIgnore makes Discover honor .gitignore and .git/info/exclude files.
	GitIgnore bool
}

// Discover walks fsys from its root and returns the paths of all Python
// source files in lexical walk order. Symbolic links are reported when
// they resolve to regular files; linked directories are not followed.
func Discover(ctx context.Context, fsys fs.FS, opts Options) ([]string, error) {
	ignores := &ignoreSet{}
	ignores.add(parsePatterns(opts.Ignore, nil)...)

	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %s", p)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if ignores.match(p, true) {
				return fs.SkipDir
			}
			if opts.GitIgnore {
				ps, err := parseIgnoreFiles(fsys, p)
				if err != nil {
					return err
				}
				ignores.add(ps...)
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), Ext) || ignores.match(p, false) {
			return nil
		}
		ok, err := isRegular(fsys, p, d)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Self != "" {
		if idx := slices.Index(files, path.Clean(opts.Self)); idx >= 0 {
			files = slices.Delete(files, idx, idx+1)
		}
	}
	return files, nil
}

func isRegular(fsys fs.FS, p string, d fs.DirEntry) (bool, error) {
	mode := d.Type()
	if mode.IsRegular() {
		return true, nil
	}
	if mode&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := fs.Stat(fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// dangling link
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", p)
	}
	return info.Mode().IsRegular(), nil
}

// ModuleName derives the dotted module name of the source file at rel.
// Parent directories contribute their names while isPackageDir reports
// them as packages; the chain stops at the first plain directory or at the
// walk root. When the walk root is itself a package, its __init__.py is
// named rootName and every chain reaching the root is prefixed with it.
func ModuleName(rel, rootName string, isPackageDir func(dir string) bool) string {
	rel = path.Clean(rel)
	dir, file := path.Split(rel)
	dir = path.Clean(dir)

	var parts []string
	if file != "__init__.py" {
		parts = append(parts, strings.TrimSuffix(file, Ext))
	} else if dir == "." {
		return rootName
	} else {
		parts = append(parts, path.Base(dir))
		dir = path.Dir(dir)
	}
	for dir != "." && isPackageDir(dir) {
		parts = append(parts, path.Base(dir))
		dir = path.Dir(dir)
	}
	if dir == "." && isPackageDir(".") {
		parts = append(parts, rootName)
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}

// PackageDirs returns an isPackageDir function for ModuleName backed by
// fsys: a directory is a package when it holds an __init__.py.
func PackageDirs(fsys fs.FS) func(dir string) bool {
	cache := make(map[string]bool)
	return func(dir string) bool {
		if known, ok := cache[dir]; ok {
			return known
		}
		_, err := fs.Stat(fsys, path.Join(dir, "__init__.py"))
		cache[dir] = err == nil
		return cache[dir]
	}
}
