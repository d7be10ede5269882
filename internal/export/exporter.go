// Package export drives a documentation run: it discovers the Python files
// of the input tree, builds and links their documentation, walks every
// module and its submodules, and writes one page per module.
package export

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/agentflare-ai/pydoc-export/internal/config"
	"github.com/agentflare-ai/pydoc-export/internal/pydoc"
	"github.com/agentflare-ai/pydoc-export/internal/pyfiles"
	"github.com/agentflare-ai/pydoc-export/internal/render"
)

// Exporter runs documentation exports for one configuration.
type Exporter struct {
	cfg    config.Config
	logger *log.Logger
	self   string
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(logger *log.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithSelf names the running program. When it lies inside the input tree
// it is left out of the discovered files.
func WithSelf(path string) Option {
	return func(e *Exporter) {
		e.self = path
	}
}

// New returns an Exporter for cfg.
func New(cfg config.Config, opts ...Option) *Exporter {
	e := &Exporter{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "pydoc-export",
			Level:  log.WarnLevel,
		})
	}
	if e.cfg.Jobs < 1 {
		e.cfg.Jobs = 1
	}
	return e
}

// Project is the documented input tree.
type Project struct {
	// Root is the absolute input directory.
	Root string
	// Files are the discovered sources relative to Root, slash separated.
	Files []string
	// Modules holds one top-level module per documented file, in
	// discovery order.
	Modules []*pydoc.Module
	// Context links every registered module.
	Context *pydoc.Context
}

// Summary reports the outcome of Run.
type Summary struct {
	Files   int
	Modules int
	Pages   int
	Written []string
	// Index is the path of the index page, empty unless one was written.
	Index string
}

type source struct {
	rel  string
	name string
}

// Load discovers, parses, registers and links the modules of the input
// tree. Files are parsed in parallel; modules are registered in discovery
// order once all parses succeeded. A later file whose module name is
// already registered replaces the earlier one.
func (e *Exporter) Load(ctx context.Context) (*Project, error) {
	root, err := filepath.Abs(e.cfg.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve input %s", e.cfg.Input)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "input")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("input %s is not a directory", root)
	}
	fsys := os.DirFS(root)

	files, err := pyfiles.Discover(ctx, fsys, pyfiles.Options{
		Self:      e.selfRel(root),
		Ignore:    e.cfg.Ignore,
		GitIgnore: e.cfg.GitIgnore,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", root)
	}
	e.logger.Debug("discovered python files", "root", root, "count", len(files))

	isPackage := pyfiles.PackageDirs(fsys)
	rootName := filepath.Base(root)
	sources := make([]source, 0, len(files))
	for _, rel := range files {
		name := pyfiles.ModuleName(rel, rootName, isPackage)
		if e.excluded(name) {
			e.logger.Debug("excluded module", "module", name, "file", rel)
			continue
		}
		sources = append(sources, source{rel: rel, name: name})
	}

	modules, err := e.parse(ctx, fsys, root, sources)
	if err != nil {
		return nil, err
	}

	pctx := pydoc.NewContext()
	for _, m := range modules {
		if prev := pctx.Add(m); prev != nil {
			e.logger.Warn("duplicate module name, later file wins", "module", m.Name, "replaced", prev.Path, "by", m.Path)
		}
	}
	pydoc.LinkInheritance(pctx)

	return &Project{
		Root:    root,
		Files:   files,
		Modules: modules,
		Context: pctx,
	}, nil
}

func (e *Exporter) parse(ctx context.Context, fsys fs.FS, root string, sources []source) ([]*pydoc.Module, error) {
	modules := make([]*pydoc.Module, len(sources))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.cfg.Jobs)
	for i, src := range sources {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, src.rel)
			if err != nil {
				return errors.Wrapf(err, "read %s", src.rel)
			}
			m, err := pydoc.ParseModule(src.name, filepath.Join(root, filepath.FromSlash(src.rel)), data)
			if err != nil {
				return err
			}
			e.logger.Debug("parsed module", "module", m.Name, "file", src.rel)
			modules[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

func (e *Exporter) selfRel(root string) string {
	if e.self == "" {
		return ""
	}
	self, err := filepath.Abs(e.self)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(root, self)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (e *Exporter) excluded(name string) bool {
	for _, pattern := range e.cfg.Exclude {
		if wildcard.Match(strings.TrimSpace(pattern), name) {
			return true
		}
	}
	return false
}

// Run exports every module of the input tree and its submodules into the
// output directory. The first error stops the run; pages written before it
// stay in place.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	project, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}

	w := NewWriter(e.cfg.Output, e.cfg.Format)
	if err := w.Prepare(); err != nil {
		return nil, err
	}

	opts := render.Options{ShowSource: e.cfg.ShowSource}
	var entries []render.IndexEntry
	for _, m := range project.Modules {
		for page := range Walk(m, "", opts) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if w.Seen(page.Name) || project.Context.Module(page.Module.Name) != page.Module {
				continue
			}
			content, err := page.Render(e.cfg.Format)
			if err != nil {
				return nil, errors.Wrapf(err, "render %s", page.Name)
			}
			path, err := w.Write(page.Name, content)
			if err != nil {
				return nil, err
			}
			e.logger.Debug("wrote page", "module", page.Name, "path", path)
			entries = append(entries, render.NewIndexEntry(page.Name, page.Module, e.cfg.Format.Ext()))
		}
	}

	summary := &Summary{
		Files:   len(project.Files),
		Modules: project.Context.Len(),
		Pages:   len(w.Written()),
		Written: w.Written(),
	}
	if e.cfg.Index {
		if w.Seen(IndexName) {
			e.logger.Warn("module named index overrides the index page", "path", w.Path(IndexName))
		}
		path, err := e.writeIndex(w, project, entries)
		if err != nil {
			return nil, err
		}
		summary.Index = path
	}
	return summary, nil
}

func (e *Exporter) writeIndex(w *Writer, project *Project, entries []render.IndexEntry) (string, error) {
	title := filepath.Base(project.Root) + " API documentation"
	var (
		content string
		err     error
	)
	switch e.cfg.Format {
	case config.RST:
		content = render.IndexText(title, entries)
	default:
		content, err = render.IndexHTML(title, entries)
		if err != nil {
			return "", err
		}
	}
	path := w.Path(IndexName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	e.logger.Debug("wrote index", "path", path)
	return path, nil
}
