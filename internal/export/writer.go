package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/agentflare-ai/pydoc-export/internal/config"
)

// IndexName is the base name of the optional index page.
const IndexName = "index"

// Writer stores rendered pages as <dir>/<name>.<ext>. Each name is written
// at most once per Writer.
type Writer struct {
	dir     string
	format  config.Format
	written map[string]string
	order   []string
}

// NewWriter returns a Writer for dir and format.
func NewWriter(dir string, format config.Format) *Writer {
	return &Writer{
		dir:     dir,
		format:  format,
		written: make(map[string]string),
	}
}

// Prepare creates the output directory and its parents. An existing
// directory is reused as is; nothing in it is removed.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", w.dir)
	}
	return nil
}

// Path returns the output path of the page called name.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+"."+w.format.Ext())
}

// Seen reports whether a page called name was already written.
func (w *Writer) Seen(name string) bool {
	_, ok := w.written[name]
	return ok
}

// Write stores content as the page called name, replacing any existing
// file. It returns the path written.
func (w *Writer) Write(name, content string) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	if _, ok := w.written[name]; !ok {
		w.order = append(w.order, name)
	}
	w.written[name] = path
	return path, nil
}

// Written returns the paths written so far, in write order.
func (w *Writer) Written() []string {
	paths := make([]string, 0, len(w.order))
	for _, name := range w.order {
		paths = append(paths, w.written[name])
	}
	return paths
}
