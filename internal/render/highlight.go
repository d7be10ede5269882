package render

import (
	"bytes"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/pkg/errors"
)

const sourceStyle = "github"

var (
	pythonLexer = sync.OnceValue(func() chroma.Lexer {
		lexer := lexers.Get("python")
		if lexer == nil {
			lexer = lexers.Fallback
		}
		return chroma.Coalesce(lexer)
	})
	sourceFormatter = chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.TabWidth(4),
	)
)

// highlight renders Python source as an HTML block using CSS classes.
func highlight(src string) (string, error) {
	iterator, err := pythonLexer().Tokenise(nil, src)
	if err != nil {
		return "", errors.Wrap(err, "tokenise source")
	}
	var buf bytes.Buffer
	if err := sourceFormatter.Format(&buf, styles.Get(sourceStyle), iterator); err != nil {
		return "", errors.Wrap(err, "format source")
	}
	return buf.String(), nil
}

// highlightCSS returns the stylesheet for the classes highlight emits.
func highlightCSS() (string, error) {
	var buf bytes.Buffer
	if err := sourceFormatter.WriteCSS(&buf, styles.Get(sourceStyle)); err != nil {
		return "", errors.Wrap(err, "write source stylesheet")
	}
	return buf.String(), nil
}
