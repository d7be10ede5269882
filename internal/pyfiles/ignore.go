package pyfiles

import (
	"bufio"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/pkg/errors"
)

const (
	commentPrefix   = "#"
	gitignoreFile   = ".gitignore"
	infoExcludeFile = ".git/info/exclude"
)

// split turns a slash-separated fs path into the segment form the gitignore
// matcher expects.
func split(p string) []string {
	if p == "." || p == "" {
		return []string{}
	}
	return strings.Split(path.Clean(p), "/")
}

// parsePatterns turns gitignore-syntax strings into patterns rooted at
// domain.
func parsePatterns(patterns, domain []string) []gitignore.Pattern {
	parsed := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if strings.HasPrefix(p, commentPrefix) || strings.TrimSpace(p) == "" {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(p, domain))
	}
	return parsed
}

// parseIgnoreFiles reads the .gitignore and .git/info/exclude files of one
// directory.
func parseIgnoreFiles(fsys fs.FS, dir string) ([]gitignore.Pattern, error) {
	var ps []gitignore.Pattern
	domain := split(dir)
	for _, name := range []string{gitignoreFile, infoExcludeFile} {
		f, err := fsys.Open(path.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "open %s", path.Join(dir, name))
		}
		ps = append(ps, parseIgnoreFile(f, domain)...)
		f.Close()
	}
	return ps, nil
}

func parseIgnoreFile(r io.Reader, domain []string) []gitignore.Pattern {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return parsePatterns(lines, domain)
}

// ignoreSet accumulates patterns while walking. The matcher is rebuilt only
// when patterns were added.
type ignoreSet struct {
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

func (s *ignoreSet) add(ps ...gitignore.Pattern) {
	if len(ps) == 0 {
		return
	}
	s.patterns = append(s.patterns, ps...)
	s.matcher = nil
}

func (s *ignoreSet) match(p string, isDir bool) bool {
	if len(s.patterns) == 0 || p == "." {
		return false
	}
	if s.matcher == nil {
		s.matcher = gitignore.NewMatcher(s.patterns)
	}
	return s.matcher.Match(split(p), isDir)
}
