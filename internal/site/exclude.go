package site

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// SystemNames are never compiled, copied or loaded as partials. Entries match
// any file or directory whose name starts with them.
var SystemNames = []string{
	".git",
	".DS_Store",
	".prettierrc",
	"node_modules",
	"package.json",
	"package-lock.json",
}

// Excluder decides which entries of the source tree take part in a build.
type Excluder struct {
	prefixes []string
	dirs     map[string]bool
	ignore   gitignore.Matcher
}

// NewExcluder combines SystemNames, the user's name prefixes, the given
// root-relative directories and the patterns of root/.gitignore.
func NewExcluder(root string, prefixes []string, dirs ...string) (*Excluder, error) {
	e := &Excluder{
		prefixes: append(append([]string(nil), SystemNames...), prefixes...),
		dirs:     make(map[string]bool, len(dirs)),
	}
	for _, d := range dirs {
		if d = filepath.ToSlash(filepath.Clean(d)); d != "." && !strings.HasPrefix(d, "../") {
			e.dirs[d] = true
		}
	}

	patterns, err := readGitignore(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil, err
	}
	if len(patterns) > 0 {
		e.ignore = gitignore.NewMatcher(patterns)
	}
	return e, nil
}

func readGitignore(path string) ([]gitignore.Pattern, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var patterns []gitignore.Pattern
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, sc.Err()
}

// SkipName reports whether a base name matches one of the excluded prefixes.
func (e *Excluder) SkipName(name string) bool {
	for _, p := range e.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Excluded reports whether the slash separated, root-relative path rel is
// left out of the build.
func (e *Excluder) Excluded(rel string, isDir bool) bool {
	if e.dirs[rel] || e.SkipName(path.Base(rel)) {
		return true
	}
	return e.ignore != nil && e.ignore.Match(strings.Split(rel, "/"), isDir)
}
