// Package rewrite replaces custom tags inside HTML text.
//
// A pass finds the elements matching a selector and splices a replacement over
// each element's exact source range, so bytes outside the matched elements are
// never touched. Elements nested inside an element that was already replaced
// are not visited, and text produced by a replacement is never matched again
// within the same pass.
//
// Tags written inside attribute values (<meta content="<sergey-slot></sergey-slot>">)
// are not elements of the parsed tree. For bare tag selectors a second,
// regex-based pass picks those up.
package rewrite

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sergey/internal/markup"
)

// Skip, returned from a Func, leaves the element as it is. Elements nested
// inside a skipped element are still visited.
var Skip = errors.New("rewrite: skip element")

// Func produces the replacement text for one matched element.
type Func func(el *markup.Element) (string, error)

// Error reports the element a Func failed on. When passes are nested (a Func
// that rewrites the element's content itself) the innermost location is kept.
type Error struct {
	Tag    string
	Offset int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rewrite <%s> at offset %d: %v", e.Tag, e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(tag string, offset int, err error) error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return err
	}
	return &Error{Tag: tag, Offset: offset, Err: err}
}

// Tag compiles selector and runs TagSelector.
func Tag(src, selector string, fn Func) (string, error) {
	sel, err := markup.CompileSelector(selector)
	if err != nil {
		return "", err
	}
	return TagSelector(src, sel, fn)
}

// TagSelector replaces every element of src matching sel with the text fn
// returns for it. An error from fn other than Skip aborts the pass.
func TagSelector(src string, sel *markup.Selector, fn Func) (string, error) {
	out, marked, err := replaceElements(src, sel, fn)
	if err != nil {
		return "", err
	}
	tag := sel.TagName()
	if tag == "" || !hasUnmarked(out, "</"+tag+">", marked) {
		return out, nil
	}
	return replaceInText(out, sel, tag, marked, fn)
}

func replaceElements(src string, sel *markup.Selector, fn Func) (string, []Range, error) {
	var edits []Edit
	visitedEnd := -1
	for _, el := range markup.Parse(src).Select(sel) {
		if el.Start() < visitedEnd {
			continue
		}
		repl, err := fn(el)
		if errors.Is(err, Skip) {
			continue
		}
		if err != nil {
			return "", nil, wrapErr(el.TagName(), el.Start(), err)
		}
		edits = append(edits, Edit{Start: el.Start(), End: el.End(), Replacement: repl})
		visitedEnd = el.End()
	}
	return Apply(src, edits)
}

var (
	textPatternsMu sync.Mutex
	textPatterns   = map[string]*regexp.Regexp{}
)

func textPattern(tag string) *regexp.Regexp {
	textPatternsMu.Lock()
	defer textPatternsMu.Unlock()
	if re, ok := textPatterns[tag]; ok {
		return re
	}
	q := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(`<` + q + `(\s[^<>]*)?>[^<]*</` + q + `>`)
	textPatterns[tag] = re
	return re
}

// replaceInText handles occurrences the tree did not expose as elements, most
// notably tags written inside attribute values. Matches inside a start tag
// are entity-decoded before they are parsed and their replacement is escaped
// for the attribute it lands in.
func replaceInText(src string, sel *markup.Selector, tag string, marked []Range, fn Func) (string, error) {
	doc := markup.Parse(src)
	var edits []Edit
	for _, m := range textPattern(tag).FindAllStringIndex(src, -1) {
		if overlapsAny(marked, m[0], m[1]) {
			continue
		}
		inAttr := doc.InStartTag(m[0])
		frag := src[m[0]:m[1]]
		if inAttr {
			frag = html.UnescapeString(frag)
		}
		els := markup.Parse(frag).Select(sel)
		if len(els) == 0 {
			continue
		}
		repl, err := fn(els[0])
		if errors.Is(err, Skip) {
			continue
		}
		if err != nil {
			return "", wrapErr(tag, m[0], err)
		}
		if inAttr {
			repl = markup.EscapeAttr(repl)
		}
		edits = append(edits, Edit{Start: m[0], End: m[1], Replacement: repl})
	}
	out, _, err := Apply(src, edits)
	return out, err
}

func hasUnmarked(s, needle string, marked []Range) bool {
	for off := 0; ; {
		i := strings.Index(s[off:], needle)
		if i < 0 {
			return false
		}
		start := off + i
		if !overlapsAny(marked, start, start+len(needle)) {
			return true
		}
		off = start + len(needle)
	}
}

func overlapsAny(ranges []Range, start, end int) bool {
	for _, r := range ranges {
		if r.overlaps(start, end) {
			return true
		}
	}
	return false
}
