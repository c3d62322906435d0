package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var tagSelectorPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Selector is a compiled CSS selector.
type Selector struct {
	raw string
	tag string
	m   cascadia.Selector
}

// CompileSelector parses a CSS selector such as "sergey-import", ".active" or
// "a[href]".
func CompileSelector(s string) (*Selector, error) {
	m, err := cascadia.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", s, err)
	}
	sel := &Selector{raw: s, m: m}
	if tagSelectorPattern.MatchString(s) {
		sel.tag = strings.ToLower(s)
	}
	return sel, nil
}

// MustCompileSelector is like CompileSelector but panics on error. It is meant
// for package-level selector variables.
func MustCompileSelector(s string) *Selector {
	sel, err := CompileSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// TagName returns the tag name when the selector is a bare tag selector and
// "" otherwise.
func (s *Selector) TagName() string { return s.tag }

func (s *Selector) String() string { return s.raw }

// Select returns the closed elements matching sel in document order.
// Elements whose end tag is missing in the source are never returned since
// their extent is unknown.
func (d *Document) Select(sel *Selector) []*Element {
	nodes := goquery.NewDocumentFromNode(d.root).FindMatcher(sel.m).Nodes
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		sp, ok := d.spans[n]
		if !ok || !sp.closed {
			continue
		}
		out = append(out, &Element{Node: n, doc: d, sp: *sp})
	}
	return out
}

// Query compiles selector and runs Select.
func (d *Document) Query(selector string) ([]*Element, error) {
	sel, err := CompileSelector(selector)
	if err != nil {
		return nil, err
	}
	return d.Select(sel), nil
}

// QueryBySelector parses src and returns the elements matching selector.
func QueryBySelector(src, selector string) ([]*Element, error) {
	return Parse(src).Query(selector)
}

// Element is a matched element together with its source range.
type Element struct {
	Node *html.Node
	doc  *Document
	sp   span
}

func (e *Element) TagName() string { return e.Node.Data }

// Attr returns the value of the attribute key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when the attribute is absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// Attrs returns a copy of the attributes in source order.
func (e *Element) Attrs() []html.Attribute {
	return append([]html.Attribute(nil), e.Node.Attr...)
}

// OuterHTML returns the element's source text, start tag through end tag.
func (e *Element) OuterHTML() string { return e.doc.src[e.sp.start:e.sp.end] }

// InnerHTML returns the source text between the start and end tags.
func (e *Element) InnerHTML() string { return e.doc.src[e.sp.innerStart:e.sp.innerEnd] }

// Render re-serializes the element from its node, picking up any attribute
// changes made through Node.
func (e *Element) Render() string { return e.doc.RenderNode(e.Node) }

// Start is the byte offset of the start tag.
func (e *Element) Start() int { return e.sp.start }

// End is the byte offset just past the end tag.
func (e *Element) End() int { return e.sp.end }

// Contains reports whether o lies within e's source range.
func (e *Element) Contains(o *Element) bool {
	return o.sp.start >= e.sp.start && o.sp.end <= e.sp.end && o != e
}
