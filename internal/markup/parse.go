package markup

import (
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// span is the source range of one element.
//
// start..innerStart covers the start tag, innerStart..innerEnd the content and
// innerEnd..end the end tag. For void and self-closing elements the inner range
// is empty and positioned at end.
type span struct {
	start      int
	innerStart int
	innerEnd   int
	end        int
	closed     bool
}

// Document is a parsed HTML fragment.
type Document struct {
	src   string
	root  *html.Node
	spans map[*html.Node]*span
	// start tag ranges in source order, used to answer InStartTag
	tags [][2]int
}

// Parse builds a Document from src. It never fails: anything the tokenizer
// does not recognize as a tag is kept as raw text.
func Parse(src string) *Document {
	doc := &Document{
		src:   src,
		root:  &html.Node{Type: html.DocumentNode},
		spans: make(map[*html.Node]*span),
	}

	z := html.NewTokenizer(strings.NewReader(src))
	stack := []*html.Node{doc.root}
	pos := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// The tokenizer only fails on the reader, which cannot happen for a
				// strings.Reader. Keep whatever is left as text.
				doc.appendRaw(stack[len(stack)-1], src[pos:])
			} else if rest := len(z.Raw()); rest > 0 && pos+rest <= len(src) {
				doc.appendRaw(stack[len(stack)-1], src[pos:pos+rest])
			}
			break
		}

		start := pos
		pos += len(z.Raw())
		end := pos
		parent := stack[len(stack)-1]

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			node := newElement(z)
			parent.AppendChild(node)
			doc.tags = append(doc.tags, [2]int{start, end})
			if node.Data == "title" || node.Data == "textarea" {
				z.NextIsNotRawText()
			}

			if tt == html.SelfClosingTagToken || isVoid(node.Data) {
				doc.spans[node] = &span{start: start, innerStart: end, innerEnd: end, end: end, closed: true}
				continue
			}
			doc.spans[node] = &span{start: start, innerStart: end}
			stack = append(stack, node)

		case html.EndTagToken:
			name, _ := z.TagName()
			i := findOpen(stack, string(name))
			if i < 0 {
				doc.appendRaw(parent, src[start:end])
				continue
			}
			for _, open := range stack[i+1:] {
				sp := doc.spans[open]
				sp.innerEnd, sp.end = start, start
			}
			sp := doc.spans[stack[i]]
			sp.innerEnd, sp.end, sp.closed = start, end, true
			stack = stack[:i]

		default:
			doc.appendRaw(parent, src[start:end])
		}
	}

	for _, open := range stack[1:] {
		sp := doc.spans[open]
		sp.innerEnd, sp.end = len(src), len(src)
	}
	return doc
}

func newElement(z *html.Tokenizer) *html.Node {
	name, hasAttr := z.TagName()
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     string(name),
		DataAtom: atom.Lookup(name),
	}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		setAttr(node, string(key), string(val))
	}
	return node
}

// setAttr keeps the first position of a repeated attribute and the last value.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func (d *Document) appendRaw(parent *html.Node, raw string) {
	if raw == "" {
		return
	}
	parent.AppendChild(&html.Node{Type: html.RawNode, Data: raw})
}

func findOpen(stack []*html.Node, name string) int {
	for i := len(stack) - 1; i > 0; i-- {
		if stack[i].Data == name {
			return i
		}
	}
	return -1
}

// Source returns the text the document was parsed from.
func (d *Document) Source() string { return d.src }

// Root returns the synthetic document node holding the top-level nodes.
func (d *Document) Root() *html.Node { return d.root }

// InStartTag reports whether the byte offset pos lies inside the start tag of
// some element, i.e. inside its attribute list.
func (d *Document) InStartTag(pos int) bool {
	i := sort.Search(len(d.tags), func(i int) bool { return d.tags[i][1] > pos })
	return i < len(d.tags) && d.tags[i][0] < pos
}
