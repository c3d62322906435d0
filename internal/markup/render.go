package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "keygen": {}, "link": {}, "meta": {}, "param": {}, "source": {},
	"track": {}, "wbr": {},
}

func isVoid(name string) bool {
	_, ok := voidElements[name]
	return ok
}

// IsVoid reports whether name is an HTML void element.
func IsVoid(name string) bool { return isVoid(strings.ToLower(name)) }

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")

// EscapeAttr escapes a value for use inside a double-quoted attribute.
func EscapeAttr(v string) string { return attrEscaper.Replace(v) }

// RenderStartTag renders <name k="v" ...> with attributes in the given order.
func RenderStartTag(name string, attrs []html.Attribute) string {
	var b strings.Builder
	writeStartTag(&b, name, attrs)
	return b.String()
}

func writeStartTag(b *strings.Builder, name string, attrs []html.Attribute) {
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

// Render serializes the document.
func (d *Document) Render() string {
	var b strings.Builder
	b.Grow(len(d.src))
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		d.render(&b, c)
	}
	return b.String()
}

// RenderNode serializes n and its children using the document's spans to
// decide whether an end tag is emitted.
func (d *Document) RenderNode(n *html.Node) string {
	var b strings.Builder
	d.render(&b, n)
	return b.String()
}

func (d *Document) render(b *strings.Builder, n *html.Node) {
	if n.Type != html.ElementNode {
		b.WriteString(n.Data)
		return
	}
	writeStartTag(b, n.Data, n.Attr)
	if isVoid(n.Data) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.render(b, c)
	}
	if sp, ok := d.spans[n]; ok && !sp.closed {
		return
	}
	b.WriteString("</")
	b.WriteString(n.Data)
	b.WriteByte('>')
}
