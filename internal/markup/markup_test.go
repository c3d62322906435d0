package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"self-closing custom tag", `<div><sergey-slot /><img></div>`, `<div><sergey-slot></sergey-slot><img></div>`},
		{"self-closing with attributes", `<sergey-import src="header" />`, `<sergey-import src="header"></sergey-import>`},
		{"void element", `<img src="a.png" />`, `<img src="a.png">`},
		{"void element across lines", "<img\n  src=\"a.png\"\n/>", `<img src="a.png">`},
		{"quotes normalized", `<a href='x' class=y>t</a>`, `<a href="x" class="y">t</a>`},
		{"lowercase names", `<DIV Class="A">x</DIV>`, `<div class="A">x</div>`},
		{"duplicate attribute", `<p id="a" class="b" id="c">x</p>`, `<p id="c" class="b">x</p>`},
		{"valueless attribute", `<input disabled>`, `<input disabled="">`},
		{"escaped values", `<p title="a &amp; &quot;b&quot;">x</p>`, `<p title="a &amp; &quot;b&quot;">x</p>`},
		{"unclosed element", `<div><p>text</div>`, `<div><p>text</div>`},
		{"stray end tag", `<p>a</span>b</p>`, `<p>a</span>b</p>`},
		{"comments and doctype", "<!DOCTYPE html>\n<!-- note --><p>x</p>", "<!DOCTYPE html>\n<!-- note --><p>x</p>"},
		{"text untouched", "a < b &amp; c", "a < b &amp; c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_WhitespaceOnlyUnchanged(t *testing.T) {
	for _, in := range []string{"", " ", "\n\t  \n"} {
		require.Equal(t, in, Normalize(in))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`<div><sergey-slot /><img></div>`,
		`<html><head><title>x</title></head><body><sergey-import src="a" /></body></html>`,
		`<div><p>unclosed</div></p>`,
		`<p title="<get-title />"><get-text /></p>`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalize_TagInsideAttribute(t *testing.T) {
	out := Normalize(`<div><p title="<get-title />"><get-text /></p></div>`)
	require.Equal(t, `<div><p title="<get-title></get-title>"><get-text></get-text></p></div>`, out)
}

func TestQuery_NestedMatches(t *testing.T) {
	els, err := QueryBySelector(`<div>first <div>second</div> first</div><div>third</div>`, "div")
	require.NoError(t, err)
	require.Len(t, els, 3)
	assert.Equal(t, `<div>first <div>second</div> first</div>`, els[0].OuterHTML())
	assert.Equal(t, `first <div>second</div> first`, els[0].InnerHTML())
	assert.Equal(t, `<div>second</div>`, els[1].OuterHTML())
	assert.Equal(t, `<div>third</div>`, els[2].OuterHTML())
	assert.True(t, els[0].Contains(els[1]))
	assert.False(t, els[0].Contains(els[2]))
}

func TestQuery_ClassSelector(t *testing.T) {
	src := `<div><p class="inner-only">KEEP</p><p class="attrb" data-foo="bar">attrb</p></div>`
	els, err := QueryBySelector(src, ".attrb")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, "p", els[0].TagName())
	assert.Equal(t, "bar", els[0].AttrOr("data-foo", ""))
	assert.Equal(t, "none", els[0].AttrOr("missing", "none"))

	_, ok := els[0].Attr("missing")
	assert.False(t, ok)
}

func TestQuery_SkipsUnclosedElements(t *testing.T) {
	els, err := QueryBySelector(`<section><p>one<p>two</p></section>`, "p")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, `<p>two</p>`, els[0].OuterHTML())
}

func TestQuery_TitleContentIsMarkup(t *testing.T) {
	els, err := QueryBySelector(`<title><sergey-slot name="title"></sergey-slot></title>`, "sergey-slot")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, "title", els[0].AttrOr("name", ""))
}

func TestQuery_InvalidSelector(t *testing.T) {
	_, err := QueryBySelector(`<p>x</p>`, "p[")
	require.Error(t, err)
}

func TestSelector_TagName(t *testing.T) {
	assert.Equal(t, "sergey-import", MustCompileSelector("sergey-import").TagName())
	assert.Equal(t, "", MustCompileSelector(".active").TagName())
	assert.Equal(t, "", MustCompileSelector("a[href]").TagName())
}

func TestElement_RenderReflectsNodeChanges(t *testing.T) {
	els, err := QueryBySelector(`<p class="attrb" data-foo="bar">attrb</p>`, ".attrb")
	require.NoError(t, err)
	require.Len(t, els, 1)

	el := els[0]
	for i := range el.Node.Attr {
		if el.Node.Attr[i].Key == "data-foo" {
			el.Node.Attr[i].Val = "baz"
		}
	}
	assert.Equal(t, `<p class="attrb" data-foo="baz">attrb</p>`, el.Render())
	assert.Equal(t, `<p class="attrb" data-foo="bar">attrb</p>`, el.OuterHTML())
}

func TestDocument_InStartTag(t *testing.T) {
	src := `<p title="<x></x>">y</p>`
	doc := Parse(src)
	assert.True(t, doc.InStartTag(strings.Index(src, "<x>")))
	assert.False(t, doc.InStartTag(strings.Index(src, "y<")))
	assert.False(t, doc.InStartTag(0))
}

func TestRenderStartTag(t *testing.T) {
	doc := Parse(`<a href="/" id="x">t</a>`)
	els := doc.Select(MustCompileSelector("a"))
	require.Len(t, els, 1)
	assert.Equal(t, `<a href="/" id="x">`, RenderStartTag("a", els[0].Attrs()))
	assert.Equal(t, "a &amp; &quot;b&quot;", EscapeAttr(`a & "b"`))
}

func TestIsVoid(t *testing.T) {
	assert.True(t, IsVoid("IMG"))
	assert.True(t, IsVoid("wbr"))
	assert.False(t, IsVoid("sergey-slot"))
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "<p>x</p>", Trim("\n  <p>x</p>\t\n"))
}
