package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  string
		want  string
	}{
		{
			name:  "a link",
			input: `<sergey-link to="/example/">Example Link</sergey-link>`,
			want:  `<a href="/example/">Example Link</a>`,
		},
		{
			name: "multiple links",
			input: `
      <sergey-link to="/example-1/">Example Link 1</sergey-link>
      <sergey-link to="/example-2/">Example Link 2</sergey-link>
      `,
			want: `
      <a href="/example-1/">Example Link 1</a>
      <a href="/example-2/">Example Link 2</a>
      `,
		},
		{
			name:  "identical current path",
			input: `<sergey-link to="/example/index.html">Example</sergey-link>`,
			path:  "/example/index.html",
			want:  `<a href="/example/index.html" class="active" aria-current="page">Example</a>`,
		},
		{
			name:  "directory of current path",
			input: `<sergey-link to="/example/">Example</sergey-link>`,
			path:  "/example/index.html",
			want:  `<a href="/example/" class="active" aria-current="page">Example</a>`,
		},
		{
			name:  "parent path",
			input: `<sergey-link to="/example/">Example</sergey-link>`,
			path:  "/example/foo/index.html",
			want:  `<a href="/example/" class="active">Example</a>`,
		},
		{
			name: "one current among many",
			input: `<sergey-link to="/example-1/">1</sergey-link>
<sergey-link to="/example-2/">2</sergey-link>`,
			path: "/example-1/",
			want: `<a href="/example-1/" class="active" aria-current="page">1</a>
<a href="/example-2/">2</a>`,
		},
		{
			name:  "home link current",
			input: `<sergey-link to="/">Home</sergey-link>`,
			path:  "/index.html",
			want:  `<a href="/" class="active" aria-current="page">Home</a>`,
		},
		{
			name:  "home link is ancestor of every page",
			input: `<sergey-link to="/">Home</sergey-link>`,
			path:  "/about/index.html",
			want:  `<a href="/" class="active">Home</a>`,
		},
		{
			name:  "fragment link",
			input: `<sergey-link to="/#subscribe">Subscribe</sergey-link>`,
			path:  "/about/index.html",
			want:  `<a href="/#subscribe" class="active">Subscribe</a>`,
		},
		{
			name:  "front-loaded classes",
			input: `<sergey-link class="my-class" to="/">Home</sergey-link>`,
			path:  "/index.html",
			want:  `<a href="/" class="active my-class" aria-current="page">Home</a>`,
		},
		{
			name:  "back-loaded classes",
			input: `<sergey-link to="/" class="my-class">Home</sergey-link>`,
			path:  "/index.html",
			want:  `<a href="/" class="active my-class" aria-current="page">Home</a>`,
		},
		{
			name:  "other attributes",
			input: `<sergey-link to="/" id="an-id">Home</sergey-link>`,
			path:  "/index.html",
			want:  `<a href="/" id="an-id" class="active" aria-current="page">Home</a>`,
		},
		{
			name:  "ids and classes",
			input: `<sergey-link to="/" class="my-class" id="an-id">Home</sergey-link>`,
			path:  "/index.html",
			want:  `<a href="/" class="active my-class" id="an-id" aria-current="page">Home</a>`,
		},
		{
			name:  "href instead of to",
			input: `<sergey-link href="/example-1/">Example Link 1</sergey-link>`,
			want:  `<a href="/example-1/">Example Link 1</a>`,
		},
		{
			name:  "to wins over href",
			input: `<sergey-link href="/old/" to="/new/">New</sergey-link>`,
			want:  `<a href="/new/">New</a>`,
		},
		{
			name:  "empty current path never activates",
			input: `<sergey-link to="/">Home</sergey-link>`,
			path:  "",
			want:  `<a href="/">Home</a>`,
		},
		{
			name:  "in-page anchor is never active",
			input: `<sergey-link to="#top">Top</sergey-link>`,
			path:  "/about/index.html",
			want:  `<a href="#top">Top</a>`,
		},
		{
			name:  "unrelated page",
			input: `<sergey-link to="/blog/">Blog</sergey-link>`,
			path:  "/about/index.html",
			want:  `<a href="/blog/">Blog</a>`,
		},
		{
			name:  "inner markup kept",
			input: `<sergey-link to="/x/" data-x='a"b'><span>X</span></sergey-link>`,
			want:  `<a href="/x/" data-x="a&quot;b"><span>X</span></a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CompileLinks(tt.input, tt.path, "")
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestCompiler_CompileLinksUsesActiveClass(t *testing.T) {
	c := New(nil, Options{ActiveClass: "is-current"})
	out, err := c.CompileLinks(`<sergey-link to="/">Home</sergey-link>`, "/index.html")
	require.NoError(t, err)
	require.Equal(t, `<a href="/" class="is-current" aria-current="page">Home</a>`, out)
}

func TestCompileLinks_NoLinksUnchanged(t *testing.T) {
	src := "<p  class=x>untouched</p>"
	out, err := CompileLinks(src, "/index.html", "active")
	require.NoError(t, err)
	require.Equal(t, src, out)
}
