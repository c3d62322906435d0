// Package markdown renders markdown partials to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Options tunes the renderer.
type Options struct {
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// XHTML renders void elements in XHTML form (<br />).
	XHTML bool
}

// Renderer converts markdown to HTML. Headings get generated ids and raw HTML
// in the source is passed through, so partials may mix both.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer with GitHub Flavored Markdown enabled.
func New(opts Options) *Renderer {
	htmlOpts := []renderer.Option{goldmarkhtml.WithUnsafe()}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, goldmarkhtml.WithHardWraps())
	}
	if opts.XHTML {
		htmlOpts = append(htmlOpts, goldmarkhtml.WithXHTML())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Renderer{md: md}
}

// ToHTML renders src.
func (r *Renderer) ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
