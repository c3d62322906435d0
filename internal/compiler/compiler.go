// Package compiler expands sergey markup into plain HTML.
//
// Compile resolves slot tags against a set of bindings and replaces every
// import tag with the referenced partial, compiled recursively with the slot
// bindings taken from the import tag's content. CompileLinks turns link tags
// into anchors and marks the ones pointing at the current page or one of its
// ancestors.
package compiler

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/logfields"
	"git.home.luguber.info/inful/sergey/internal/markup"
	"git.home.luguber.info/inful/sergey/internal/partials"
	"git.home.luguber.info/inful/sergey/internal/rewrite"
)

// Tag names of the markup vocabulary.
const (
	TagSlot     = "sergey-slot"
	TagTemplate = "sergey-template"
	TagImport   = "sergey-import"
	TagLink     = "sergey-link"
)

const (
	DefaultActiveClass = "active"
	DefaultMaxDepth    = 64
)

var (
	selSlot     = markup.MustCompileSelector(TagSlot)
	selTemplate = markup.MustCompileSelector(TagTemplate)
	selImport   = markup.MustCompileSelector(TagImport)
	selLink     = markup.MustCompileSelector(TagLink)
)

// Sentinel errors, matched with errors.Is.
var (
	ErrImportCycle = errors.CompileError("import cycle").Build()
	ErrImportDepth = errors.CompileError("import depth exceeded").Build()
)

// MarkdownRenderer converts markdown partials to HTML.
type MarkdownRenderer interface {
	ToHTML(src string) (string, error)
}

// Options configures a Compiler.
type Options struct {
	ActiveClass string
	// MaxDepth bounds the import nesting of a single file.
	MaxDepth int
	Markdown MarkdownRenderer
	Logger   *slog.Logger
}

// Compiler compiles documents against a frozen partial cache. It holds no
// per-document state and may be shared by concurrent builds of different files.
type Compiler struct {
	cache   *partials.Cache
	opts    Options
	logger  *slog.Logger
	missing atomic.Int64
}

// New returns a Compiler reading partials from cache.
func New(cache *partials.Cache, opts Options) *Compiler {
	if opts.ActiveClass == "" {
		opts.ActiveClass = DefaultActiveClass
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{cache: cache, opts: opts, logger: logger}
}

// MissingPartials counts the import references that resolved to nothing.
func (c *Compiler) MissingPartials() int64 { return c.missing.Load() }

// CompileTemplate compiles body with an empty default binding.
func (c *Compiler) CompileTemplate(body string) (string, error) {
	return c.Compile(body, NewBindings(""))
}

// Compile normalizes body, fills its slots from bindings and expands its
// imports recursively.
func (c *Compiler) Compile(body string, bindings Bindings) (string, error) {
	return c.compile(body, bindings, nil)
}

func (c *Compiler) compile(body string, bindings Bindings, chain []string) (string, error) {
	body, err := resolveSlots(markup.Normalize(body), bindings)
	if err != nil {
		return "", err
	}
	return c.expandImports(body, chain)
}

// expandImports replaces the import tags of body. chain lists the partials
// whose own text body belongs to.
func (c *Compiler) expandImports(body string, chain []string) (string, error) {
	if !strings.Contains(body, "<"+TagImport) {
		return body, nil
	}
	return rewrite.TagSelector(body, selImport, func(el *markup.Element) (string, error) {
		return c.expandImport(el, chain)
	})
}

func (c *Compiler) expandImport(el *markup.Element, chain []string) (string, error) {
	ns, ext := partials.Imports, partials.HTMLExt
	isMarkdown := el.AttrOr("as", "") == "markdown"
	if isMarkdown {
		ns, ext = partials.Content, partials.MarkdownExt
	}
	key := partials.Key(el.AttrOr("src", ""), ext)
	link := string(ns) + ":" + key

	for _, k := range chain {
		if k == link {
			return "", ErrImportCycle.
				WithContext(logfields.KeyKey, key).
				WithContext(logfields.KeyChain, strings.Join(append(chain[:len(chain):len(chain)], link), " -> "))
		}
	}
	if len(chain) >= c.opts.MaxDepth {
		return "", ErrImportDepth.
			WithContext(logfields.KeyKey, key).
			WithContext("max_depth", c.opts.MaxDepth)
	}

	body, ok := c.cache.Get(ns, key)
	if !ok {
		c.missing.Add(1)
		c.logger.Debug("Partial not found", logfields.Namespace(string(ns)), logfields.Key(key))
		return "", nil
	}

	if isMarkdown {
		if c.opts.Markdown == nil {
			return "", errors.NewError(errors.CategoryMarkdown, "no markdown renderer configured").
				WithContext(logfields.KeyKey, key).
				Build()
		}
		html, err := c.opts.Markdown.ToHTML(body)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryMarkdown, "failed to render markdown partial").
				WithContext(logfields.KeyKey, key).
				Build()
		}
		body = markup.Trim(html)
	}

	// Imports in slot content belong to the caller's chain.
	slots := ExtractSlots(el.InnerHTML())
	for name, value := range slots {
		expanded, err := c.expandImports(value, chain)
		if err != nil {
			return "", err
		}
		slots[name] = expanded
	}

	out, err := c.compile(body, slots, append(chain[:len(chain):len(chain)], link))
	if err != nil {
		if errors.IsClassified(err) {
			return "", err
		}
		return "", fmt.Errorf("import %s: %w", key, err)
	}
	return out, nil
}
