// Package partials holds the reusable markup fragments a build imports.
//
// A Cache has two namespaces: Imports for HTML partials referenced by
// <sergey-import src="..."> and Content for markdown referenced with
// as="markdown". Both are filled through a Builder and frozen by Build; a
// built Cache is read-only and safe for concurrent use.
package partials

import (
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sergey/internal/markup"
)

// Namespace selects one of the cache's key spaces.
type Namespace string

const (
	Imports Namespace = "imports"
	Content Namespace = "content"
)

// Extensions used when resolving references.
const (
	HTMLExt     = ".html"
	MarkdownExt = ".md"
)

// Key turns an import reference into a cache key: slash separated, relative to
// the namespace directory, with ext appended unless already present.
//
//	Key("header", ".html")        == "header.html"
//	Key("/nav/menu.html", ".html") == "nav/menu.html"
func Key(ref, ext string) string {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, `\`, "/"))
	key := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if key == "" || strings.HasSuffix(key, ext) {
		return key
	}
	return key + ext
}

// Cache is a frozen set of partials.
type Cache struct {
	imports map[string]string
	content map[string]string
	shared  bool
}

// Get returns the partial stored under key in ns.
func (c *Cache) Get(ns Namespace, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	body, ok := c.space(ns)[key]
	return body, ok
}

// Len is the number of partials in ns.
func (c *Cache) Len(ns Namespace) int {
	if c == nil {
		return 0
	}
	return len(c.space(ns))
}

// Keys lists the keys of ns in sorted order.
func (c *Cache) Keys(ns Namespace) []string {
	if c == nil {
		return nil
	}
	m := c.space(ns)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Shared reports whether both namespaces are backed by the same directory.
func (c *Cache) Shared() bool {
	return c != nil && c.shared
}

func (c *Cache) space(ns Namespace) map[string]string {
	if ns == Content {
		return c.content
	}
	return c.imports
}

// Builder collects partials before a build.
type Builder struct {
	imports map[string]string
	content map[string]string
	shared  bool
	built   bool
}

// NewBuilder returns an empty builder. With shared set, both namespaces use a
// single key space, which is what a build wants when the imports and content
// directories are the same.
func NewBuilder(shared bool) *Builder {
	b := &Builder{imports: make(map[string]string), shared: shared}
	if shared {
		b.content = b.imports
	} else {
		b.content = make(map[string]string)
	}
	return b
}

// Prime stores body under key in ns. HTML partials are normalized once here
// so every import of them reuses the normalized form.
func (b *Builder) Prime(ns Namespace, key, body string) {
	if b.built {
		panic("partials: Prime called after Build")
	}
	if strings.HasSuffix(key, HTMLExt) {
		body = markup.Normalize(body)
	}
	if ns == Content {
		b.content[key] = body
		return
	}
	b.imports[key] = body
}

// Build freezes the builder into a Cache. The builder must not be used afterwards.
func (b *Builder) Build() *Cache {
	b.built = true
	return &Cache{imports: b.imports, content: b.content, shared: b.shared}
}
