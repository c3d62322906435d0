package compiler

import (
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sergey/internal/markup"
	"git.home.luguber.info/inful/sergey/internal/rewrite"
)

// CompileLinks turns every <sergey-link> in body into an <a>. currentPath is
// the site path of the page being built ("/about/index.html"); links to it get
// the active class and aria-current="page", links to one of its ancestors get
// the active class only. An empty currentPath marks nothing.
func (c *Compiler) CompileLinks(body, currentPath string) (string, error) {
	return CompileLinks(body, currentPath, c.opts.ActiveClass)
}

// CompileLinks is the standalone form of Compiler.CompileLinks.
func CompileLinks(body, currentPath, activeClass string) (string, error) {
	if !strings.Contains(body, "<"+TagLink) {
		return body, nil
	}
	if activeClass == "" {
		activeClass = DefaultActiveClass
	}
	return rewrite.TagSelector(body, selLink, func(el *markup.Element) (string, error) {
		return renderLink(el, currentPath, activeClass), nil
	})
}

func renderLink(el *markup.Element, currentPath, activeClass string) string {
	target, ok := el.Attr("to")
	if !ok {
		target, _ = el.Attr("href")
	}

	current := isCurrentPage(target, currentPath)
	active := current || isParentPage(target, currentPath)

	attrs := []html.Attribute{{Key: "href", Val: target}}
	hasClass := false
	for _, a := range el.Attrs() {
		switch a.Key {
		case "to", "href":
			continue
		case "aria-current":
			if current {
				continue
			}
		case "class":
			hasClass = true
			if active {
				a.Val = strings.TrimSpace(activeClass + " " + strings.TrimLeft(a.Val, " \t\r\n\f"))
			}
		}
		attrs = append(attrs, a)
	}
	if active && !hasClass {
		attrs = append(attrs, html.Attribute{Key: "class", Val: activeClass})
	}
	if current {
		attrs = append(attrs, html.Attribute{Key: "aria-current", Val: "page"})
	}

	return markup.RenderStartTag("a", attrs) + el.InnerHTML() + "</a>"
}

// cleanPath drops the fragment and a trailing index.html so "/about/",
// "/about/index.html" and "/about/#team" compare equal.
func cleanPath(p string) string {
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSuffix(p, "index.html")
}

// In-page anchors ("#top") clean to "" and never match.
func isCurrentPage(target, currentPath string) bool {
	t := cleanPath(target)
	return currentPath != "" && t != "" && cleanPath(currentPath) == t
}

func isParentPage(target, currentPath string) bool {
	t := cleanPath(target)
	return currentPath != "" && t != "" && strings.HasPrefix(cleanPath(currentPath), t)
}
