package compiler

import (
	"git.home.luguber.info/inful/sergey/internal/markup"
	"git.home.luguber.info/inful/sergey/internal/rewrite"
)

// DefaultSlot names the unnamed slot.
const DefaultSlot = "default"

// Bindings maps slot names to the content that fills them.
type Bindings map[string]string

// NewBindings returns bindings holding only the default slot.
func NewBindings(def string) Bindings {
	return Bindings{DefaultSlot: def}
}

// ExtractSlots splits the inner content of an import tag into bindings.
//
// Every <sergey-template name="n"> block becomes binding n (trimmed) and is cut
// out of the default content. What remains, trimmed, is the default binding,
// unless a template named "default" (or an unnamed one) overrides it.
func ExtractSlots(inner string) Bindings {
	b := NewBindings("")
	explicitDefault, hasDefault := "", false

	rest, err := rewrite.TagSelector(inner, selTemplate, func(el *markup.Element) (string, error) {
		name := el.AttrOr("name", "")
		value := markup.Trim(el.InnerHTML())
		if name == "" || name == DefaultSlot {
			explicitDefault, hasDefault = value, true
			return "", nil
		}
		b[name] = value
		return "", nil
	})
	if err != nil {
		rest = inner
	}

	if hasDefault {
		b[DefaultSlot] = explicitDefault
	} else {
		b[DefaultSlot] = markup.Trim(rest)
	}
	return b
}

// resolveSlots replaces every slot tag in body. A named slot takes its binding
// when one exists, even an empty one; the default slot only takes a non-empty
// binding. Otherwise the tag's own content is used, itself slot-resolved.
func resolveSlots(body string, b Bindings) (string, error) {
	return rewrite.TagSelector(body, selSlot, func(el *markup.Element) (string, error) {
		name := el.AttrOr("name", "")
		if name == "" {
			name = DefaultSlot
		}

		if name == DefaultSlot {
			if v := b[DefaultSlot]; v != "" {
				return v, nil
			}
		} else if v, ok := b[name]; ok {
			return v, nil
		}

		fallback := el.InnerHTML()
		if fallback == "" {
			return "", nil
		}
		return resolveSlots(fallback, b)
	})
}
