package markup

import (
	"regexp"
	"strings"
)

var (
	selfClosingPattern = regexp.MustCompile(`<[^</>]+/>`)
	tagNamePattern     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9:._-]*$`)
	lineBreaks         = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
)

// Normalize expands non-void self-closing tags and re-serializes the result.
// Empty or whitespace-only input is returned unchanged.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	expanded := selfClosingPattern.ReplaceAllStringFunc(raw, expandSelfClosing)
	return Parse(expanded).Render()
}

func expandSelfClosing(tag string) string {
	decl := strings.TrimRight(tag[1:len(tag)-2], " \t\r\n\f")
	fields := strings.Fields(decl)
	if len(fields) == 0 || !strings.HasPrefix(decl, fields[0]) || !tagNamePattern.MatchString(fields[0]) {
		return tag
	}
	name := strings.ToLower(fields[0])
	if isVoid(name) {
		return "<" + lineBreaks.Replace(decl) + ">"
	}
	return "<" + decl + "></" + name + ">"
}

// Trim removes leading and trailing whitespace. Slot bindings, fallbacks and
// rendered markdown all go through it.
func Trim(s string) string { return strings.TrimSpace(s) }
