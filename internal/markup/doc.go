// Package markup is the HTML layer of the compiler.
//
// It parses arbitrary, possibly malformed HTML into a node tree without
// applying the HTML5 tree-construction rules: elements stay where they were
// written, unknown tags are ordinary elements, and every element remembers the
// exact byte range it was parsed from. Selector queries run over that tree and
// the recorded ranges let callers splice replacements into the original text
// while every untouched byte stays as it was.
//
// # Normalization
//
// Normalize rewrites non-void self-closing tags into explicit open/close pairs
// and re-serializes the document once, so later passes see a uniform form:
//
//	<div><sergey-slot /><img></div>  ->  <div><sergey-slot></sergey-slot><img></div>
//
// Text, comments and doctypes are emitted byte for byte. Elements that were
// never closed in the source are re-emitted without a synthetic end tag.
package markup
