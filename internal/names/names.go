// Package names normalizes note names and queries for fuzzy matching.
package names

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
)

// Ext is the note file extension.
const Ext = ".md"

const punctuation = ".,;:!?'\"`()[]{}<>*&@#$%^=+~|\\/"

// Normalize reduces a note name or query to its comparable form: leading
// underscores and punctuation are dropped, case is folded, hyphens and
// underscores become spaces, and whitespace runs collapse to one space.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.TrimLeft(s, "_")
	s = strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(punctuation, r):
			return -1
		case r == '-' || r == '_':
			return ' '
		}
		return r
	}, s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Stem returns the base name of a note path without the note extension.
func Stem(p string) string {
	return strings.TrimSuffix(path.Base(p), Ext)
}

// EnsureExt appends the note extension when p does not already end in it.
func EnsureExt(p string) string {
	if strings.HasSuffix(p, Ext) {
		return p
	}
	return p + Ext
}

// TrimExt removes a trailing note extension.
func TrimExt(p string) string {
	return strings.TrimSuffix(p, Ext)
}
