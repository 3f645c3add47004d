// Package exclude decides which top-level vault folders a traversal hides.
package exclude

import "strings"

// DefaultSystemFolder holds engine-internal files such as preferences.
const DefaultSystemFolder = "_system"

// Set is a set of top-level folder names.
type Set map[string]struct{}

// NewSet builds a Set, ignoring blank names and surrounding slashes.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		n = strings.Trim(strings.TrimSpace(n), "/")
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Policy holds the always-hidden system folder and the user's configured
// exclusions.
type Policy struct {
	SystemFolder string
	Configured   Set
}

// New returns a Policy. An empty systemFolder selects DefaultSystemFolder.
func New(systemFolder string, configured ...string) Policy {
	if systemFolder == "" {
		systemFolder = DefaultSystemFolder
	}
	return Policy{SystemFolder: systemFolder, Configured: NewSet(configured...)}
}

// TopSegment returns the first segment of a slash-separated vault path.
func TopSegment(rel string) string {
	rel = strings.TrimPrefix(strings.TrimPrefix(rel, "./"), "/")
	seg, _, _ := strings.Cut(rel, "/")
	return seg
}

// IsExcluded reports whether rel is hidden. The system folder is always
// hidden, then the operation's own exclusions. An explicit scope lifts the
// configured exclusions only.
func (p Policy) IsExcluded(rel string, explicitScope bool, opExclusions Set) bool {
	seg := TopSegment(rel)
	if seg == "" {
		return false
	}
	if seg == p.SystemFolder {
		return true
	}
	if opExclusions.Has(seg) {
		return true
	}
	if explicitScope {
		return false
	}
	return p.Configured.Has(seg)
}
