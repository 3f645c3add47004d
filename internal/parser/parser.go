// Package parser extracts front matter, wikilinks, tags, and tasks from Markdown content.
package parser

import (
	"regexp"
	"strings"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	// BodyLine is the 1-based file line on which Body starts.
	BodyLine int
	Links    []string
	Tags     []string
	Title    string
	// FrontmatterErr is set when a block was present but could not be
	// parsed. The whole file is then treated as body.
	FrontmatterErr error
}

// Parse extracts front matter, body, wikilinks, and tags from raw Markdown
// bytes. It never fails: a malformed block degrades to "no block" and is
// reported through FrontmatterErr.
func Parse(data []byte) *Result {
	r := &Result{Body: string(data), BodyLine: 1}
	if block, _, body, bodyLine, ok := split(data); ok {
		fm, err := parseBlock(block)
		if err != nil {
			r.FrontmatterErr = err
		} else {
			r.Frontmatter = fm.Map()
			r.Body = body
			r.BodyLine = bodyLine
		}
	}

	r.Links = extractLinks(r.Body)
	r.Tags = extractTags(r.Body, r.Frontmatter)
	r.Title = deriveTitle(r.Frontmatter, r.Body)
	return r
}

// linkTarget strips the display alias and heading/block reference from the
// inside of a wikilink.
func linkTarget(raw string) string {
	target := raw
	if i := strings.Index(target, "|"); i >= 0 {
		target = target[:i]
	}
	if i := strings.Index(target, "#"); i >= 0 {
		target = target[:i]
	}
	return strings.TrimSpace(target)
}

// extractLinks returns deduplicated wikilink targets, normalising aliases.
func extractLinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := linkTarget(m[1])
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// Link is one wikilink occurrence.
type Link struct {
	Target string
	// Line is the 1-based file line.
	Line int
	// Context is the trimmed line holding the link.
	Context string
}

// LinkOccurrences returns every wikilink in the body of data, in file order.
// Links inside fenced code blocks are ignored.
func LinkOccurrences(data []byte) []Link {
	var out []Link
	scanBody(data, true, func(line int, text string) {
		for _, m := range wikilinkRe.FindAllStringSubmatch(text, -1) {
			target := linkTarget(m[1])
			if target == "" {
				continue
			}
			out = append(out, Link{Target: target, Line: line, Context: strings.TrimSpace(text)})
		}
	})
	return out
}

// NormalizeTag strips a leading '#' and surrounding space.
func NormalizeTag(tag string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// extractTags collects tags from the front matter "tags" field and inline
// #tags in the body. Inline tags inside fenced code are ignored.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = NormalizeTag(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if fm != nil {
		switch v := fm["tags"].(type) {
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		case string:
			for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
				add(s)
			}
		}
	}

	inFence := false
	for _, line := range strings.Split(body, "\n") {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if fm != nil {
		if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

// scanBody calls fn for each body line of data with its 1-based file line
// number. A trailing '\r' is stripped. When skipCode is set, fenced code
// blocks and their fences are skipped.
func scanBody(data []byte, skipCode bool, fn func(line int, text string)) {
	body, start := string(data), 1
	if block, _, b, bodyLine, ok := split(data); ok {
		if _, err := parseBlock(block); err == nil {
			body, start = b, bodyLine
		}
	}
	if body == "" {
		return
	}
	inFence := false
	for i, text := range strings.Split(body, "\n") {
		text = strings.TrimSuffix(text, "\r")
		if skipCode {
			if isFence(text) {
				inFence = !inFence
				continue
			}
			if inFence {
				continue
			}
		}
		fn(start+i, text)
	}
}

// BodyLines calls fn for every body line of data, code included, with its
// 1-based file line number.
func BodyLines(data []byte, fn func(line int, text string)) {
	scanBody(data, false, fn)
}
