package parser

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// ErrMalformedFrontmatter is returned when a front matter block is present
// but is not a valid YAML mapping.
var ErrMalformedFrontmatter = errors.New("malformed front matter")

// Document is a note split into its front matter and body.
type Document struct {
	Frontmatter    *Frontmatter
	Body           string
	HasFrontmatter bool
	// BodyLine is the 1-based file line on which Body starts.
	BodyLine int

	header  string
	rawBody string
}

// Header returns the original bytes of the front matter block including
// both fences and the line break after the closing fence.
func (d *Document) Header() string { return d.header }

// RawBody returns everything after the closing fence's line break. Unlike
// Body it keeps the blank lines that separate the block from the text.
func (d *Document) RawBody() string { return d.rawBody }

// fenceEnd is the offset just past the closing fence's line break.
func fenceEnd(header string) int {
	end := len(strings.TrimRight(header, "\r\n"))
	rest := header[end:]
	switch {
	case strings.HasPrefix(rest, "\r\n"):
		end += 2
	case strings.HasPrefix(rest, "\n"):
		end++
	}
	return end
}

// split locates a leading front matter block. The first line must be
// exactly "---"; the block ends at the next "---" line. When no block is
// found the whole input is body.
func split(data []byte) (block []byte, header string, body string, bodyLine int, ok bool) {
	text := string(data)
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, " \t\r") != delim {
		return nil, "", text, 1, false
	}

	offset := len(first) + 1
	line := 2
	for {
		cur, next, more := strings.Cut(rest, "\n")
		if strings.TrimRight(cur, " \t\r") == delim {
			end := offset + len(cur)
			if more {
				end++
			}
			block = data[len(first)+1 : offset]
			header = text[:end]
			body = text[end:]
			bodyLine = line + 1
			// Blank lines between the fence and the body belong to the header.
			for strings.HasPrefix(body, "\n") || strings.HasPrefix(body, "\r\n") {
				n := 1
				if body[0] == '\r' {
					n = 2
				}
				header += body[:n]
				body = body[n:]
				bodyLine++
			}
			return block, header, body, bodyLine, true
		}
		if !more {
			return nil, "", text, 1, false
		}
		offset += len(cur) + 1
		line++
		rest = next
	}
}

// ParseDocument splits data into front matter and body. A block that is
// present but not a YAML mapping yields an error wrapping
// ErrMalformedFrontmatter. Files without a block parse as an empty
// front matter and the full content as body.
func ParseDocument(data []byte) (*Document, error) {
	block, header, body, bodyLine, ok := split(data)
	if !ok {
		return &Document{Frontmatter: NewFrontmatter(), Body: body, BodyLine: 1, rawBody: body}, nil
	}
	fm, err := parseBlock(block)
	if err != nil {
		return nil, err
	}
	return &Document{
		Frontmatter:    fm,
		Body:           body,
		HasFrontmatter: true,
		BodyLine:       bodyLine,
		header:         header,
		rawBody:        string(data[fenceEnd(header):]),
	}, nil
}

func parseBlock(block []byte) (*Frontmatter, error) {
	if len(bytes.TrimSpace(block)) == 0 {
		return NewFrontmatter(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrontmatter, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return NewFrontmatter(), nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping at line %d", ErrMalformedFrontmatter, mapping.Line)
	}
	return &Frontmatter{node: mapping}, nil
}

// Serialize renders front matter and body back into note text. An empty
// front matter renders the body alone. When preserveKeyOrder is false the
// keys are emitted sorted.
func Serialize(fm *Frontmatter, body string, preserveKeyOrder bool) ([]byte, error) {
	if fm == nil || fm.Len() == 0 {
		return []byte(body), nil
	}
	block, err := fm.Marshal(!preserveKeyOrder)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(block)
	buf.WriteString(delim + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// Frontmatter is an ordered YAML mapping. Keys the engine does not know
// about are carried through untouched.
type Frontmatter struct {
	node *yaml.Node
}

// NewFrontmatter returns an empty mapping.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Len returns the number of keys.
func (f *Frontmatter) Len() int {
	if f == nil || f.node == nil {
		return 0
	}
	return len(f.node.Content) / 2
}

// Keys returns the keys in document order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, f.Len())
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		keys = append(keys, f.node.Content[i].Value)
	}
	return keys
}

func (f *Frontmatter) valueNode(key string) *yaml.Node {
	if f.Len() == 0 {
		return nil
	}
	var found *yaml.Node
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			found = f.node.Content[i+1]
		}
	}
	return found
}

// Has reports whether key is present.
func (f *Frontmatter) Has(key string) bool {
	return f.valueNode(key) != nil
}

// Get decodes the value stored under key.
func (f *Frontmatter) Get(key string) (any, bool) {
	n := f.valueNode(key)
	if n == nil {
		return nil, false
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// Decode decodes the value under key into out.
func (f *Frontmatter) Decode(key string, out any) error {
	n := f.valueNode(key)
	if n == nil {
		return fmt.Errorf("front matter: key %q not present", key)
	}
	return n.Decode(out)
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one.
func (f *Frontmatter) Set(key string, value any) error {
	var v yaml.Node
	if err := v.Encode(value); err != nil {
		return fmt.Errorf("front matter: encode %q: %w", key, err)
	}
	f.setNode(key, &v)
	return nil
}

func (f *Frontmatter) setNode(key string, v *yaml.Node) {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			f.node.Content[i+1] = v
			return
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	f.node.Content = append(f.node.Content, k, v)
}

// Merge copies every key of other into f. Existing keys keep their
// position and take other's value; new keys are appended in other's order.
func (f *Frontmatter) Merge(other *Frontmatter) {
	if other.Len() == 0 {
		return
	}
	for i := 0; i+1 < len(other.node.Content); i += 2 {
		f.setNode(other.node.Content[i].Value, other.node.Content[i+1])
	}
}

// Map decodes the whole mapping. Values that fail to decode are skipped.
func (f *Frontmatter) Map() map[string]any {
	out := make(map[string]any, f.Len())
	if f.Len() == 0 {
		return out
	}
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		var v any
		if err := f.node.Content[i+1].Decode(&v); err != nil {
			continue
		}
		out[f.node.Content[i].Value] = v
	}
	return out
}

// Marshal encodes the mapping as YAML, optionally with sorted keys.
func (f *Frontmatter) Marshal(sortKeys bool) ([]byte, error) {
	node := f.node
	if sortKeys {
		node = sortedMapping(f.node)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("front matter: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("front matter: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedMapping(n *yaml.Node) *yaml.Node {
	type pair struct{ k, v *yaml.Node }
	pairs := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		pairs = append(pairs, pair{n.Content[i], n.Content[i+1]})
	}
	slices.SortStableFunc(pairs, func(a, b pair) int { return strings.Compare(a.k.Value, b.k.Value) })
	out := *n
	out.Content = make([]*yaml.Node, 0, len(n.Content))
	for _, p := range pairs {
		out.Content = append(out.Content, p.k, p.v)
	}
	return &out
}
