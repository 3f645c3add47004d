package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDocument_PreservesKeyOrder(t *testing.T) {
	input := []byte("---\nzeta: 1\nalpha: two\ncustom:\n  nested: true\n---\n\nbody\n")
	doc, err := ParseDocument(input)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if !doc.HasFrontmatter {
		t.Fatal("expected front matter")
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "custom"}, doc.Frontmatter.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if doc.Body != "body\n" {
		t.Errorf("body = %q", doc.Body)
	}
	if doc.Header() != "---\nzeta: 1\nalpha: two\ncustom:\n  nested: true\n---\n\n" {
		t.Errorf("header = %q", doc.Header())
	}

	out, err := Serialize(doc.Frontmatter, doc.Body, true)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(out) != string(input) {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", out, input)
	}
}

func TestParseDocument_RawBodyKeepsBlankLines(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"---\na: 1\n---\n\n\ntext\n", "\n\ntext\n"},
		{"---\r\na: 1\r\n---\r\n\r\ntext", "\r\ntext"},
		{"---\na: 1\n---", ""},
		{"no block\n", "no block\n"},
	} {
		in, want := tc.in, tc.want
		doc, err := ParseDocument([]byte(in))
		if err != nil {
			t.Fatalf("ParseDocument(%q): %v", in, err)
		}
		if got := doc.RawBody(); got != want {
			t.Errorf("ParseDocument(%q).RawBody() = %q, want %q", in, got, want)
		}
	}
}

func TestSerialize_SortedKeys(t *testing.T) {
	doc, err := ParseDocument([]byte("---\nb: 2\na: 1\n---\ntext"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Serialize(doc.Frontmatter, doc.Body, false)
	if err != nil {
		t.Fatal(err)
	}
	want := "---\na: 1\nb: 2\n---\n\ntext"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSerialize_EmptyFrontmatterIsBodyOnly(t *testing.T) {
	out, err := Serialize(NewFrontmatter(), "just body", true)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "just body" {
		t.Errorf("got %q", out)
	}
}

func TestParseDocument_NoBlock(t *testing.T) {
	for _, in := range []string{"plain text\n", "---\nfoo: bar\nnever closed\n", " ---\na: 1\n---\n", ""} {
		doc, err := ParseDocument([]byte(in))
		if err != nil {
			t.Fatalf("ParseDocument(%q): %v", in, err)
		}
		if doc.HasFrontmatter || doc.Frontmatter.Len() != 0 {
			t.Errorf("ParseDocument(%q): unexpected front matter", in)
		}
		if doc.Body != in {
			t.Errorf("ParseDocument(%q): body = %q", in, doc.Body)
		}
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid yaml": "---\n: invalid: yaml: {{{\n---\nBody\n",
		"not a map":    "---\n- a\n- b\n---\nBody\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(in))
			if !errors.Is(err, ErrMalformedFrontmatter) {
				t.Errorf("err = %v, want ErrMalformedFrontmatter", err)
			}
		})
	}
}

func TestParseDocument_EmptyBlock(t *testing.T) {
	doc, err := ParseDocument([]byte("---\n---\nbody"))
	if err != nil {
		t.Fatal(err)
	}
	if !doc.HasFrontmatter || doc.Frontmatter.Len() != 0 {
		t.Errorf("expected empty front matter block")
	}
	if doc.Body != "body" || doc.BodyLine != 3 {
		t.Errorf("body = %q at line %d", doc.Body, doc.BodyLine)
	}
}

func TestFrontmatter_SetAndMerge(t *testing.T) {
	base, err := ParseDocument([]byte("---\ntitle: Old\ncustom: keep\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	update, err := ParseDocument([]byte("---\nstatus: done\ntitle: New\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	fm := base.Frontmatter
	fm.Merge(update.Frontmatter)

	if diff := cmp.Diff([]string{"title", "custom", "status"}, fm.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"title": "New", "custom": "keep", "status": "done"}
	if diff := cmp.Diff(want, fm.Map()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if err := fm.Set("custom", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if fm.Keys()[1] != "custom" {
		t.Errorf("Set moved an existing key: %v", fm.Keys())
	}
	var list []string
	if err := fm.Decode("custom", &list); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, list); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
	if _, ok := fm.Get("missing"); ok {
		t.Error("Get on missing key reported ok")
	}
}
