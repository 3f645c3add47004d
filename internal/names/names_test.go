package names

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Idea", "idea"},
		{"_index", "index"},
		{"__Project-Plan_v2", "project plan v2"},
		{"  Meeting   Notes!! ", "meeting notes"},
		{"What's (new)?", "whats new"},
		{"Straße", "strasse"},
		{"a.b/c", "abc"},
		{"", ""},
		{"___", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStemAndExt(t *testing.T) {
	if got := Stem("Notes/Idea.md"); got != "Idea" {
		t.Errorf("Stem = %q", got)
	}
	if got := Stem("plain"); got != "plain" {
		t.Errorf("Stem = %q", got)
	}
	if got := EnsureExt("a/b"); got != "a/b.md" {
		t.Errorf("EnsureExt = %q", got)
	}
	if got := EnsureExt("a/b.md"); got != "a/b.md" {
		t.Errorf("EnsureExt = %q", got)
	}
	if got := TrimExt("a/b.md"); got != "a/b" {
		t.Errorf("TrimExt = %q", got)
	}
}

func FuzzNormalize(f *testing.F) {
	for _, seed := range []string{"Idea", "_x-y_z", "  A  B ", "ß", "K", "\xff_a", "İstanbul", "__-__"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", s, once, twice)
		}
	})
}
