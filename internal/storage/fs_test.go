package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := s.Read("del.md")
	if !IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestMove(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "sub/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestRootIsProtected(t *testing.T) {
	s := tempVault(t)
	for name, err := range map[string]error{
		"delete":    s.Delete(""),
		"removeall": s.RemoveAll("."),
		"write":     s.Write("", []byte("x")),
		"move":      s.Move("", "elsewhere"),
	} {
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("%s on root: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"notes/../../x.md",
		"notes/../inside.md",
		"..",
	}
	for _, p := range cases {
		if _, err := s.Resolve(p); !errors.Is(err, apperr.ErrPathTraversal) {
			t.Errorf("Resolve(%q): err = %v, want ErrPathTraversal", p, err)
		}
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestResolveStaysInside(t *testing.T) {
	s := tempVault(t)
	cases := []string{"", ".", "a.md", "a/b/c.md", "./a/b", "with space/n.md", "a//b.md"}
	for _, p := range cases {
		abs, err := s.Resolve(p)
		if err != nil {
			t.Errorf("Resolve(%q): %v", p, err)
			continue
		}
		if abs != s.Root() && !strings.HasPrefix(abs, s.Root()+string(os.PathSeparator)) {
			t.Errorf("Resolve(%q) = %q, not under %q", p, abs, s.Root())
		}
	}
}

func TestSymlinkEscapeBlocked(t *testing.T) {
	s := tempVault(t)
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.md"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(s.Root(), "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := s.Read("escape/secret.md"); !errors.Is(err, apperr.ErrPathTraversal) {
		t.Errorf("read through symlink: err = %v, want ErrPathTraversal", err)
	}
	if err := s.Write("escape/new.md", []byte("x")); !errors.Is(err, apperr.ErrPathTraversal) {
		t.Errorf("write through symlink: err = %v, want ErrPathTraversal", err)
	}
}

func TestRel(t *testing.T) {
	s := tempVault(t)
	abs, err := s.Resolve("a/b.md")
	if err != nil {
		t.Fatal(err)
	}
	rel, err := s.Rel(abs)
	if err != nil {
		t.Fatal(err)
	}
	if rel != "a/b.md" {
		t.Errorf("Rel = %q", rel)
	}
	if _, err := s.Rel("/definitely/elsewhere"); !errors.Is(err, apperr.ErrPathTraversal) {
		t.Errorf("Rel outside root: err = %v", err)
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempVault(t)
	original := []byte("original content")
	_ = s.Write("atomic.md", original)

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}
	assertNoTempFiles(t, s.Root(), "atomic.md")
}

// failingReader yields part of the payload and then fails, simulating a
// crash in the middle of a write.
type failingReader struct {
	data []byte
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.sent {
		return 0, errors.New("disk on fire")
	}
	r.sent = true
	return copy(p, r.data), nil
}

func TestAtomicWriteFailureKeepsOldContent(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("atomic.md", []byte("old")); err != nil {
		t.Fatal(err)
	}

	err := s.WriteFrom("atomic.md", &failingReader{data: []byte("partial new")})
	if err == nil {
		t.Fatal("expected write error")
	}
	got, err := s.Read("atomic.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "old" {
		t.Errorf("destination = %q, want old content", got)
	}
	assertNoTempFiles(t, s.Root(), "atomic.md")
}

func TestAtomicWriteFailureLeavesNoFile(t *testing.T) {
	s := tempVault(t)
	err := s.WriteFrom("fresh.md", &failingReader{data: []byte("half")})
	if err == nil {
		t.Fatal("expected write error")
	}
	if _, err := s.Stat("fresh.md"); !IsNotExist(err) {
		t.Errorf("destination should be absent, stat err = %v", err)
	}
	assertNoTempFiles(t, s.Root(), "")
}

func assertNoTempFiles(t *testing.T, dir, keep string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != keep {
			t.Errorf("leftover file: %s", e.Name())
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "ansuz-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func FuzzResolve(f *testing.F) {
	for _, seed := range []string{"a.md", "../x", "a/../../b", "/abs", "a/./b", "", "..."} {
		f.Add(seed)
	}
	root := f.TempDir()
	s, err := NewFS(root)
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, rel string) {
		abs, err := s.Resolve(rel)
		if err != nil {
			return
		}
		if abs != s.Root() && !strings.HasPrefix(abs, s.Root()+string(os.PathSeparator)) {
			t.Fatalf("Resolve(%q) = %q escapes %q", rel, abs, s.Root())
		}
	})
}
