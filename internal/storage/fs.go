package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/starford/ansuz/internal/apperr"
)

const dirPerm = 0o755

// FS implements Provider backed by the local file system.
type FS struct {
	root string // canonical absolute path to vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: canonicalize root: %w", err)
	}
	return &FS{root: canon}, nil
}

// Root returns the canonical vault root.
func (f *FS) Root() string { return f.root }

// Resolve joins rel to the vault root and rejects anything that could
// leave it: absolute paths, ".." segments, and symlinks pointing outside.
func (f *FS) Resolve(rel string) (string, error) {
	slashed := filepath.ToSlash(rel)
	if slashed == "" || slashed == "." {
		return f.root, nil
	}
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("%w: absolute path %q", apperr.ErrPathTraversal, rel)
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", apperr.ErrPathTraversal, rel)
		}
	}

	joined := filepath.Join(f.root, filepath.FromSlash(slashed))
	canon, err := canonicalize(joined)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", apperr.ErrPathTraversal, rel, err)
	}
	if !f.contains(canon) {
		return "", fmt.Errorf("%w: %q", apperr.ErrPathTraversal, rel)
	}
	return canon, nil
}

// canonicalize evaluates symlinks on the longest existing prefix of p and
// re-appends the components that do not exist yet.
func canonicalize(p string) (string, error) {
	var tail []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if info, lerr := os.Lstat(cur); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
			return "", fmt.Errorf("unresolvable symlink %s", cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		tail = append([]string{filepath.Base(cur)}, tail...)
		cur = parent
	}
}

func (f *FS) contains(abs string) bool {
	return abs == f.root || strings.HasPrefix(abs, f.root+string(os.PathSeparator))
}

// Rel returns the slash-separated path of abs relative to the root.
func (f *FS) Rel(abs string) (string, error) {
	if !f.contains(abs) {
		return "", fmt.Errorf("%w: %s", apperr.ErrPathTraversal, abs)
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", fmt.Errorf("storage: rel: %w", err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	return f.WriteFrom(path, bytes.NewReader(content))
}

// WriteFrom streams r into a sibling temp file and renames it over path.
// If r fails part way the temp file is removed and path keeps its old content.
func (f *FS) WriteFrom(path string, r io.Reader) error {
	abs, err := f.Resolve(path)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("%w: cannot write to vault root", apperr.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(abs), dirPerm); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := atomic.WriteFile(abs, r); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return nil
}

// Stat returns file info for a vault path.
func (f *FS) Stat(path string) (fs.FileInfo, error) {
	abs, err := f.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return info, nil
}

// ReadDir lists a vault directory sorted by name.
func (f *FS) ReadDir(path string) ([]fs.DirEntry, error) {
	abs, err := f.Resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: readdir %s: %w", path, err)
	}
	return entries, nil
}

// Delete removes a file (or empty directory) from the vault.
func (f *FS) Delete(path string) error {
	abs, err := f.Resolve(path)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("%w: cannot delete vault root", apperr.ErrInvalidArgument)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// RemoveAll removes a directory tree from the vault.
func (f *FS) RemoveAll(path string) error {
	abs, err := f.Resolve(path)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("%w: cannot delete vault root", apperr.ErrInvalidArgument)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

// Mkdir creates a directory and its parents.
func (f *FS) Mkdir(path string) error {
	abs, err := f.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", path, err)
	}
	return nil
}

// Move renames a file or directory within the vault.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.Resolve(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.Resolve(newPath)
	if err != nil {
		return err
	}
	if absOld == f.root || absNew == f.root {
		return fmt.Errorf("%w: cannot move vault root", apperr.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), dirPerm); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// IsNotExist reports whether err means the path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

var _ Provider = (*FS)(nil)
