// Package storage defines the sandboxed vault file-system abstraction.
package storage

import (
	"io"
	"io/fs"
)

// Provider is the interface for vault file operations. Every path is
// relative to the vault root and passes through Resolve before touching disk.
type Provider interface {
	// Root returns the canonical absolute vault root.
	Root() string
	// Resolve maps a relative path to an absolute path inside the root.
	Resolve(rel string) (string, error)
	// Rel maps an absolute path inside the root back to a slash-separated relative path.
	Rel(abs string) (string, error)
	// Read returns the raw bytes of the file at rel.
	Read(rel string) ([]byte, error)
	// Write atomically replaces the file at rel, creating parent directories.
	Write(rel string, content []byte) error
	// WriteFrom atomically replaces the file at rel with the contents of r.
	WriteFrom(rel string, r io.Reader) error
	// Stat returns file info for rel.
	Stat(rel string) (fs.FileInfo, error)
	// ReadDir lists the directory at rel sorted by name.
	ReadDir(rel string) ([]fs.DirEntry, error)
	// Delete removes a file or empty directory.
	Delete(rel string) error
	// RemoveAll removes rel and everything below it.
	RemoveAll(rel string) error
	// Mkdir creates rel and any missing parents.
	Mkdir(rel string) error
	// Move renames oldPath to newPath, creating newPath's parents.
	Move(oldPath, newPath string) error
}
