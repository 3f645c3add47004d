// Package models defines the values returned by the vault engine.
// None of them are persisted; they are rebuilt from disk on every call.
package models

import "time"

// NoteInfo identifies a note and its lightweight metadata.
type NoteInfo struct {
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Tags     []string  `json:"tags"`
	Modified time.Time `json:"modified"`
}

// NoteContent is the full payload of a note.
type NoteContent struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Checksum    string         `json:"checksum"`
}

// FolderInfo describes a directory in the vault.
type FolderInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Node kinds used by FolderNode.
const (
	KindFolder = "folder"
	KindNote   = "note"
)

// FolderNode is one level of a folder/file tree.
type FolderNode struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Kind     string       `json:"kind"`
	Children []FolderNode `json:"children,omitempty"`
}

// SearchResult is a single matching line.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Line    int    `json:"line"`
}

// BacklinkResult is one wikilink occurrence pointing at a note.
type BacklinkResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Context string `json:"context"`
	Line    int    `json:"line"`
}

// TaskInfo is a checkbox line. Line is 1-based and only valid until the
// file is next written.
type TaskInfo struct {
	Path      string `json:"path"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Line      int    `json:"line"`
	Indent    string `json:"indent,omitempty"`
}

// TagInfo is a tag with the number of notes carrying it.
type TagInfo struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Page is a limited result list.
type Page[T any] struct {
	Items     []T  `json:"items"`
	Truncated bool `json:"truncated"`
}
