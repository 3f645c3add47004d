// Package vault implements querying and mutation of a Markdown vault.
//
// An Engine holds no state besides its configuration. Every result is
// rebuilt from disk, so an Engine is cheap to construct per request.
package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/exclude"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/names"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Default result limits.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// DefaultNameSearchExclusions are conversation-log folders hidden from name
// resolution.
var DefaultNameSearchExclusions = []string{"Chats", "Conversations"}

// Engine answers queries and applies mutations against one vault.
type Engine struct {
	store          storage.Provider
	policy         exclude.Policy
	nameExclusions exclude.Set
	defaultLimit   int
	maxLimit       int
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithExcludedFolders hides the given top-level folders unless a query is
// explicitly scoped to them.
func WithExcludedFolders(folders ...string) Option {
	return func(e *Engine) {
		e.policy.Configured = exclude.NewSet(folders...)
	}
}

// WithSystemFolder overrides the reserved system folder name.
func WithSystemFolder(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.policy.SystemFolder = name
		}
	}
}

// WithNameSearchExclusions replaces the folders always hidden from FindByName.
func WithNameSearchExclusions(folders ...string) Option {
	return func(e *Engine) {
		e.nameExclusions = exclude.NewSet(folders...)
	}
}

// WithLimits sets the default and maximum result limits.
func WithLimits(def, maxLimit int) Option {
	return func(e *Engine) {
		if def > 0 {
			e.defaultLimit = def
		}
		if maxLimit > 0 {
			e.maxLimit = maxLimit
		}
	}
}

// New returns an Engine over store.
func New(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		policy:         exclude.New(""),
		nameExclusions: exclude.NewSet(DefaultNameSearchExclusions...),
		defaultLimit:   DefaultLimit,
		maxLimit:       MaxLimit,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.defaultLimit > e.maxLimit {
		e.defaultLimit = e.maxLimit
	}
	return e
}

// Open returns an Engine rooted at the vault directory root.
func Open(root string, opts ...Option) (*Engine, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("vault: open: %w", err)
	}
	return New(store, opts...), nil
}

// Store returns the underlying storage provider.
func (e *Engine) Store() storage.Provider { return e.store }

// SystemFolder returns the reserved system folder name.
func (e *Engine) SystemFolder() string { return e.policy.SystemFolder }

func (e *Engine) limit(n int) int {
	if n <= 0 {
		n = e.defaultLimit
	}
	if n > e.maxLimit {
		n = e.maxLimit
	}
	return n
}

// clean validates rel against the sandbox and returns it in canonical
// slash form. The root is "".
func (e *Engine) clean(rel string) (string, error) {
	rel = filepath.ToSlash(strings.TrimSpace(rel))
	if _, err := e.store.Resolve(rel); err != nil {
		return "", err
	}
	rel = path.Clean(rel)
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

// notePath cleans p and ensures the note extension.
func (e *Engine) notePath(p string) (string, error) {
	rel, err := e.clean(p)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return "", fmt.Errorf("%w: note path is empty", apperr.ErrInvalidArgument)
	}
	return names.EnsureExt(rel), nil
}

// folderPath cleans p and rejects the vault root.
func (e *Engine) folderPath(p string) (string, error) {
	rel, err := e.clean(p)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return "", fmt.Errorf("%w: operation not allowed on the vault root", apperr.ErrInvalidArgument)
	}
	return rel, nil
}

// exists reports whether rel exists and whether it is a directory.
func (e *Engine) exists(rel string) (found, dir bool, err error) {
	info, err := e.store.Stat(rel)
	if err != nil {
		if storage.IsNotExist(err) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, info.IsDir(), nil
}

// readNote returns the bytes of an existing note.
func (e *Engine) readNote(rel string) ([]byte, error) {
	found, dir, err := e.exists(rel)
	if err != nil {
		return nil, err
	}
	if !found || dir {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNoteNotFound, rel)
	}
	data, err := e.store.Read(rel)
	if err != nil {
		if storage.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNoteNotFound, rel)
		}
		return nil, err
	}
	return data, nil
}

// requireFolder checks that rel is an existing directory.
func (e *Engine) requireFolder(rel string) error {
	if rel == "" {
		return nil
	}
	found, dir, err := e.exists(rel)
	if err != nil {
		return err
	}
	if !found || !dir {
		return fmt.Errorf("%w: %s", apperr.ErrFolderNotFound, rel)
	}
	return nil
}

func title(rel string, res *parser.Result) string {
	if res.Title != "" {
		return res.Title
	}
	return names.Stem(rel)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// sum is the hex SHA-256 of a note's bytes, exposed so clients can tell
// whether a note changed between reads.
func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func noteContent(rel string, data []byte) *models.NoteContent {
	res := parser.Parse(data)
	return &models.NoteContent{
		Path:        rel,
		Title:       title(rel, res),
		Content:     res.Body,
		Tags:        nonNil(res.Tags),
		Frontmatter: res.Frontmatter,
		Checksum:    sum(data),
	}
}

// entry is a visible directory entry met during traversal.
type entry struct {
	rel  string
	name string
	dir  bool
	info fs.FileInfo
}

// note is a loaded note met during traversal.
type note struct {
	entry
	data []byte
	res  *parser.Result
}

func (n *note) noteInfo() models.NoteInfo {
	return models.NoteInfo{
		Path:     n.rel,
		Title:    title(n.rel, n.res),
		Tags:     nonNil(n.res.Tags),
		Modified: n.info.ModTime(),
	}
}

// scope selects the exclusions applied to a traversal.
type scope struct {
	explicit bool
	op       exclude.Set
}

var errStop = errors.New("stop traversal")

// resolveScope cleans a caller-supplied folder scope and checks it exists.
func (e *Engine) resolveScope(folder string, op exclude.Set) (string, scope, error) {
	rel, err := e.clean(folder)
	if err != nil {
		return "", scope{}, err
	}
	if err := e.requireFolder(rel); err != nil {
		return "", scope{}, err
	}
	return rel, scope{explicit: rel != "", op: op}, nil
}

// children returns the visible notes and folders of dir, each sorted by name.
// Dot entries, non-note files, excluded folders, and symlinks that leave
// the vault or point at directories are skipped.
func (e *Engine) children(dir string, sc scope) (notes, folders []entry, err error) {
	des, err := e.store.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, de := range des {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		rel := path.Join(dir, name)
		if e.policy.IsExcluded(rel, sc.explicit, sc.op) {
			continue
		}
		var info fs.FileInfo
		if de.Type()&fs.ModeSymlink != 0 {
			// Stat goes through the sandbox, so escaping links fail here.
			info, err = e.store.Stat(rel)
			if err != nil || info.IsDir() {
				continue
			}
		} else {
			info, err = de.Info()
			if err != nil {
				continue
			}
		}
		switch {
		case info.IsDir():
			folders = append(folders, entry{rel: rel, name: name, dir: true, info: info})
		case strings.HasSuffix(name, names.Ext) && info.Mode().IsRegular():
			notes = append(notes, entry{rel: rel, name: name, info: info})
		}
	}
	return notes, folders, nil
}

// walk visits dir depth-first: the notes of a directory come before its
// subdirectories, each in lexicographic order. fn sees folders before
// their contents. Returning errStop ends the walk without error.
func (e *Engine) walk(ctx context.Context, dir string, recursive bool, sc scope, fn func(entry) error) error {
	err := e.walkDir(ctx, dir, recursive, sc, fn)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (e *Engine) walkDir(ctx context.Context, dir string, recursive bool, sc scope, fn func(entry) error) error {
	notes, folders, err := e.children(dir, sc)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	for _, f := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
		if recursive {
			if err := e.walkDir(ctx, f.rel, true, sc, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkNotes is walk restricted to notes, each read and parsed. Notes that
// cannot be read are logged and skipped.
func (e *Engine) walkNotes(ctx context.Context, dir string, sc scope, fn func(*note) error) error {
	return e.walk(ctx, dir, true, sc, func(en entry) error {
		if en.dir {
			return nil
		}
		data, err := e.store.Read(en.rel)
		if err != nil {
			e.logger.Warn("skipping unreadable note", slog.String("path", en.rel), slog.String("error", err.Error()))
			return nil
		}
		return fn(&note{entry: en, data: data, res: parser.Parse(data)})
	})
}

// collector accumulates up to limit items and records whether more existed.
type collector[T any] struct {
	limit int
	page  models.Page[T]
}

func newCollector[T any](limit int) *collector[T] {
	return &collector[T]{limit: limit, page: models.Page[T]{Items: []T{}}}
}

// add appends v. Once the page is full it marks truncation and returns errStop.
func (c *collector[T]) add(v T) error {
	if len(c.page.Items) >= c.limit {
		c.page.Truncated = true
		return errStop
	}
	c.page.Items = append(c.page.Items, v)
	return nil
}
