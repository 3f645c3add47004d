package vault

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/btree"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/names"
	"github.com/starford/ansuz/internal/parser"
)

// snippetWidth is the display width at which search snippets are cut.
const snippetWidth = 200

func snippet(line string) string {
	return runewidth.Truncate(strings.TrimSpace(line), snippetWidth, "…")
}

// SearchText returns one result per body line containing query, compared
// case-insensitively, in traversal order.
func (e *Engine) SearchText(ctx context.Context, query, folder string, limit int) (models.Page[models.SearchResult], error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.Page[models.SearchResult]{}, fmt.Errorf("%w: search query is empty", apperr.ErrInvalidArgument)
	}
	dir, sc, err := e.resolveScope(folder, nil)
	if err != nil {
		return models.Page[models.SearchResult]{}, err
	}

	c := newCollector[models.SearchResult](e.limit(limit))
	err = e.walkNotes(ctx, dir, sc, func(n *note) error {
		t := title(n.rel, n.res)
		var stop error
		parser.BodyLines(n.data, func(line int, text string) {
			if stop != nil || !strings.Contains(strings.ToLower(text), q) {
				return
			}
			stop = c.add(models.SearchResult{Path: n.rel, Title: t, Snippet: snippet(text), Line: line})
		})
		return stop
	})
	if err != nil {
		return models.Page[models.SearchResult]{}, fmt.Errorf("vault: search text: %w", err)
	}
	return c.page, nil
}

func tagKey(tag string) string {
	return strings.ToLower(parser.NormalizeTag(tag))
}

// FindByTag returns notes carrying at least one of tags, from front matter
// or inline. Tags are compared case-insensitively without the leading '#'.
func (e *Engine) FindByTag(ctx context.Context, tags []string, folder string, limit int) (models.Page[models.NoteInfo], error) {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if k := tagKey(t); k != "" {
			want[k] = struct{}{}
		}
	}
	if len(want) == 0 {
		return models.Page[models.NoteInfo]{}, fmt.Errorf("%w: no tags given", apperr.ErrInvalidArgument)
	}
	dir, sc, err := e.resolveScope(folder, nil)
	if err != nil {
		return models.Page[models.NoteInfo]{}, err
	}

	c := newCollector[models.NoteInfo](e.limit(limit))
	err = e.walkNotes(ctx, dir, sc, func(n *note) error {
		for _, t := range n.res.Tags {
			if _, ok := want[tagKey(t)]; ok {
				return c.add(n.noteInfo())
			}
		}
		return nil
	})
	if err != nil {
		return models.Page[models.NoteInfo]{}, fmt.Errorf("vault: find by tag: %w", err)
	}
	return c.page, nil
}

// Name match buckets in priority order.
const (
	matchExactName = iota
	matchName
	matchTitle
)

// FindByName resolves a note reference by file name or title. Exact
// normalized file name matches come first, then file names containing the
// query, then titles containing it. Within a bucket shorter paths win.
// The system folder and the name-search exclusions always apply.
func (e *Engine) FindByName(ctx context.Context, query, folder string, limit int) (models.Page[models.NoteInfo], error) {
	q := names.Normalize(query)
	if q == "" {
		return models.Page[models.NoteInfo]{}, fmt.Errorf("%w: name query is empty", apperr.ErrInvalidArgument)
	}
	dir, sc, err := e.resolveScope(folder, e.nameExclusions)
	if err != nil {
		return models.Page[models.NoteInfo]{}, err
	}

	type match struct {
		bucket int
		info   models.NoteInfo
	}
	var matches []match
	err = e.walkNotes(ctx, dir, sc, func(n *note) error {
		stem := names.Normalize(names.Stem(n.rel))
		bucket := -1
		switch {
		case stem == q:
			bucket = matchExactName
		case strings.Contains(stem, q):
			bucket = matchName
		case n.res.Title != "" && strings.Contains(names.Normalize(n.res.Title), q):
			bucket = matchTitle
		}
		if bucket >= 0 {
			matches = append(matches, match{bucket: bucket, info: n.noteInfo()})
		}
		return nil
	})
	if err != nil {
		return models.Page[models.NoteInfo]{}, fmt.Errorf("vault: find by name: %w", err)
	}

	slices.SortStableFunc(matches, func(a, b match) int {
		return cmp.Or(
			cmp.Compare(a.bucket, b.bucket),
			cmp.Compare(len(a.info.Path), len(b.info.Path)),
			strings.Compare(a.info.Path, b.info.Path),
		)
	})
	c := newCollector[models.NoteInfo](e.limit(limit))
	for _, m := range matches {
		if c.add(m.info) != nil {
			break
		}
	}
	return c.page, nil
}

// normPath normalizes each segment of a slash path.
func normPath(p string) string {
	segs := strings.Split(names.TrimExt(p), "/")
	for i, s := range segs {
		segs[i] = names.Normalize(s)
	}
	return strings.Join(segs, "/")
}

// linksTo reports whether a wikilink target refers to the note at rel.
// Targets containing '/' are matched against the full path, others
// against the file name.
func linksTo(target, rel string) bool {
	if strings.Contains(target, "/") {
		return normPath(strings.TrimPrefix(target, "/")) == normPath(rel)
	}
	return names.Normalize(names.TrimExt(target)) == names.Normalize(names.Stem(rel))
}

// Backlinks returns every wikilink occurrence in other notes that points at
// target.
func (e *Engine) Backlinks(ctx context.Context, target string, limit int) (models.Page[models.BacklinkResult], error) {
	rel, err := e.notePath(target)
	if err != nil {
		return models.Page[models.BacklinkResult]{}, err
	}
	if _, err := e.readNote(rel); err != nil {
		return models.Page[models.BacklinkResult]{}, err
	}

	c := newCollector[models.BacklinkResult](e.limit(limit))
	err = e.walkNotes(ctx, "", scope{}, func(n *note) error {
		if n.rel == rel {
			return nil
		}
		t := title(n.rel, n.res)
		for _, l := range parser.LinkOccurrences(n.data) {
			if !linksTo(l.Target, rel) {
				continue
			}
			if err := c.add(models.BacklinkResult{Path: n.rel, Title: t, Context: snippet(l.Context), Line: l.Line}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Page[models.BacklinkResult]{}, fmt.Errorf("vault: backlinks: %w", err)
	}
	return c.page, nil
}

// Tags returns every tag in the vault with the number of notes carrying it,
// sorted by tag. Tags differing only in case are counted together under the
// first spelling seen.
func (e *Engine) Tags(ctx context.Context, limit int) (models.Page[models.TagInfo], error) {
	counts := btree.NewMap[string, models.TagInfo](0)
	err := e.walkNotes(ctx, "", scope{}, func(n *note) error {
		seen := make(map[string]struct{}, len(n.res.Tags))
		for _, t := range n.res.Tags {
			k := tagKey(t)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			ti, ok := counts.Get(k)
			if !ok {
				ti = models.TagInfo{Tag: parser.NormalizeTag(t)}
			}
			ti.Count++
			counts.Set(k, ti)
		}
		return nil
	})
	if err != nil {
		return models.Page[models.TagInfo]{}, fmt.Errorf("vault: tags: %w", err)
	}

	c := newCollector[models.TagInfo](e.limit(limit))
	counts.Scan(func(_ string, ti models.TagInfo) bool {
		return c.add(ti) == nil
	})
	return c.page, nil
}

// ListNotes lists the notes in folder, descending into subfolders when
// recursive is set.
func (e *Engine) ListNotes(ctx context.Context, folder string, recursive bool, limit int) (models.Page[models.NoteInfo], error) {
	dir, sc, err := e.resolveScope(folder, nil)
	if err != nil {
		return models.Page[models.NoteInfo]{}, err
	}
	c := newCollector[models.NoteInfo](e.limit(limit))
	err = e.walk(ctx, dir, recursive, sc, func(en entry) error {
		if en.dir {
			return nil
		}
		data, err := e.store.Read(en.rel)
		if err != nil {
			return nil
		}
		n := note{entry: en, data: data, res: parser.Parse(data)}
		return c.add(n.noteInfo())
	})
	if err != nil {
		return models.Page[models.NoteInfo]{}, fmt.Errorf("vault: list notes: %w", err)
	}
	return c.page, nil
}

// ListFolders lists the folders in folder, descending when recursive is set.
func (e *Engine) ListFolders(ctx context.Context, folder string, recursive bool, limit int) (models.Page[models.FolderInfo], error) {
	dir, sc, err := e.resolveScope(folder, nil)
	if err != nil {
		return models.Page[models.FolderInfo]{}, err
	}
	c := newCollector[models.FolderInfo](e.limit(limit))
	err = e.walk(ctx, dir, recursive, sc, func(en entry) error {
		if !en.dir {
			return nil
		}
		return c.add(models.FolderInfo{Path: en.rel, Name: en.name})
	})
	if err != nil {
		return models.Page[models.FolderInfo]{}, fmt.Errorf("vault: list folders: %w", err)
	}
	return c.page, nil
}

// ListStructure returns the folder/note tree under folder. Folders are
// listed before notes at every level. depth <= 0 means unlimited; limit
// caps the total number of nodes.
func (e *Engine) ListStructure(ctx context.Context, folder string, depth, limit int) (models.Page[models.FolderNode], error) {
	dir, sc, err := e.resolveScope(folder, nil)
	if err != nil {
		return models.Page[models.FolderNode]{}, err
	}
	b := &treeBuilder{e: e, sc: sc, maxDepth: depth, left: e.limit(limit)}
	nodes, err := b.build(ctx, dir, 1)
	if err != nil && !errors.Is(err, errStop) {
		return models.Page[models.FolderNode]{}, fmt.Errorf("vault: list structure: %w", err)
	}
	if nodes == nil {
		nodes = []models.FolderNode{}
	}
	return models.Page[models.FolderNode]{Items: nodes, Truncated: b.truncated}, nil
}

type treeBuilder struct {
	e         *Engine
	sc        scope
	maxDepth  int
	left      int
	truncated bool
}

func (b *treeBuilder) take() error {
	if b.left == 0 {
		b.truncated = true
		return errStop
	}
	b.left--
	return nil
}

func (b *treeBuilder) build(ctx context.Context, dir string, depth int) ([]models.FolderNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	notes, folders, err := b.e.children(dir, b.sc)
	if err != nil {
		return nil, err
	}
	var out []models.FolderNode
	for _, f := range folders {
		if err := b.take(); err != nil {
			return out, err
		}
		node := models.FolderNode{Name: f.name, Path: f.rel, Kind: models.KindFolder}
		if b.maxDepth <= 0 || depth < b.maxDepth {
			node.Children, err = b.build(ctx, f.rel, depth+1)
			if err != nil {
				out = append(out, node)
				return out, err
			}
		}
		out = append(out, node)
	}
	for _, n := range notes {
		if err := b.take(); err != nil {
			return out, err
		}
		out = append(out, models.FolderNode{Name: n.name, Path: n.rel, Kind: models.KindNote})
	}
	return out, nil
}

// parentOf returns the parent folder of a vault path, "" for top-level.
func parentOf(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}
