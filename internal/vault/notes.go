package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/names"
	"github.com/starford/ansuz/internal/parser"
)

// ReadNote returns the parsed note at p.
func (e *Engine) ReadNote(ctx context.Context, p string) (*models.NoteContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := e.notePath(p)
	if err != nil {
		return nil, err
	}
	data, err := e.readNote(rel)
	if err != nil {
		return nil, err
	}
	return noteContent(rel, data), nil
}

// CreateNote writes a new note. When folder is set, p is taken relative to
// it. Missing parent folders are created.
func (e *Engine) CreateNote(ctx context.Context, p, content, folder string) (*models.NoteContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if folder != "" {
		dir, err := e.clean(folder)
		if err != nil {
			return nil, err
		}
		name, err := e.clean(p)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, fmt.Errorf("%w: note path is empty", apperr.ErrInvalidArgument)
		}
		p = path.Join(dir, name)
	}
	rel, err := e.notePath(p)
	if err != nil {
		return nil, err
	}
	found, _, err := e.exists(rel)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNoteAlreadyExists, rel)
	}
	data := []byte(content)
	if err := e.store.Write(rel, data); err != nil {
		return nil, fmt.Errorf("vault: create %s: %w", rel, err)
	}
	e.logger.Info("note created", slog.String("path", rel))
	return noteContent(rel, data), nil
}

// UpdateNote replaces the content of an existing note. With
// preserveFrontmatter set and a parseable block in the existing file, the
// block is kept: reused verbatim when content carries no block of its own,
// merged key by key when it does. A malformed block in content is rejected
// with ErrInvalidArgument. Otherwise the file is overwritten.
func (e *Engine) UpdateNote(ctx context.Context, p, content string, preserveFrontmatter bool) (*models.NoteContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := e.notePath(p)
	if err != nil {
		return nil, err
	}
	existing, err := e.readNote(rel)
	if err != nil {
		return nil, err
	}

	data := []byte(content)
	if preserveFrontmatter {
		data, err = mergeContent(existing, content)
		if err != nil {
			return nil, fmt.Errorf("vault: update %s: %w", rel, err)
		}
	}
	if err := e.store.Write(rel, data); err != nil {
		return nil, fmt.Errorf("vault: update %s: %w", rel, err)
	}
	e.logger.Info("note updated", slog.String("path", rel), slog.Bool("preserve_frontmatter", preserveFrontmatter))
	return noteContent(rel, data), nil
}

func mergeContent(existing []byte, content string) ([]byte, error) {
	old, err := parser.ParseDocument(existing)
	if err != nil || !old.HasFrontmatter {
		return []byte(content), nil
	}
	incoming, err := parser.ParseDocument([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("%w: content front matter is not valid YAML: %w", apperr.ErrInvalidArgument, err)
	}
	if !incoming.HasFrontmatter {
		header := old.Header()
		if !strings.HasSuffix(header, "\n") {
			header += "\n"
		}
		return []byte(header + content), nil
	}
	old.Frontmatter.Merge(incoming.Frontmatter)
	return parser.Serialize(old.Frontmatter, incoming.Body, true)
}

// AppendNote adds content to the end of an existing note, inserting a line
// break first when the note does not already end with one.
func (e *Engine) AppendNote(ctx context.Context, p, content string) (*models.NoteContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := e.notePath(p)
	if err != nil {
		return nil, err
	}
	existing, err := e.readNote(rel)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(existing)+len(content)+1)
	data = append(data, existing...)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		data = append(data, '\n')
	}
	data = append(data, content...)
	if err := e.store.Write(rel, data); err != nil {
		return nil, fmt.Errorf("vault: append %s: %w", rel, err)
	}
	e.logger.Info("note appended", slog.String("path", rel), slog.Int("bytes", len(content)))
	return noteContent(rel, data), nil
}

// DeleteNote removes an existing note.
func (e *Engine) DeleteNote(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := e.notePath(p)
	if err != nil {
		return err
	}
	if _, err := e.readNote(rel); err != nil {
		return err
	}
	if err := e.store.Delete(rel); err != nil {
		return fmt.Errorf("vault: delete %s: %w", rel, err)
	}
	e.logger.Info("note deleted", slog.String("path", rel))
	return nil
}

// MoveNote moves a note to a new path, creating missing parent folders.
// Links to the note elsewhere in the vault are not rewritten.
func (e *Engine) MoveNote(ctx context.Context, src, dst string) (models.NoteInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.NoteInfo{}, err
	}
	from, err := e.notePath(src)
	if err != nil {
		return models.NoteInfo{}, err
	}
	to, err := e.notePath(dst)
	if err != nil {
		return models.NoteInfo{}, err
	}
	return e.moveNote(from, to)
}

// RenameNote gives a note a new file name in the same folder.
func (e *Engine) RenameNote(ctx context.Context, src, newName string) (models.NoteInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.NoteInfo{}, err
	}
	from, err := e.notePath(src)
	if err != nil {
		return models.NoteInfo{}, err
	}
	name, err := baseName(newName)
	if err != nil {
		return models.NoteInfo{}, err
	}
	return e.moveNote(from, path.Join(parentOf(from), names.EnsureExt(name)))
}

func (e *Engine) moveNote(from, to string) (models.NoteInfo, error) {
	if _, err := e.readNote(from); err != nil {
		return models.NoteInfo{}, err
	}
	found, _, err := e.exists(to)
	if err != nil {
		return models.NoteInfo{}, err
	}
	if found {
		return models.NoteInfo{}, fmt.Errorf("%w: %s", apperr.ErrNoteAlreadyExists, to)
	}
	if err := e.store.Move(from, to); err != nil {
		return models.NoteInfo{}, fmt.Errorf("vault: move %s: %w", from, err)
	}
	e.logger.Info("note moved", slog.String("from", from), slog.String("to", to))
	return e.noteInfo(to)
}

func (e *Engine) noteInfo(rel string) (models.NoteInfo, error) {
	info, err := e.store.Stat(rel)
	if err != nil {
		return models.NoteInfo{}, err
	}
	data, err := e.store.Read(rel)
	if err != nil {
		return models.NoteInfo{}, err
	}
	n := note{entry: entry{rel: rel, name: path.Base(rel), info: info}, data: data, res: parser.Parse(data)}
	return n.noteInfo(), nil
}

// baseName validates a bare file or folder name.
func baseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q is not a valid name", apperr.ErrInvalidArgument, name)
	}
	return name, nil
}
