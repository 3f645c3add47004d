package vault

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/names"
)

// ItemError is a failed item of a bulk operation.
type ItemError struct {
	Item string
	Err  error
}

func (e ItemError) Error() string { return e.Item + ": " + e.Err.Error() }

// BulkResult reports a best-effort batch. Items applied before a failure
// stay applied.
type BulkResult struct {
	Affected int
	Failures []ItemError
}

// CreateItem is one note of BulkCreate.
type CreateItem struct {
	Path    string
	Content string
	Folder  string
}

// UpdateItem is one note of BulkUpdate.
type UpdateItem struct {
	Path                string
	Content             string
	PreserveFrontmatter bool
}

// AppendItem is one note of BulkAppend.
type AppendItem struct {
	Path    string
	Content string
}

// MoveItem is one note of BulkMove.
type MoveItem struct {
	Source      string
	Destination string
}

// TaskItem is one task of BulkCompleteTasks.
type TaskItem struct {
	Path string
	Task string
}

// runBulk applies fn to each item in order, recording failures and
// continuing. Once ctx is done the remaining items fail with its error.
func runBulk[T any](ctx context.Context, logger *slog.Logger, op string, items []T, key func(T) string, fn func(T) error) BulkResult {
	res := BulkResult{Failures: []ItemError{}}
	for _, it := range items {
		err := ctx.Err()
		if err == nil {
			err = fn(it)
		}
		if err != nil {
			res.Failures = append(res.Failures, ItemError{Item: key(it), Err: err})
			continue
		}
		res.Affected++
	}
	logger.Info("bulk operation finished",
		slog.String("operation", op),
		slog.Int("affected", res.Affected),
		slog.Int("failed", len(res.Failures)))
	return res
}

func itself(s string) string { return s }

// noteKey names a note item the way its note path is reported. Blank
// paths stay blank.
func noteKey(p string) string {
	if strings.TrimSpace(p) == "" {
		return p
	}
	return names.EnsureExt(p)
}

// BulkCreate creates each note.
func (e *Engine) BulkCreate(ctx context.Context, items []CreateItem) BulkResult {
	return runBulk(ctx, e.logger, "bulk_create", items,
		func(it CreateItem) string {
			if strings.TrimSpace(it.Path) == "" {
				return it.Path
			}
			return noteKey(path.Join(it.Folder, it.Path))
		},
		func(it CreateItem) error {
			_, err := e.CreateNote(ctx, it.Path, it.Content, it.Folder)
			return err
		})
}

// BulkUpdate updates each note.
func (e *Engine) BulkUpdate(ctx context.Context, items []UpdateItem) BulkResult {
	return runBulk(ctx, e.logger, "bulk_update", items,
		func(it UpdateItem) string { return noteKey(it.Path) },
		func(it UpdateItem) error {
			_, err := e.UpdateNote(ctx, it.Path, it.Content, it.PreserveFrontmatter)
			return err
		})
}

// BulkAppend appends to each note.
func (e *Engine) BulkAppend(ctx context.Context, items []AppendItem) BulkResult {
	return runBulk(ctx, e.logger, "bulk_append", items,
		func(it AppendItem) string { return noteKey(it.Path) },
		func(it AppendItem) error {
			_, err := e.AppendNote(ctx, it.Path, it.Content)
			return err
		})
}

// BulkDelete deletes each note.
func (e *Engine) BulkDelete(ctx context.Context, paths []string) BulkResult {
	return runBulk(ctx, e.logger, "bulk_delete", paths, noteKey,
		func(p string) error { return e.DeleteNote(ctx, p) })
}

// BulkMove moves each note.
func (e *Engine) BulkMove(ctx context.Context, items []MoveItem) BulkResult {
	return runBulk(ctx, e.logger, "bulk_move", items,
		func(it MoveItem) string { return noteKey(it.Source) },
		func(it MoveItem) error {
			_, err := e.MoveNote(ctx, it.Source, it.Destination)
			return err
		})
}

// BulkCompleteTasks completes each task.
func (e *Engine) BulkCompleteTasks(ctx context.Context, items []TaskItem) BulkResult {
	return runBulk(ctx, e.logger, "bulk_complete_tasks", items,
		func(it TaskItem) string { return noteKey(it.Path) + "#" + it.Task },
		func(it TaskItem) error {
			_, err := e.CompleteTask(ctx, it.Path, it.Task)
			return err
		})
}

// BulkCreateFolders creates each folder.
func (e *Engine) BulkCreateFolders(ctx context.Context, paths []string) BulkResult {
	return runBulk(ctx, e.logger, "bulk_create_folders", paths, itself,
		func(p string) error {
			_, err := e.CreateFolder(ctx, p)
			return err
		})
}

// BulkDeleteFolders deletes each folder.
func (e *Engine) BulkDeleteFolders(ctx context.Context, paths []string, force bool) BulkResult {
	return runBulk(ctx, e.logger, "bulk_delete_folders", paths, itself,
		func(p string) error { return e.DeleteFolder(ctx, p, force) })
}
