package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func folderInfo(rel string) models.FolderInfo {
	return models.FolderInfo{Path: rel, Name: path.Base(rel)}
}

// CreateFolder creates p and any missing intermediate folders.
func (e *Engine) CreateFolder(ctx context.Context, p string) (models.FolderInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.FolderInfo{}, err
	}
	rel, err := e.folderPath(p)
	if err != nil {
		return models.FolderInfo{}, err
	}
	found, _, err := e.exists(rel)
	if err != nil {
		return models.FolderInfo{}, err
	}
	if found {
		return models.FolderInfo{}, fmt.Errorf("%w: %s", apperr.ErrFolderAlreadyExists, rel)
	}
	if err := e.store.Mkdir(rel); err != nil {
		return models.FolderInfo{}, fmt.Errorf("vault: create folder %s: %w", rel, err)
	}
	e.logger.Info("folder created", slog.String("path", rel))
	return folderInfo(rel), nil
}

// RenameFolder gives a folder a new name under the same parent.
func (e *Engine) RenameFolder(ctx context.Context, p, newName string) (models.FolderInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.FolderInfo{}, err
	}
	from, err := e.folderPath(p)
	if err != nil {
		return models.FolderInfo{}, err
	}
	name, err := baseName(newName)
	if err != nil {
		return models.FolderInfo{}, err
	}
	return e.moveFolder(from, path.Join(parentOf(from), name))
}

// MoveFolder moves a folder to dst, creating dst's missing parents. A
// folder cannot be moved into itself.
func (e *Engine) MoveFolder(ctx context.Context, src, dst string) (models.FolderInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.FolderInfo{}, err
	}
	from, err := e.folderPath(src)
	if err != nil {
		return models.FolderInfo{}, err
	}
	to, err := e.folderPath(dst)
	if err != nil {
		return models.FolderInfo{}, err
	}
	if to == from || strings.HasPrefix(to, from+"/") {
		return models.FolderInfo{}, fmt.Errorf("%w: cannot move %s into itself", apperr.ErrInvalidArgument, from)
	}
	return e.moveFolder(from, to)
}

func (e *Engine) moveFolder(from, to string) (models.FolderInfo, error) {
	if err := e.requireFolder(from); err != nil {
		return models.FolderInfo{}, err
	}
	found, _, err := e.exists(to)
	if err != nil {
		return models.FolderInfo{}, err
	}
	if found {
		return models.FolderInfo{}, fmt.Errorf("%w: %s", apperr.ErrFolderAlreadyExists, to)
	}
	if err := e.store.Move(from, to); err != nil {
		return models.FolderInfo{}, fmt.Errorf("vault: move folder %s: %w", from, err)
	}
	e.logger.Info("folder moved", slog.String("from", from), slog.String("to", to))
	return folderInfo(to), nil
}

// DeleteFolder removes an empty folder, or a folder and everything in it
// when force is set.
func (e *Engine) DeleteFolder(ctx context.Context, p string, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := e.folderPath(p)
	if err != nil {
		return err
	}
	if err := e.requireFolder(rel); err != nil {
		return err
	}
	entries, err := e.store.ReadDir(rel)
	if err != nil {
		return fmt.Errorf("vault: delete folder %s: %w", rel, err)
	}
	switch {
	case len(entries) == 0:
		err = e.store.Delete(rel)
	case force:
		err = e.store.RemoveAll(rel)
	default:
		return fmt.Errorf("%w: %s contains %d entries", apperr.ErrFolderNotEmpty, rel, len(entries))
	}
	if err != nil {
		return fmt.Errorf("vault: delete folder %s: %w", rel, err)
	}
	e.logger.Info("folder deleted", slog.String("path", rel), slog.Bool("force", force))
	return nil
}
