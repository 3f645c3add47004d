// Package tools exposes the vault engine as three operation groups
// (notes, search, organize) with a uniform result envelope.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/vault"
)

// ItemError is a failed bulk item in a Result.
type ItemError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// Result is the envelope returned for every operation.
type Result struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	Content       *models.NoteContent `json:"content,omitempty"`
	Results       any                 `json:"results,omitempty"`
	Structure     []models.FolderNode `json:"structure,omitempty"`
	Truncated     bool                `json:"truncated,omitempty"`
	AffectedCount *int                `json:"affected_count,omitempty"`
	Errors        []ItemError         `json:"errors,omitempty"`
}

func success(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func fail(err error) Result {
	return Result{Success: false, Message: Describe(err)}
}

func bulkResult(op string, res vault.BulkResult) Result {
	n := res.Affected
	r := Result{
		Success:       len(res.Failures) == 0,
		Message:       fmt.Sprintf("%s: %d succeeded, %d failed", op, res.Affected, len(res.Failures)),
		AffectedCount: &n,
	}
	for _, f := range res.Failures {
		r.Errors = append(r.Errors, ItemError{Item: f.Item, Error: Describe(f.Err)})
	}
	return r
}

// Describe turns an engine error into a message that tells the caller what
// went wrong and which operation helps next.
func Describe(err error) string {
	var te *apperr.TaskError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		if te.Reason == apperr.TaskNoTasks {
			return te.Error() + ". Check the path, or use search_vault list_tasks to find notes with tasks."
		}
		return te.Error() + ". Pass a line number or a more specific task text."
	case errors.Is(err, apperr.ErrPathTraversal):
		return fmt.Sprintf("%v. Use a path relative to the vault root without '..'.", err)
	case errors.Is(err, apperr.ErrNoteNotFound):
		return fmt.Sprintf("%v. Use search_vault find_by_name or list_notes to locate the note.", err)
	case errors.Is(err, apperr.ErrNoteAlreadyExists):
		return fmt.Sprintf("%v. Use update or append to change it, or choose another path.", err)
	case errors.Is(err, apperr.ErrFolderNotFound):
		return fmt.Sprintf("%v. Use search_vault list_folders or list_structure to see existing folders.", err)
	case errors.Is(err, apperr.ErrFolderAlreadyExists):
		return fmt.Sprintf("%v. Choose another name or move notes into the existing folder.", err)
	case errors.Is(err, apperr.ErrFolderNotEmpty):
		return fmt.Sprintf("%v. Set force to delete the folder with its contents.", err)
	case errors.Is(err, apperr.ErrPreferencesParse):
		return fmt.Sprintf("%v. Fix the YAML front matter of the preferences note.", err)
	case errors.Is(err, apperr.ErrInvalidArgument):
		return err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("request stopped before completion: %v", err)
	default:
		return fmt.Sprintf("unexpected error: %v", err)
	}
}
