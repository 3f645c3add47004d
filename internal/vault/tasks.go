package vault

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

// ListTasks returns checkbox lines across folder. Completed tasks are
// included only when includeCompleted is set.
func (e *Engine) ListTasks(ctx context.Context, folder string, includeCompleted bool, limit int) (models.Page[models.TaskInfo], error) {
	dir, sc, err := e.resolveScope(folder, nil)
	if err != nil {
		return models.Page[models.TaskInfo]{}, err
	}
	c := newCollector[models.TaskInfo](e.limit(limit))
	err = e.walkNotes(ctx, dir, sc, func(n *note) error {
		for _, t := range parser.Tasks(n.data) {
			if t.Done && !includeCompleted {
				continue
			}
			if err := c.add(taskInfo(n.rel, t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Page[models.TaskInfo]{}, fmt.Errorf("vault: list tasks: %w", err)
	}
	return c.page, nil
}

func taskInfo(rel string, t parser.Task) models.TaskInfo {
	return models.TaskInfo{Path: rel, Text: t.Text, Completed: t.Done, Line: t.Line, Indent: t.Indent}
}

func candidates(ts []parser.Task) []apperr.TaskCandidate {
	out := make([]apperr.TaskCandidate, len(ts))
	for i, t := range ts {
		out[i] = apperr.TaskCandidate{Line: t.Line, Text: t.Text}
	}
	return out
}

// CompleteTask marks one open task in the note at p as done. identifier is
// resolved in order: a line number, then an exact case-insensitive text
// match among open tasks, then a substring match among open tasks. Only the
// checkbox marker is rewritten.
func (e *Engine) CompleteTask(ctx context.Context, p, identifier string) (models.TaskInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.TaskInfo{}, err
	}
	rel, err := e.notePath(p)
	if err != nil {
		return models.TaskInfo{}, err
	}
	id := strings.TrimSpace(identifier)
	if id == "" {
		return models.TaskInfo{}, fmt.Errorf("%w: task identifier is empty", apperr.ErrInvalidArgument)
	}
	data, err := e.readNote(rel)
	if err != nil {
		return models.TaskInfo{}, err
	}

	task, err := resolveTask(rel, id, parser.Tasks(data))
	if err != nil {
		return models.TaskInfo{}, err
	}
	out, err := parser.CompleteTask(data, task.Line)
	if err != nil {
		return models.TaskInfo{}, fmt.Errorf("vault: complete task %s: %w", rel, err)
	}
	if err := e.store.Write(rel, out); err != nil {
		return models.TaskInfo{}, fmt.Errorf("vault: complete task %s: %w", rel, err)
	}
	e.logger.Info("task completed", slog.String("path", rel), slog.Int("line", task.Line))

	task.Done = true
	return taskInfo(rel, task), nil
}

func resolveTask(rel, id string, tasks []parser.Task) (parser.Task, error) {
	if len(tasks) == 0 {
		return parser.Task{}, &apperr.TaskError{Path: rel, Identifier: id, Reason: apperr.TaskNoTasks}
	}

	var open []parser.Task
	for _, t := range tasks {
		if !t.Done {
			open = append(open, t)
		}
	}

	if line, err := strconv.Atoi(id); err == nil {
		for _, t := range tasks {
			if t.Line != line {
				continue
			}
			if t.Done {
				return parser.Task{}, &apperr.TaskError{Path: rel, Identifier: id, Reason: apperr.TaskAlreadyCompleted, Line: line}
			}
			return t, nil
		}
		return parser.Task{}, &apperr.TaskError{
			Path: rel, Identifier: id, Reason: apperr.TaskNoTaskAtLine, Line: line, Candidates: candidates(open),
		}
	}

	var exact, partial []parser.Task
	lower := strings.ToLower(id)
	for _, t := range open {
		switch {
		case strings.EqualFold(t.Text, id):
			exact = append(exact, t)
		case strings.Contains(strings.ToLower(t.Text), lower):
			partial = append(partial, t)
		}
	}

	switch len(exact) {
	case 1:
		return exact[0], nil
	case 0:
	default:
		return parser.Task{}, &apperr.TaskError{Path: rel, Identifier: id, Reason: apperr.TaskAmbiguous, Candidates: candidates(exact)}
	}
	// Exact matches also contain the identifier, so the substring stage
	// only runs when there were none.
	switch len(partial) {
	case 1:
		return partial[0], nil
	case 0:
		return parser.Task{}, &apperr.TaskError{Path: rel, Identifier: id, Reason: apperr.TaskNoMatch, Candidates: candidates(open)}
	default:
		return parser.Task{}, &apperr.TaskError{Path: rel, Identifier: id, Reason: apperr.TaskAmbiguous, Candidates: candidates(partial)}
	}
}
