// Package apperr defines the error kinds surfaced by the vault engine.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathTraversal       = errors.New("path escapes vault root")
	ErrNoteNotFound        = errors.New("note not found")
	ErrNoteAlreadyExists   = errors.New("note already exists")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrFolderAlreadyExists = errors.New("folder already exists")
	ErrFolderNotEmpty      = errors.New("folder not empty")
	ErrTaskNotFound        = errors.New("task not found")
	ErrPreferencesParse    = errors.New("preferences parse error")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// TaskReason distinguishes the sub-cases of ErrTaskNotFound.
type TaskReason int

const (
	TaskNoTasks TaskReason = iota
	TaskNoTaskAtLine
	TaskAlreadyCompleted
	TaskAmbiguous
	TaskNoMatch
)

// TaskCandidate is a task line listed in a TaskError message.
type TaskCandidate struct {
	Line int
	Text string
}

// TaskError reports why complete_task could not pick exactly one task.
type TaskError struct {
	Path       string
	Identifier string
	Reason     TaskReason
	Line       int
	Candidates []TaskCandidate
}

func (e *TaskError) Error() string {
	switch e.Reason {
	case TaskNoTasks:
		return fmt.Sprintf("no tasks found in %s", e.Path)
	case TaskNoTaskAtLine:
		return fmt.Sprintf("no task at line %d in %s%s", e.Line, e.Path, candidateSuffix("tasks", e.Candidates))
	case TaskAlreadyCompleted:
		return fmt.Sprintf("task at line %d in %s is already completed", e.Line, e.Path)
	case TaskAmbiguous:
		return fmt.Sprintf("%q matches %d tasks in %s%s", e.Identifier, len(e.Candidates), e.Path,
			candidateSuffix("candidates", e.Candidates))
	case TaskNoMatch:
		if len(e.Candidates) == 0 {
			return fmt.Sprintf("no incomplete task matches %q in %s (all tasks are completed)", e.Identifier, e.Path)
		}
		return fmt.Sprintf("no incomplete task matches %q in %s%s", e.Identifier, e.Path,
			candidateSuffix("available", e.Candidates))
	default:
		return fmt.Sprintf("task %q not found in %s", e.Identifier, e.Path)
	}
}

// Is makes errors.Is(err, ErrTaskNotFound) hold for every TaskError.
func (e *TaskError) Is(target error) bool {
	return target == ErrTaskNotFound
}

func candidateSuffix(label string, cs []TaskCandidate) string {
	if len(cs) == 0 {
		return ""
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("line %d: %s", c.Line, c.Text)
	}
	return "; " + label + ": " + strings.Join(parts, "; ")
}

// PreferencesParseError is returned when the preferences front matter
// exists but cannot be parsed. It is never degraded into a soft failure.
type PreferencesParseError struct {
	File string
	Err  error
}

func (e *PreferencesParseError) Error() string {
	return fmt.Sprintf("preferences file %s: invalid front matter: %v", e.File, e.Err)
}

func (e *PreferencesParseError) Unwrap() error { return e.Err }

func (e *PreferencesParseError) Is(target error) bool {
	return target == ErrPreferencesParse
}
