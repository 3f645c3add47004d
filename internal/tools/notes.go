package tools

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/vault"
)

// NotesOp is an operation of the notes group.
//
//sumtype:decl
type NotesOp interface {
	Op
	notesOp()
}

// ReadNote returns a note with its front matter, tags and links.
type ReadNote struct {
	Path string `json:"path"`
}

// CreateNote writes a new note. Path is relative to Folder when set.
type CreateNote struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Folder  string `json:"folder,omitempty"`
}

// UpdateNote replaces a note's content. PreserveFrontmatter defaults to
// true when omitted.
type UpdateNote struct {
	Path                string `json:"path"`
	Content             string `json:"content"`
	PreserveFrontmatter *bool  `json:"preserve_frontmatter,omitempty"`
}

// AppendNote adds Content to the end of a note.
type AppendNote struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DeleteNote removes a note.
type DeleteNote struct {
	Path string `json:"path"`
}

// CompleteTask marks a task done. Task is a 1-based line number or text.
type CompleteTask struct {
	Path string `json:"path"`
	Task string `json:"task"`
}

// MoveNote moves a note to another path.
type MoveNote struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// RenameNote renames a note within its folder.
type RenameNote struct {
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

// NoteItem is one entry of the bulk note operations.
type NoteItem struct {
	Path                string `json:"path"`
	Content             string `json:"content,omitempty"`
	Folder              string `json:"folder,omitempty"`
	PreserveFrontmatter *bool  `json:"preserve_frontmatter,omitempty"`
}

// MoveItem is one entry of BulkMove.
type MoveItem struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// TaskItem is one entry of BulkCompleteTasks.
type TaskItem struct {
	Path string `json:"path"`
	Task string `json:"task"`
}

// BulkCreate creates each note. Items are not validated up front: a bad
// item fails on its own and the rest still run.
type BulkCreate struct {
	Items []NoteItem `json:"items"`
}

type BulkUpdate struct {
	Items []NoteItem `json:"items"`
}

type BulkAppend struct {
	Items []NoteItem `json:"items"`
}

// BulkDelete removes each note in Paths.
type BulkDelete struct {
	Paths []string `json:"paths"`
}

type BulkMove struct {
	Items []MoveItem `json:"items"`
}

type BulkCompleteTasks struct {
	Items []TaskItem `json:"items"`
}

func (o *ReadNote) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Path, validation.Required))
}

func (o *CreateNote) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Path, validation.Required))
}

func (o *UpdateNote) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Path, validation.Required))
}

func (o *AppendNote) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Path, validation.Required),
		validation.Field(&o.Content, validation.Required))
}

func (o *DeleteNote) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Path, validation.Required))
}

func (o *CompleteTask) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Path, validation.Required),
		validation.Field(&o.Task, validation.Required))
}

func (o *MoveNote) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Source, validation.Required),
		validation.Field(&o.Destination, validation.Required))
}

func (o *RenameNote) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Path, validation.Required),
		validation.Field(&o.NewName, validation.Required))
}

func (o *BulkCreate) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Items, validation.Required))
}

func (o *BulkUpdate) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Items, validation.Required))
}

func (o *BulkAppend) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Items, validation.Required))
}

func (o *BulkDelete) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Paths, validation.Required))
}

func (o *BulkMove) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Items, validation.Required))
}

func (o *BulkCompleteTasks) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Items, validation.Required))
}

func (*ReadNote) Name() string          { return "read" }
func (*CreateNote) Name() string        { return "create" }
func (*UpdateNote) Name() string        { return "update" }
func (*AppendNote) Name() string        { return "append" }
func (*DeleteNote) Name() string        { return "delete" }
func (*CompleteTask) Name() string      { return "complete_task" }
func (*MoveNote) Name() string          { return "move" }
func (*RenameNote) Name() string        { return "rename" }
func (*BulkCreate) Name() string        { return "bulk_create" }
func (*BulkUpdate) Name() string        { return "bulk_update" }
func (*BulkAppend) Name() string        { return "bulk_append" }
func (*BulkDelete) Name() string        { return "bulk_delete" }
func (*BulkMove) Name() string          { return "bulk_move" }
func (*BulkCompleteTasks) Name() string { return "bulk_complete_tasks" }

func (*ReadNote) notesOp()          {}
func (*CreateNote) notesOp()        {}
func (*UpdateNote) notesOp()        {}
func (*AppendNote) notesOp()        {}
func (*DeleteNote) notesOp()        {}
func (*CompleteTask) notesOp()      {}
func (*MoveNote) notesOp()          {}
func (*RenameNote) notesOp()        {}
func (*BulkCreate) notesOp()        {}
func (*BulkUpdate) notesOp()        {}
func (*BulkAppend) notesOp()        {}
func (*BulkDelete) notesOp()        {}
func (*BulkMove) notesOp()          {}
func (*BulkCompleteTasks) notesOp() {}

func preserve(p *bool) bool { return p == nil || *p }

// Notes runs a notes operation.
func (s *Session) Notes(ctx context.Context, op NotesOp) Result {
	e := s.Engine
	switch o := op.(type) {
	case *ReadNote:
		n, err := e.ReadNote(ctx, o.Path)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Read %s", n.Path)
		r.Content = n
		return r
	case *CreateNote:
		n, err := e.CreateNote(ctx, o.Path, o.Content, o.Folder)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Created %s", n.Path)
		r.Content = n
		return r
	case *UpdateNote:
		n, err := e.UpdateNote(ctx, o.Path, o.Content, preserve(o.PreserveFrontmatter))
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Updated %s", n.Path)
		r.Content = n
		return r
	case *AppendNote:
		n, err := e.AppendNote(ctx, o.Path, o.Content)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Appended to %s", n.Path)
		r.Content = n
		return r
	case *DeleteNote:
		if err := e.DeleteNote(ctx, o.Path); err != nil {
			return s.fail(op, err)
		}
		return success("Deleted %s", o.Path)
	case *CompleteTask:
		t, err := e.CompleteTask(ctx, o.Path, o.Task)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Completed task at line %d in %s: %s", t.Line, t.Path, t.Text)
		r.Results = t
		return r
	case *MoveNote:
		info, err := e.MoveNote(ctx, o.Source, o.Destination)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Moved %s to %s", o.Source, info.Path)
		r.Results = info
		return r
	case *RenameNote:
		info, err := e.RenameNote(ctx, o.Path, o.NewName)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Renamed %s to %s", o.Path, info.Path)
		r.Results = info
		return r
	case *BulkCreate:
		items := make([]vault.CreateItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = vault.CreateItem{Path: it.Path, Content: it.Content, Folder: it.Folder}
		}
		return bulkResult(op.Name(), e.BulkCreate(ctx, items))
	case *BulkUpdate:
		items := make([]vault.UpdateItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = vault.UpdateItem{Path: it.Path, Content: it.Content, PreserveFrontmatter: preserve(it.PreserveFrontmatter)}
		}
		return bulkResult(op.Name(), e.BulkUpdate(ctx, items))
	case *BulkAppend:
		items := make([]vault.AppendItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = vault.AppendItem{Path: it.Path, Content: it.Content}
		}
		return bulkResult(op.Name(), e.BulkAppend(ctx, items))
	case *BulkDelete:
		return bulkResult(op.Name(), e.BulkDelete(ctx, o.Paths))
	case *BulkMove:
		items := make([]vault.MoveItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = vault.MoveItem{Source: it.Source, Destination: it.Destination}
		}
		return bulkResult(op.Name(), e.BulkMove(ctx, items))
	case *BulkCompleteTasks:
		items := make([]vault.TaskItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = vault.TaskItem{Path: it.Path, Task: it.Task}
		}
		return bulkResult(op.Name(), e.BulkCompleteTasks(ctx, items))
	default:
		return s.fail(op, unsupported(op))
	}
}
