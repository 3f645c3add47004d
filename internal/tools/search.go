package tools

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/models"
)

// SearchOp is an operation of the search group. Limit 0 means the
// configured default.
//
//sumtype:decl
type SearchOp interface {
	Op
	searchOp()
}

// SearchText finds lines containing Query, case-insensitively.
type SearchText struct {
	Query  string `json:"query"`
	Folder string `json:"folder,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// FindByTag matches notes carrying at least one of the tags.
type FindByTag struct {
	Tags   []string `json:"tags"`
	Folder string   `json:"folder,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

// FindByName resolves a note by file name or title.
type FindByName struct {
	Query  string `json:"query"`
	Folder string `json:"folder,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Backlinks lists notes linking to Path.
type Backlinks struct {
	Path  string `json:"path"`
	Limit int    `json:"limit,omitempty"`
}

// Tags counts tag usage across the vault.
type Tags struct {
	Limit int `json:"limit,omitempty"`
}

// ListTasks lists checkbox tasks, open ones only unless IncludeCompleted.
type ListTasks struct {
	Folder           string `json:"folder,omitempty"`
	IncludeCompleted bool   `json:"include_completed,omitempty"`
	Limit            int    `json:"limit,omitempty"`
}

// ListNotes lists notes in Folder.
type ListNotes struct {
	Folder    string `json:"folder,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type ListFolders struct {
	Folder    string `json:"folder,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ListStructure returns a tree. Depth 0 means unlimited.
type ListStructure struct {
	Folder string `json:"folder,omitempty"`
	Depth  int    `json:"depth,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

var nonNegative = validation.Min(0)

func (o *SearchText) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Query, validation.Required),
		validation.Field(&o.Limit, nonNegative))
}

func (o *FindByTag) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Tags, validation.Required, validation.Each(validation.Required)),
		validation.Field(&o.Limit, nonNegative))
}

func (o *FindByName) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Query, validation.Required),
		validation.Field(&o.Limit, nonNegative))
}

func (o *Backlinks) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Path, validation.Required),
		validation.Field(&o.Limit, nonNegative))
}

func (o *Tags) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Limit, nonNegative))
}

func (o *ListTasks) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Limit, nonNegative))
}

func (o *ListNotes) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Limit, nonNegative))
}

func (o *ListFolders) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Limit, nonNegative))
}

func (o *ListStructure) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Depth, nonNegative),
		validation.Field(&o.Limit, nonNegative))
}

func (*SearchText) Name() string    { return "search_text" }
func (*FindByTag) Name() string     { return "find_by_tag" }
func (*FindByName) Name() string    { return "find_by_name" }
func (*Backlinks) Name() string     { return "backlinks" }
func (*Tags) Name() string          { return "tags" }
func (*ListTasks) Name() string     { return "list_tasks" }
func (*ListNotes) Name() string     { return "list_notes" }
func (*ListFolders) Name() string   { return "list_folders" }
func (*ListStructure) Name() string { return "list_structure" }

func (*SearchText) searchOp()    {}
func (*FindByTag) searchOp()     {}
func (*FindByName) searchOp()    {}
func (*Backlinks) searchOp()     {}
func (*Tags) searchOp()          {}
func (*ListTasks) searchOp()     {}
func (*ListNotes) searchOp()     {}
func (*ListFolders) searchOp()   {}
func (*ListStructure) searchOp() {}

func page[T any](p models.Page[T], noun string) Result {
	r := success("Found %d %s", len(p.Items), noun)
	if p.Truncated {
		r.Message += " (more available, narrow the query or raise the limit)"
	}
	r.Results = p.Items
	r.Truncated = p.Truncated
	return r
}

// Search runs a search operation.
func (s *Session) Search(ctx context.Context, op SearchOp) Result {
	e := s.Engine
	switch o := op.(type) {
	case *SearchText:
		p, err := e.SearchText(ctx, o.Query, o.Folder, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "matching lines")
	case *FindByTag:
		p, err := e.FindByTag(ctx, o.Tags, o.Folder, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "notes")
	case *FindByName:
		p, err := e.FindByName(ctx, o.Query, o.Folder, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "notes")
	case *Backlinks:
		p, err := e.Backlinks(ctx, o.Path, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "backlinks")
	case *Tags:
		p, err := e.Tags(ctx, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "tags")
	case *ListTasks:
		p, err := e.ListTasks(ctx, o.Folder, o.IncludeCompleted, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "tasks")
	case *ListNotes:
		p, err := e.ListNotes(ctx, o.Folder, o.Recursive, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "notes")
	case *ListFolders:
		p, err := e.ListFolders(ctx, o.Folder, o.Recursive, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		return page(p, "folders")
	case *ListStructure:
		p, err := e.ListStructure(ctx, o.Folder, o.Depth, o.Limit)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Listed structure of %s", displayFolder(o.Folder))
		if p.Truncated {
			r.Message += " (truncated, raise the limit or lower the depth)"
		}
		r.Structure = p.Items
		r.Truncated = p.Truncated
		return r
	default:
		return s.fail(op, unsupported(op))
	}
}

func displayFolder(f string) string {
	if f == "" || f == "." || f == "/" {
		return "vault root"
	}
	return f
}
