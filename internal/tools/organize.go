package tools

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// OrganizeOp is an operation of the organize group.
//
//sumtype:decl
type OrganizeOp interface {
	Op
	organizeOp()
}

// CreateFolder creates a folder and any missing parents.
type CreateFolder struct {
	Path string `json:"path"`
}

// RenameFolder renames a folder in place.
type RenameFolder struct {
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

// MoveFolder moves a folder under another parent.
type MoveFolder struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// DeleteFolder removes a folder. Without Force it must be empty.
type DeleteFolder struct {
	Path  string `json:"path"`
	Force bool   `json:"force,omitempty"`
}

type BulkCreateFolders struct {
	Paths []string `json:"paths"`
}

type BulkDeleteFolders struct {
	Paths []string `json:"paths"`
	Force bool     `json:"force,omitempty"`
}

func (o *CreateFolder) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Path, validation.Required))
}

func (o *RenameFolder) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Path, validation.Required),
		validation.Field(&o.NewName, validation.Required))
}

func (o *MoveFolder) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Source, validation.Required),
		validation.Field(&o.Destination, validation.Required))
}

func (o *DeleteFolder) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Path, validation.Required))
}

func (o *BulkCreateFolders) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Paths, validation.Required))
}

func (o *BulkDeleteFolders) Validate() error {
	return validation.ValidateStruct(o, validation.Field(&o.Paths, validation.Required))
}

func (*CreateFolder) Name() string      { return "create_folder" }
func (*RenameFolder) Name() string      { return "rename_folder" }
func (*MoveFolder) Name() string        { return "move_folder" }
func (*DeleteFolder) Name() string      { return "delete_folder" }
func (*BulkCreateFolders) Name() string { return "bulk_create_folders" }
func (*BulkDeleteFolders) Name() string { return "bulk_delete_folders" }

func (*CreateFolder) organizeOp()      {}
func (*RenameFolder) organizeOp()      {}
func (*MoveFolder) organizeOp()        {}
func (*DeleteFolder) organizeOp()      {}
func (*BulkCreateFolders) organizeOp() {}
func (*BulkDeleteFolders) organizeOp() {}

// Organize runs a folder operation.
func (s *Session) Organize(ctx context.Context, op OrganizeOp) Result {
	e := s.Engine
	switch o := op.(type) {
	case *CreateFolder:
		f, err := e.CreateFolder(ctx, o.Path)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Created folder %s", f.Path)
		r.Results = f
		return r
	case *RenameFolder:
		f, err := e.RenameFolder(ctx, o.Path, o.NewName)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Renamed folder %s to %s", o.Path, f.Path)
		r.Results = f
		return r
	case *MoveFolder:
		f, err := e.MoveFolder(ctx, o.Source, o.Destination)
		if err != nil {
			return s.fail(op, err)
		}
		r := success("Moved folder %s to %s", o.Source, f.Path)
		r.Results = f
		return r
	case *DeleteFolder:
		if err := e.DeleteFolder(ctx, o.Path, o.Force); err != nil {
			return s.fail(op, err)
		}
		return success("Deleted folder %s", o.Path)
	case *BulkCreateFolders:
		return bulkResult(op.Name(), e.BulkCreateFolders(ctx, o.Paths))
	case *BulkDeleteFolders:
		return bulkResult(op.Name(), e.BulkDeleteFolders(ctx, o.Paths, o.Force))
	default:
		return s.fail(op, unsupported(op))
	}
}
