package tools

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
)

// Groups.
const (
	GroupNotes    = "notes"
	GroupSearch   = "search"
	GroupOrganize = "organize"
)

// Groups lists the group names accepted by Decode.
var Groups = []string{GroupNotes, GroupSearch, GroupOrganize}

// Op is a decoded operation of any group.
type Op interface {
	Name() string
}

var registry = map[string]map[string]func() Op{
	GroupNotes: {
		"read":                func() Op { return &ReadNote{} },
		"create":              func() Op { return &CreateNote{} },
		"update":              func() Op { return &UpdateNote{} },
		"append":              func() Op { return &AppendNote{} },
		"delete":              func() Op { return &DeleteNote{} },
		"complete_task":       func() Op { return &CompleteTask{} },
		"move":                func() Op { return &MoveNote{} },
		"rename":              func() Op { return &RenameNote{} },
		"bulk_create":         func() Op { return &BulkCreate{} },
		"bulk_update":         func() Op { return &BulkUpdate{} },
		"bulk_append":         func() Op { return &BulkAppend{} },
		"bulk_delete":         func() Op { return &BulkDelete{} },
		"bulk_move":           func() Op { return &BulkMove{} },
		"bulk_complete_tasks": func() Op { return &BulkCompleteTasks{} },
	},
	GroupSearch: {
		"search_text":    func() Op { return &SearchText{} },
		"find_by_tag":    func() Op { return &FindByTag{} },
		"find_by_name":   func() Op { return &FindByName{} },
		"backlinks":      func() Op { return &Backlinks{} },
		"tags":           func() Op { return &Tags{} },
		"list_tasks":     func() Op { return &ListTasks{} },
		"list_notes":     func() Op { return &ListNotes{} },
		"list_folders":   func() Op { return &ListFolders{} },
		"list_structure": func() Op { return &ListStructure{} },
	},
	GroupOrganize: {
		"create_folder":       func() Op { return &CreateFolder{} },
		"rename_folder":       func() Op { return &RenameFolder{} },
		"move_folder":         func() Op { return &MoveFolder{} },
		"delete_folder":       func() Op { return &DeleteFolder{} },
		"bulk_create_folders": func() Op { return &BulkCreateFolders{} },
		"bulk_delete_folders": func() Op { return &BulkDeleteFolders{} },
	},
}

// Operations returns the operation names of group in documentation order.
func Operations(group string) []string {
	return operations[group]
}

var operations = map[string][]string{
	GroupNotes: {"read", "create", "update", "append", "delete", "complete_task", "move", "rename",
		"bulk_create", "bulk_update", "bulk_append", "bulk_delete", "bulk_move", "bulk_complete_tasks"},
	GroupSearch: {"search_text", "find_by_tag", "find_by_name", "backlinks", "tags",
		"list_tasks", "list_notes", "list_folders", "list_structure"},
	GroupOrganize: {"create_folder", "rename_folder", "move_folder", "delete_folder",
		"bulk_create_folders", "bulk_delete_folders"},
}

// Decode parses a JSON object whose "operation" field selects the
// operation of group, and validates its parameters.
func Decode(group string, data []byte) (Op, error) {
	ops, ok := registry[group]
	if !ok {
		return nil, fmt.Errorf("%w: unknown group %q", apperr.ErrInvalidArgument, group)
	}
	var head struct {
		Operation string `json:"operation"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: parameters must be a JSON object: %v", apperr.ErrInvalidArgument, err)
	}
	newOp, ok := ops[head.Operation]
	if !ok {
		return nil, fmt.Errorf("%w: unknown %s operation %q, expected one of %v",
			apperr.ErrInvalidArgument, group, head.Operation, Operations(group))
	}
	op := newOp()
	if err := json.Unmarshal(data, op); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidArgument, head.Operation, err)
	}
	if v, ok := op.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidArgument, head.Operation, err)
		}
	}
	return op, nil
}
