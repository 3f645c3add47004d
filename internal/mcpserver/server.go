// Package mcpserver exposes the vault tool groups to LLM clients over the
// Model Context Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/tools"
)

// NoteFormatURI is the resource holding NoteFormatContract.
const NoteFormatURI = "ansuz://note-format"

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp     *server.MCPServer
	handler *tools.Handler
	logger  *slog.Logger
}

// New creates an MCP server with every tool group registered.
func New(handler *tools.Handler, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{handler: handler, logger: logger}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(groupTool("manage_notes", tools.GroupNotes,
		"Read, create, update, append to, delete, move and rename notes, complete tasks, "+
			"and run the bulk variants. Bulk operations are best effort: every item is attempted "+
			"and failures are reported per item. Read the note contract via get_note_contract "+
			"before writing notes.",
		mcp.WithString("path", mcp.Description("Vault-relative note path; .md is added when missing")),
		mcp.WithString("content", mcp.Description("Markdown content for create, update and append")),
		mcp.WithString("folder", mcp.Description("Folder to create the note in")),
		mcp.WithBoolean("preserve_frontmatter", mcp.Description("update: keep the existing front matter (default true)")),
		mcp.WithString("task", mcp.Description("complete_task: 1-based line number or task text")),
		mcp.WithString("source", mcp.Description("move: current note path")),
		mcp.WithString("destination", mcp.Description("move: new note path")),
		mcp.WithString("new_name", mcp.Description("rename: new file name in the same folder")),
		mcp.WithArray("items", mcp.Description("Bulk operations: list of objects with the single-item fields"),
			mcp.Items(map[string]any{"type": "object"})),
		mcp.WithArray("paths", mcp.Description("bulk_delete: note paths"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.groupHandler(tools.GroupNotes))

	s.mcp.AddTool(groupTool("search_vault", tools.GroupSearch,
		"Search and browse the vault: full-text search, tags, names, backlinks, tasks, "+
			"and note, folder or tree listings. Results are capped by limit and report "+
			"truncated when more exist.",
		mcp.WithString("query", mcp.Description("search_text and find_by_name: text to look for")),
		mcp.WithArray("tags", mcp.Description("find_by_tag: notes carrying at least one of the tags"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("folder", mcp.Description("Restrict to this folder")),
		mcp.WithString("path", mcp.Description("backlinks: target note path or name")),
		mcp.WithBoolean("recursive", mcp.Description("list_notes and list_folders: include subfolders")),
		mcp.WithBoolean("include_completed", mcp.Description("list_tasks: include completed tasks")),
		mcp.WithNumber("depth", mcp.Description("list_structure: levels to descend, 0 for all")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, 0 for the default")),
	), s.groupHandler(tools.GroupSearch))

	s.mcp.AddTool(groupTool("organize_vault", tools.GroupOrganize,
		"Create, rename, move and delete folders. Deleting a non-empty folder requires force.",
		mcp.WithString("path", mcp.Description("Vault-relative folder path")),
		mcp.WithString("new_name", mcp.Description("rename_folder: new folder name")),
		mcp.WithString("source", mcp.Description("move_folder: current folder path")),
		mcp.WithString("destination", mcp.Description("move_folder: new folder path")),
		mcp.WithBoolean("force", mcp.Description("delete_folder: delete contents too")),
		mcp.WithArray("paths", mcp.Description("Bulk operations: folder paths"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.groupHandler(tools.GroupOrganize))

	s.mcp.AddTool(mcp.NewTool("get_preferences",
		mcp.WithDescription("Returns the user's vault preferences: date and time formats, "+
			"default folders, response style, and free-form context."),
	), s.getPreferences)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the note format contract. "+
			"Call this before creating or updating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("Markdown note format understood by the vault tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

func groupTool(name, group, desc string, opts ...mcp.ToolOption) mcp.Tool {
	ops := tools.Operations(group)
	all := append([]mcp.ToolOption{
		mcp.WithDescription(desc),
		mcp.WithString("operation", mcp.Required(), mcp.Enum(ops...),
			mcp.Description("One of: "+strings.Join(ops, ", "))),
	}, opts...)
	return mcp.NewTool(name, all...)
}

// Serve runs the server on the given streams until ctx is done or the
// input is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("mcp server listening on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcpserver: listen: %w", err)
	}
	return nil
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) groupHandler(group string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := s.handler.Dispatch(ctx, group, params)
		if err != nil {
			return nil, err
		}
		return resultJSON(res, !res.Success)
	}
}

func (s *Server) getPreferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.handler.Open(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Preferences == nil {
		return mcp.NewToolResultText("no preferences configured"), nil
	}
	return resultJSON(sess.Preferences, false)
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func resultJSON(v any, isError bool) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	r := mcp.NewToolResultText(string(out))
	r.IsError = isError
	return r, nil
}
