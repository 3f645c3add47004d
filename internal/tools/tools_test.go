package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

func newHandler(t *testing.T, files map[string]string) (string, *Handler) {
	t.Helper()
	dir, store := testutil.SeedVault(t, files)
	return dir, NewHandler(store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func dispatch(t *testing.T, h *Handler, group, params string) Result {
	t.Helper()
	res, err := h.Dispatch(context.Background(), group, []byte(params))
	require.NoError(t, err)
	return res
}

func TestDecode(t *testing.T) {
	op, err := Decode(GroupNotes, []byte(`{"operation":"create","path":"a.md","content":"x","folder":"F"}`))
	require.NoError(t, err)
	assert.Equal(t, &CreateNote{Path: "a.md", Content: "x", Folder: "F"}, op)

	op, err = Decode(GroupSearch, []byte(`{"operation":"find_by_tag","tags":["go"],"limit":5}`))
	require.NoError(t, err)
	assert.Equal(t, &FindByTag{Tags: []string{"go"}, Limit: 5}, op)

	tests := []struct {
		name   string
		group  string
		params string
	}{
		{"unknown group", "admin", `{"operation":"read"}`},
		{"unknown operation", GroupNotes, `{"operation":"explode"}`},
		{"operation of another group", GroupNotes, `{"operation":"search_text","query":"x"}`},
		{"not an object", GroupNotes, `[1,2]`},
		{"missing path", GroupNotes, `{"operation":"read"}`},
		{"wrong type", GroupSearch, `{"operation":"search_text","query":"x","limit":"ten"}`},
		{"negative limit", GroupSearch, `{"operation":"tags","limit":-1}`},
		{"empty bulk", GroupNotes, `{"operation":"bulk_delete","paths":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.group, []byte(tt.params))
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		})
	}
}

func TestOperationsCoverRegistry(t *testing.T) {
	for _, g := range Groups {
		names := Operations(g)
		assert.Len(t, names, len(registry[g]), g)
		for _, n := range names {
			newOp, ok := registry[g][n]
			require.True(t, ok, "%s/%s", g, n)
			assert.Equal(t, n, newOp().Name())
		}
	}
}

func TestDispatch_NotesLifecycle(t *testing.T) {
	dir, h := newHandler(t, nil)

	res := dispatch(t, h, GroupNotes, `{"operation":"create","path":"Ideas/One.md","content":"---\ntags: [go]\n---\n# One\n- [ ] ship it\n"}`)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Content)
	assert.Equal(t, "Ideas/One.md", res.Content.Path)
	assert.Equal(t, []string{"go"}, res.Content.Tags)

	res = dispatch(t, h, GroupNotes, `{"operation":"complete_task","path":"Ideas/One.md","task":"ship"}`)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, models.TaskInfo{Path: "Ideas/One.md", Text: "ship it", Completed: true, Line: 5}, res.Results)
	assert.Contains(t, testutil.ReadFile(t, dir, "Ideas/One.md"), "- [x] ship it")

	res = dispatch(t, h, GroupNotes, `{"operation":"update","path":"Ideas/One.md","content":"replaced\n"}`)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "---\ntags: [go]\n---\nreplaced\n", testutil.ReadFile(t, dir, "Ideas/One.md"))

	res = dispatch(t, h, GroupNotes, `{"operation":"rename","path":"Ideas/One.md","new_name":"Two"}`)
	require.True(t, res.Success, res.Message)
	assert.True(t, testutil.Exists(t, dir, "Ideas/Two.md"))

	res = dispatch(t, h, GroupNotes, `{"operation":"delete","path":"Ideas/Two.md"}`)
	require.True(t, res.Success, res.Message)
	assert.False(t, testutil.Exists(t, dir, "Ideas/Two.md"))
}

func TestDispatch_FailuresAreActionable(t *testing.T) {
	_, h := newHandler(t, map[string]string{"a.md": "- [x] done\n", "Full/b.md": "x"})

	tests := []struct {
		name     string
		group    string
		params   string
		contains []string
	}{
		{"missing note", GroupNotes, `{"operation":"read","path":"nope.md"}`, []string{"nope.md", "find_by_name"}},
		{"traversal", GroupNotes, `{"operation":"read","path":"../etc/passwd"}`, []string{"escapes", "'..'"}},
		{"duplicate", GroupNotes, `{"operation":"create","path":"a.md","content":""}`, []string{"a.md", "update or append"}},
		{"task done", GroupNotes, `{"operation":"complete_task","path":"a.md","task":"1"}`, []string{"already completed"}},
		{"folder not empty", GroupOrganize, `{"operation":"delete_folder","path":"Full"}`, []string{"Full", "force"}},
		{"missing folder", GroupSearch, `{"operation":"list_notes","folder":"Nowhere"}`, []string{"Nowhere", "list_folders"}},
		{"bad params", GroupSearch, `{"operation":"search_text"}`, []string{"search_text", "query"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := dispatch(t, h, tt.group, tt.params)
			assert.False(t, res.Success)
			for _, c := range tt.contains {
				assert.Contains(t, res.Message, c)
			}
		})
	}
}

func TestDispatch_Search(t *testing.T) {
	_, h := newHandler(t, map[string]string{
		"a.md":   "alpha #go\n",
		"b.md":   "alpha\n",
		"c.md":   "alpha\n",
		"D/e.md": "text\n",
	})

	res := dispatch(t, h, GroupSearch, `{"operation":"search_text","query":"alpha","limit":2}`)
	require.True(t, res.Success, res.Message)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Results, 2)

	res = dispatch(t, h, GroupSearch, `{"operation":"tags"}`)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []models.TagInfo{{Tag: "go", Count: 1}}, res.Results)

	res = dispatch(t, h, GroupSearch, `{"operation":"list_structure","depth":1}`)
	require.True(t, res.Success, res.Message)
	require.Len(t, res.Structure, 4)
	assert.Equal(t, models.FolderNode{Name: "D", Path: "D", Kind: models.KindFolder}, res.Structure[0])
	assert.Nil(t, res.Results)
}

func TestDispatch_Bulk(t *testing.T) {
	dir, h := newHandler(t, map[string]string{"exists.md": "x"})

	res := dispatch(t, h, GroupNotes, `{"operation":"bulk_create","items":[
		{"path":"one.md","content":"1"},
		{"path":"exists.md","content":"2"},
		{"path":"two.md","folder":"Sub","content":"3"}]}`)
	assert.False(t, res.Success)
	require.NotNil(t, res.AffectedCount)
	assert.Equal(t, 2, *res.AffectedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "exists.md", res.Errors[0].Item)
	assert.Contains(t, res.Errors[0].Error, "already exists")
	assert.True(t, testutil.Exists(t, dir, "Sub/two.md"))

	res = dispatch(t, h, GroupNotes, `{"operation":"bulk_create","items":[
		{"path":"a","content":"A"},
		{"path":"","content":"blank"},
		{"path":"c","content":"C"}]}`)
	assert.False(t, res.Success)
	require.NotNil(t, res.AffectedCount)
	assert.Equal(t, 2, *res.AffectedCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error, "note path is empty")
	assert.True(t, testutil.Exists(t, dir, "a.md"))
	assert.True(t, testutil.Exists(t, dir, "c.md"))

	res = dispatch(t, h, GroupNotes, `{"operation":"bulk_delete","paths":["a","","c"]}`)
	require.NotNil(t, res.AffectedCount)
	assert.Equal(t, 2, *res.AffectedCount)
	require.Len(t, res.Errors, 1)
	assert.False(t, testutil.Exists(t, dir, "c.md"))

	res = dispatch(t, h, GroupOrganize, `{"operation":"bulk_create_folders","paths":["X","","Y/Z"]}`)
	assert.False(t, res.Success)
	assert.Equal(t, 2, *res.AffectedCount)
	require.Len(t, res.Errors, 1)

	res = dispatch(t, h, GroupOrganize, `{"operation":"bulk_create_folders","paths":["P","Q/R"]}`)
	assert.True(t, res.Success, res.Message)
	assert.Equal(t, 2, *res.AffectedCount)
	assert.Empty(t, res.Errors)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"bulk_create_folders: 2 succeeded, 0 failed","affected_count":2}`, string(out))
}

func TestOpen_PreferencesFailRequest(t *testing.T) {
	_, h := newHandler(t, map[string]string{"_system/preferences.md": "---\nverbosity: [\n---\n"})

	_, err := h.Open(context.Background())
	assert.ErrorIs(t, err, apperr.ErrPreferencesParse)

	_, err = h.Dispatch(context.Background(), GroupSearch, []byte(`{"operation":"tags"}`))
	var pe *apperr.PreferencesParseError
	assert.ErrorAs(t, err, &pe)
}

func TestOpen_FreshSessions(t *testing.T) {
	dir, h := newHandler(t, map[string]string{"_system/preferences.md": "first"})

	s1, err := h.Open(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s1.Preferences)
	assert.Equal(t, "first", s1.Preferences.Context)

	testutil.WriteFiles(t, dir, map[string]string{"_system/preferences.md": "second"})
	s2, err := h.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", s2.Preferences.Context)
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))
	assert.Contains(t, Describe(context.Canceled), "stopped")
	assert.Contains(t, Describe(&apperr.TaskError{Path: "a.md", Reason: apperr.TaskNoTasks}), "list_tasks")
	assert.Contains(t, Describe(assert.AnError), "unexpected error")
}
