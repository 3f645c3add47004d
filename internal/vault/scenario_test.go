package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func TestScenario_CreateSearchResolveDelete(t *testing.T) {
	_, e := newEngine(t, nil)
	ctx := context.Background()

	if _, err := e.CreateNote(ctx, "Notes/Idea.md", "# Idea\n\ntext", ""); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	search, err := e.SearchText(ctx, "idea", "", 0)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	want := []models.SearchResult{{Path: "Notes/Idea.md", Title: "Idea", Snippet: "# Idea", Line: 1}}
	if diff := cmp.Diff(want, search.Items); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}

	byName, err := e.FindByName(ctx, "idea", "", 0)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if diff := cmp.Diff([]string{"Notes/Idea.md"}, notePaths(byName.Items)); diff != "" {
		t.Errorf("name mismatch (-want +got):\n%s", diff)
	}

	if err := e.DeleteNote(ctx, "Notes/Idea.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := e.ReadNote(ctx, "Notes/Idea.md"); !errors.Is(err, apperr.ErrNoteNotFound) {
		t.Errorf("read after delete: err = %v, want ErrNoteNotFound", err)
	}
}

func TestScenario_SystemFolderNeverReturned(t *testing.T) {
	_, e := newEngine(t, map[string]string{
		"_system/preferences.md": "---\ntags: [secret]\n---\nsecret [[Target]]\n- [ ] secret task\n",
		"Target.md":              "secret\n",
	})
	ctx := context.Background()

	for _, scope := range []string{"", "_system"} {
		s, err := e.SearchText(ctx, "secret", scope, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range s.Items {
			if r.Path != "Target.md" {
				t.Errorf("scope %q: search returned %s", scope, r.Path)
			}
		}
		tags, err := e.FindByTag(ctx, []string{"secret"}, scope, 0)
		if err != nil || len(tags.Items) != 0 {
			t.Errorf("scope %q: tag search = %+v, %v", scope, tags.Items, err)
		}
		names, err := e.FindByName(ctx, "preferences", scope, 0)
		if err != nil || len(names.Items) != 0 {
			t.Errorf("scope %q: name search = %+v, %v", scope, names.Items, err)
		}
		tasks, err := e.ListTasks(ctx, scope, true, 0)
		if err != nil || len(tasks.Items) != 0 {
			t.Errorf("scope %q: tasks = %+v, %v", scope, tasks.Items, err)
		}
		notes, err := e.ListNotes(ctx, scope, true, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range notes.Items {
			if n.Path != "Target.md" {
				t.Errorf("scope %q: list returned %s", scope, n.Path)
			}
		}
	}

	links, err := e.Backlinks(ctx, "Target", 0)
	if err != nil || len(links.Items) != 0 {
		t.Errorf("backlinks = %+v, %v", links.Items, err)
	}
	tags, err := e.Tags(ctx, 0)
	if err != nil || len(tags.Items) != 0 {
		t.Errorf("tags = %+v, %v", tags.Items, err)
	}
}
