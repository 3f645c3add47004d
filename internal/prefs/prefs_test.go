package prefs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/testutil"
)

func newLoader(t *testing.T, files map[string]string) (string, *Loader, *bytes.Buffer) {
	t.Helper()
	dir, store := testutil.SeedVault(t, files)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	return dir, NewLoader(store, WithLogger(logger)), &logs
}

func TestLoad_Valid(t *testing.T) {
	_, l, logs := newLoader(t, map[string]string{
		"_system/preferences.md": `---
date_format: "%d.%m.%Y"
time_format: "%I:%M %p"
default_folders:
  daily: Journal/Daily
response_style:
  verbosity: concise
  bullet_points: false
  timestamps: true
---
I work on the ansuz project.
`,
	})
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)

	want := models.PreferenceSettings{
		DateFormat:     "%d.%m.%Y",
		TimeFormat:     "%I:%M %p",
		DefaultFolders: map[string]string{"daily": "Journal/Daily"},
		ResponseStyle:  models.ResponseStyle{Verbosity: "concise", BulletPoints: false, Timestamps: true},
	}
	assert.Equal(t, want, p.Settings)
	assert.Equal(t, "I work on the ansuz project.\n", p.Context)
	assert.Empty(t, logs.String())
}

func TestLoad_InvalidFieldsFallBack(t *testing.T) {
	_, l, logs := newLoader(t, map[string]string{
		"_system/preferences.md": `---
date_format: ""
time_format: 42
default_folders:
  ok: Projects
  bad: ../outside
  worse: /etc
response_style:
  verbosity: chatty
  bullet_points: "maybe"
  colour: blue
theme: dark
---
body`,
	})
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)

	def := models.DefaultPreferenceSettings()
	assert.Equal(t, def.DateFormat, p.Settings.DateFormat)
	assert.Equal(t, def.TimeFormat, p.Settings.TimeFormat)
	assert.Equal(t, map[string]string{"ok": "Projects"}, p.Settings.DefaultFolders)
	assert.Equal(t, def.ResponseStyle, p.Settings.ResponseStyle)
	assert.Equal(t, "body", p.Context)

	for _, field := range []string{"date_format", "time_format", "default_folders.bad", "default_folders.worse",
		"response_style.verbosity", "response_style.bullet_points", "response_style.colour", "theme"} {
		assert.Contains(t, logs.String(), "field="+field)
	}
}

func TestLoad_ContextIsVerbatim(t *testing.T) {
	_, l, _ := newLoader(t, map[string]string{
		"_system/preferences.md": "---\ndate_format: \"%Y\"\n---\n\n\n  Indented context.\n\n",
	})
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "\n\n  Indented context.\n\n", p.Context)
}

func TestLoad_NoFrontmatter(t *testing.T) {
	_, l, _ := newLoader(t, map[string]string{"_system/preferences.md": "Just context.\n"})
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.DefaultPreferenceSettings(), p.Settings)
	assert.Equal(t, "Just context.\n", p.Context)
}

func TestLoad_MalformedIsHardFailure(t *testing.T) {
	_, l, _ := newLoader(t, map[string]string{"_system/preferences.md": "---\nresponse_style: [unclosed\n---\n"})
	p, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, p)

	var pe *apperr.PreferencesParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "_system/preferences.md", pe.File)
	assert.ErrorIs(t, err, apperr.ErrPreferencesParse)
	assert.ErrorIs(t, err, parser.ErrMalformedFrontmatter)
	assert.Contains(t, err.Error(), "_system/preferences.md")
}

func TestLoad_ScaffoldsTemplate(t *testing.T) {
	dir, l, _ := newLoader(t, map[string]string{"_system/": ""})
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p, "template creation is not loading")
	assert.Equal(t, Template, testutil.ReadFile(t, dir, "_system/preferences.md"))

	p, err = l.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.DefaultPreferenceSettings(), p.Settings)
}

func TestLoad_NothingWithoutSystemFolder(t *testing.T) {
	dir, l, _ := newLoader(t, nil)
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, testutil.Exists(t, dir, "_system"))
}

func TestLoad_CustomSystemFolder(t *testing.T) {
	_, store := testutil.SeedVault(t, map[string]string{".ansuz/preferences.md": "ctx"})
	l := NewLoader(store, WithSystemFolder(".ansuz"))
	assert.Equal(t, ".ansuz/preferences.md", l.Path())
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ctx", p.Context)
}
