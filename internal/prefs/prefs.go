// Package prefs loads the user preferences note kept in the vault's system
// folder.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/exclude"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// FileName is the preferences note inside the system folder.
const FileName = "preferences.md"

// Loader reads preferences fresh on every call.
type Loader struct {
	store        storage.Provider
	systemFolder string
	logger       *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for validation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithSystemFolder overrides the system folder name.
func WithSystemFolder(name string) Option {
	return func(ld *Loader) {
		if name != "" {
			ld.systemFolder = name
		}
	}
}

// NewLoader returns a Loader over store.
func NewLoader(store storage.Provider, opts ...Option) *Loader {
	l := &Loader{
		store:        store,
		systemFolder: exclude.DefaultSystemFolder,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the vault-relative path of the preferences note.
func (l *Loader) Path() string {
	return path.Join(l.systemFolder, FileName)
}

// Load returns the current preferences, or nil when there are none. When
// the note is missing but the system folder exists, a documented template
// is written and nil is returned. A front matter block that cannot be
// parsed yields *apperr.PreferencesParseError.
func (l *Loader) Load(ctx context.Context) (*models.VaultPreferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := l.Path()
	data, err := l.store.Read(rel)
	if err != nil {
		if !storage.IsNotExist(err) {
			return nil, fmt.Errorf("prefs: read %s: %w", rel, err)
		}
		return nil, l.scaffold(rel)
	}

	doc, err := parser.ParseDocument(data)
	if err != nil {
		return nil, &apperr.PreferencesParseError{File: rel, Err: err}
	}
	return &models.VaultPreferences{
		Settings: l.settings(doc.Frontmatter),
		Context:  doc.RawBody(),
	}, nil
}

// scaffold writes the template when the system folder exists.
func (l *Loader) scaffold(rel string) error {
	info, err := l.store.Stat(l.systemFolder)
	if err != nil {
		if storage.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("prefs: stat %s: %w", l.systemFolder, err)
	}
	if !info.IsDir() {
		return nil
	}
	if err := l.store.Write(rel, []byte(Template)); err != nil {
		return fmt.Errorf("prefs: write template: %w", err)
	}
	l.logger.Info("preferences template created", slog.String("path", rel))
	return nil
}

// settings validates each known field, keeping the default for anything
// missing or invalid.
func (l *Loader) settings(fm *parser.Frontmatter) models.PreferenceSettings {
	s := models.DefaultPreferenceSettings()
	raw := fm.Map()

	for key, val := range raw {
		switch key {
		case "date_format":
			if v, ok := l.format(key, val); ok {
				s.DateFormat = v
			}
		case "time_format":
			if v, ok := l.format(key, val); ok {
				s.TimeFormat = v
			}
		case "default_folders":
			s.DefaultFolders = l.defaultFolders(val)
		case "response_style":
			s.ResponseStyle = l.responseStyle(val)
		default:
			l.warn(key, errors.New("unknown field, ignored"))
		}
	}
	return s
}

func (l *Loader) warn(field string, err error) {
	l.logger.Warn("invalid preference, using default",
		slog.String("file", l.Path()),
		slog.String("field", field),
		slog.String("error", err.Error()))
}

func (l *Loader) format(key string, val any) (string, bool) {
	s, ok := val.(string)
	if !ok {
		l.warn(key, fmt.Errorf("expected a string, got %T", val))
		return "", false
	}
	if err := validation.Validate(s, validation.Required, validation.Length(1, 64)); err != nil {
		l.warn(key, err)
		return "", false
	}
	return s, true
}

func (l *Loader) defaultFolders(val any) map[string]string {
	out := map[string]string{}
	m, ok := val.(map[string]any)
	if !ok {
		if val != nil {
			l.warn("default_folders", fmt.Errorf("expected a mapping, got %T", val))
		}
		return out
	}
	inVault := validation.By(func(v any) error {
		if _, err := l.store.Resolve(v.(string)); err != nil {
			return errors.New("must stay inside the vault")
		}
		return nil
	})
	for name, folder := range m {
		field := "default_folders." + name
		s, ok := folder.(string)
		if !ok {
			l.warn(field, fmt.Errorf("expected a string, got %T", folder))
			continue
		}
		if err := validation.Validate(s, validation.Required, inVault); err != nil {
			l.warn(field, err)
			continue
		}
		out[name] = s
	}
	return out
}

func (l *Loader) responseStyle(val any) models.ResponseStyle {
	rs := models.DefaultPreferenceSettings().ResponseStyle
	m, ok := val.(map[string]any)
	if !ok {
		if val != nil {
			l.warn("response_style", fmt.Errorf("expected a mapping, got %T", val))
		}
		return rs
	}
	for key, v := range m {
		field := "response_style." + key
		switch key {
		case "verbosity":
			s, _ := v.(string)
			err := validation.Validate(s, validation.Required,
				validation.In(models.VerbosityConcise, models.VerbosityBalanced, models.VerbosityDetailed))
			if err != nil {
				l.warn(field, err)
				continue
			}
			rs.Verbosity = s
		case "bullet_points", "timestamps":
			b, ok := v.(bool)
			if !ok {
				l.warn(field, fmt.Errorf("expected true or false, got %v", v))
				continue
			}
			if key == "bullet_points" {
				rs.BulletPoints = b
			} else {
				rs.Timestamps = b
			}
		default:
			l.warn(field, errors.New("unknown field, ignored"))
		}
	}
	return rs
}
