package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/prefs"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/vault"
)

// Handler builds a fresh Session per request. It holds no vault state.
type Handler struct {
	store      storage.Provider
	engineOpts []vault.Option
	prefsOpts  []prefs.Option
	logger     *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithEngineOptions forwards options to every engine the handler builds.
func WithEngineOptions(opts ...vault.Option) HandlerOption {
	return func(h *Handler) { h.engineOpts = append(h.engineOpts, opts...) }
}

// WithPreferencesOptions forwards options to the preferences loader.
func WithPreferencesOptions(opts ...prefs.Option) HandlerOption {
	return func(h *Handler) { h.prefsOpts = append(h.prefsOpts, opts...) }
}

// WithLogger sets the base logger. Sessions add a request_id attribute.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler returns a Handler over store.
func NewHandler(store storage.Provider, opts ...HandlerOption) *Handler {
	h := &Handler{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Session is the per-request context: an engine and the preferences as
// they were when the request started.
type Session struct {
	ID          string
	Engine      *vault.Engine
	Preferences *models.VaultPreferences
	logger      *slog.Logger
}

// Open starts a request. An unparseable preferences note fails the whole
// request with *apperr.PreferencesParseError.
func (h *Handler) Open(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	logger := h.logger.With(slog.String("request_id", id))

	engineOpts := append([]vault.Option{vault.WithLogger(logger)}, h.engineOpts...)
	engine := vault.New(h.store, engineOpts...)

	prefsOpts := append([]prefs.Option{prefs.WithLogger(logger), prefs.WithSystemFolder(engine.SystemFolder())}, h.prefsOpts...)
	p, err := prefs.NewLoader(h.store, prefsOpts...).Load(ctx)
	if err != nil {
		logger.Error("preferences failed to load", slog.String("error", err.Error()))
		return nil, fmt.Errorf("tools: open session: %w", err)
	}
	return &Session{ID: id, Engine: engine, Preferences: p, logger: logger}, nil
}

// Run executes op in the group it belongs to.
func (s *Session) Run(ctx context.Context, op Op) Result {
	switch o := op.(type) {
	case NotesOp:
		return s.Notes(ctx, o)
	case SearchOp:
		return s.Search(ctx, o)
	case OrganizeOp:
		return s.Organize(ctx, o)
	default:
		return s.fail(op, unsupported(op))
	}
}

// Dispatch decodes params for group and runs the operation in a fresh
// session. Invalid parameters produce an unsuccessful Result; only a
// request-level failure is returned as an error.
func (h *Handler) Dispatch(ctx context.Context, group string, params []byte) (Result, error) {
	op, err := Decode(group, params)
	if err != nil {
		return fail(err), nil
	}
	s, err := h.Open(ctx)
	if err != nil {
		return Result{}, err
	}
	s.logger.Debug("operation started", slog.String("group", group), slog.String("operation", op.Name()))
	return s.Run(ctx, op), nil
}

func (s *Session) fail(op Op, err error) Result {
	attrs := []any{slog.String("operation", op.Name()), slog.String("error", err.Error())}
	if known(err) {
		s.logger.Debug("operation failed", attrs...)
	} else {
		s.logger.Error("operation failed", attrs...)
	}
	return fail(err)
}

func known(err error) bool {
	for _, k := range []error{
		apperr.ErrPathTraversal, apperr.ErrNoteNotFound, apperr.ErrNoteAlreadyExists,
		apperr.ErrFolderNotFound, apperr.ErrFolderAlreadyExists, apperr.ErrFolderNotEmpty,
		apperr.ErrTaskNotFound, apperr.ErrInvalidArgument,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

func unsupported(op Op) error {
	return fmt.Errorf("%w: unsupported operation %T", apperr.ErrInvalidArgument, op)
}
