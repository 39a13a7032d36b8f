// Package handlers implements the JSON API in front of the orchestration
// core. Handlers translate transport concerns (multipart parsing, status
// codes, localization) and delegate everything else.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/domain"
	"github.com/faelscarpato/capyvision/internal/gallery"
	"github.com/faelscarpato/capyvision/internal/middleware"
	"github.com/faelscarpato/capyvision/internal/notify"
	"github.com/faelscarpato/capyvision/internal/pipeline"
)

// GenerationDispatcher is the handler-side view of the dispatcher.
type GenerationDispatcher interface {
	Dispatch(ctx context.Context, req pipeline.Request) (domain.MediaItem, error)
	Busy() bool
}

// CredentialStore persists the user-supplied API key.
type CredentialStore interface {
	Secret(ctx context.Context) (string, error)
	SetSecret(ctx context.Context, secret string) error
	Clear(ctx context.Context) error
}

type App struct {
	Dispatcher  GenerationDispatcher
	Gallery     *gallery.Store
	Credentials CredentialStore
	Resolver    pipeline.CredentialResolver
	Notifier    notify.Sink
	Logger      zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// localized resolves a catalog message for the request's locale.
func (a *App) localized(r *http.Request, id notify.MessageID) string {
	return notify.Localize(middleware.LocaleFromContext(r.Context()), id)
}
