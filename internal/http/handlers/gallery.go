package handlers

import (
	"net/http"

	"github.com/faelscarpato/capyvision/internal/notify"
)

func (a *App) GalleryList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Gallery.Snapshot()})
}

// GalleryClear drops the whole history. The destructive gesture must be
// confirmed by the client with ?confirm=true.
func (a *App) GalleryClear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		a.error(w, http.StatusBadRequest, "confirm_required", "pass confirm=true to clear the gallery")
		return
	}
	a.Gallery.Clear(r.Context())
	a.Notifier.Info(r.Context(), a.localized(r, notify.MsgGalleryCleared))
	a.json(w, http.StatusOK, map[string]string{"status": "cleared"})
}
