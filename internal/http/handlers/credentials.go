package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/faelscarpato/capyvision/internal/notify"
)

type connectRequest struct {
	APIKey string `json:"api_key"`
}

type credentialStatusResponse struct {
	Active bool   `json:"active"`
	Source string `json:"source"`
}

// CredentialStatus reports whether generation is authorized and where the
// credential comes from. The secret itself never leaves the server.
func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	cred, err := a.Resolver.Resolve(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("credential status failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve credential")
		return
	}
	status := credentialStatusResponse{Active: cred.Active, Source: "none"}
	if cred.Active {
		if cred.Secret != "" {
			status.Source = "stored"
		} else {
			status.Source = "external"
		}
	}
	a.json(w, http.StatusOK, status)
}

func (a *App) CredentialConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Credentials.SetSecret(r.Context(), req.APIKey); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key required")
		return
	}
	a.Notifier.Success(r.Context(), a.localized(r, notify.MsgKeyActivated))
	a.json(w, http.StatusOK, map[string]string{"status": "connected"})
}

func (a *App) CredentialDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := a.Credentials.Clear(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("credential disconnect failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to remove credential")
		return
	}
	a.Notifier.Info(r.Context(), a.localized(r, notify.MsgKeyDisconnected))
	a.json(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
