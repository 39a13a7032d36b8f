// Package credential resolves the active backend credential from its two
// sources: a locally held secret, or an out-of-band selection confirmed by
// the hosting environment.
package credential

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Credential is the two-case union the dispatcher consumes. Active with a
// secret means the key rides on every backend call; active without one means
// the hosting environment authorizes calls out of band.
type Credential struct {
	Active bool
	Secret string
}

// SecretSource loads a locally held secret. An empty string with a nil error
// means "none stored".
type SecretSource interface {
	Secret(ctx context.Context) (string, error)
}

// Probe asks the hosting environment whether a credential has been selected
// through an out-of-band mechanism.
type Probe interface {
	HasSelectedKey(ctx context.Context) (bool, error)
}

// Resolver resolves the credential without prompting and without side
// effects. Probe failures are swallowed and read as "not active".
type Resolver struct {
	secrets SecretSource
	probe   Probe
	logger  zerolog.Logger
}

func NewResolver(secrets SecretSource, probe Probe, logger zerolog.Logger) *Resolver {
	return &Resolver{secrets: secrets, probe: probe, logger: logger}
}

// Resolve checks the local secret first, then the out-of-band probe. Only
// secret-store failures are reported; the caller cannot distinguish a failed
// probe from an unselected key, by design of the hosting contract.
func (r *Resolver) Resolve(ctx context.Context) (Credential, error) {
	secret, err := r.secrets.Secret(ctx)
	if err != nil {
		return Credential{}, err
	}
	if secret != "" {
		return Credential{Active: true, Secret: secret}, nil
	}

	if r.probe != nil {
		selected, err := r.probe.HasSelectedKey(ctx)
		if err != nil {
			r.logger.Debug().Err(err).Msg("credential probe failed, treating as inactive")
		} else if selected {
			return Credential{Active: true}, nil
		}
	}

	return Credential{}, nil
}

// HTTPProbe queries a status endpoint exposed by the hosting environment.
// The endpoint answers {"selected": bool}.
type HTTPProbe struct {
	url    string
	client *http.Client
}

func NewHTTPProbe(url string, client *http.Client) *HTTPProbe {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPProbe{url: url, client: client}
}

func (p *HTTPProbe) HasSelectedKey(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var status struct {
		Selected bool `json:"selected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, err
	}
	return status.Selected, nil
}
