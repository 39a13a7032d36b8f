// Package credentials persists the user-supplied backend API key. The secret
// is the single durable credential value; connect overwrites it, disconnect
// removes it.
package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/faelscarpato/capyvision/internal/infra"
	"github.com/faelscarpato/capyvision/internal/sqlinline"
)

const ProviderGemini = "gemini"

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Secret returns the stored API key, or "" when none was ever supplied.
func (s *Store) Secret(ctx context.Context) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectCredential, ProviderGemini)
	var secret string
	if err := row.Scan(&secret); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

// SetSecret stores or replaces the API key.
func (s *Store) SetSecret(ctx context.Context, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("credentials: api key is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertCredential, ProviderGemini, secret)
	return err
}

// Clear removes the stored API key. Clearing an absent key is not an error.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteCredential, ProviderGemini)
	return err
}
