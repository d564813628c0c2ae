package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Linkfeed/internal/core/identity"
)

// CredentialRepository stores the local user's backend token
type CredentialRepository struct {
	db *sql.DB
}

var _ identity.CredentialStore = (*CredentialRepository)(nil)

// NewCredentialRepository creates a credential store backed by db
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns the stored token
func (r *CredentialRepository) Get(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", identity.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return token, nil
}

// Set replaces the stored token
func (r *CredentialRepository) Set(ctx context.Context, token string) error {
	query := `
		INSERT INTO credentials (id, token, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (r *CredentialRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
