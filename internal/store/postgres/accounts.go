package postgres

import (
	"context"

	"driveplane/internal/store"
)

// CreateAccount inserts an account row keyed by the hash of its API key.
func (s *Store) CreateAccount(ctx context.Context, account *store.Account, hashedKey string) error {
	query := `
		INSERT INTO accounts (id, name, role, api_key_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Role,
		hashedKey,
		account.CreatedAt,
	)
	return err
}

func (s *Store) GetAccountByAPIKeyHash(ctx context.Context, hash string) (*store.Account, error) {
	query := "SELECT id, name, role, created_at FROM accounts WHERE api_key_hash = $1"

	var a store.Account
	err := s.db.QueryRowContext(ctx, query, hash).Scan(&a.ID, &a.Name, &a.Role, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	return &a, nil
}
