package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-exchange/internal"
)

type APIKeyStorage struct {
	pool *pgxpool.Pool
}

func NewAPIKeyStorage(pool *pgxpool.Pool) *APIKeyStorage {
	return &APIKeyStorage{pool: pool}
}

// FindByHash returns nil, nil for an unknown hash.
func (s *APIKeyStorage) FindByHash(ctx context.Context, keyHash string) (*internal.APIKey, error) {
	keyHash = strings.TrimSpace(keyHash)
	if keyHash == "" {
		return nil, nil
	}

	var key internal.APIKey
	err := s.pool.QueryRow(ctx, `
select is_active, drivers
from api_keys
where key_hash = $1;
`, keyHash).Scan(&key.Active, &key.Drivers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select api_keys: %w", err)
	}
	return &key, nil
}
