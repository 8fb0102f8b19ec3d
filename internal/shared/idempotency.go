package shared

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
)

// IdempotencyHeader carries the client supplied request key.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKey = 128

var (
	// ErrKeyReplayed indicates the key was already claimed for the scope.
	ErrKeyReplayed = errors.New("idempotency: key already used")
	// ErrKeyInvalid indicates an empty or oversized key.
	ErrKeyInvalid = errors.New("idempotency: invalid key")
)

// IdempotencyStore claims request keys in idempotency_keys, one namespace per scope.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// Claim records key under scope. A second claim of the same pair returns
// ErrKeyReplayed.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > maxIdempotencyKey || scope == "" {
		return ErrKeyInvalid
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO idempotency_keys (key, module) VALUES ($1, $2)`, key, scope)
	if db.IsUniqueViolation(err, "") {
		return ErrKeyReplayed
	}
	return err
}

// Release drops a claim so the client can retry after a rejected request.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1 AND module = $2`, strings.TrimSpace(key), scope)
	return err
}
