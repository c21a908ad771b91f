package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists sealed envelopes in the tenant_secrets table. The envelope
// is stored as an opaque JSONB blob; the store never sees plaintext.
type Store struct {
	db DB
}

// NewStore creates an envelope store over a pgx connection pool.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Save upserts the envelope for (tenant_id, key).
func (s *Store) Save(ctx context.Context, env Envelope) error {
	blob, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("secrets: marshal envelope: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO tenant_secrets (tenant_id, key, envelope, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (tenant_id, key)
		 DO UPDATE SET envelope = EXCLUDED.envelope, updated_at = now()`,
		env.TenantID, env.Key, blob)
	if err != nil {
		return fmt.Errorf("secrets: save envelope %s/%s: %w", env.TenantID, env.Key, err)
	}
	return nil
}

// Get loads the envelope for (tenant_id, key). Returns ErrNotFound when no
// envelope has been sealed for that pair.
func (s *Store) Get(ctx context.Context, tenantID, key string) (Envelope, error) {
	var blob []byte
	err := s.db.QueryRow(ctx,
		`SELECT envelope FROM tenant_secrets WHERE tenant_id = $1 AND key = $2`,
		tenantID, key).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return Envelope{}, ErrNotFound
	}
	if err != nil {
		return Envelope{}, fmt.Errorf("secrets: load envelope %s/%s: %w", tenantID, key, err)
	}

	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return Envelope{}, fmt.Errorf("secrets: decode envelope %s/%s: %w", tenantID, key, err)
	}
	return env, nil
}
