package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Tenant represents a row in the tenants table.
type Tenant struct {
	ID           string
	Name         string
	APIKeyHash   string
	APIKeyPrefix string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TenantWithPolicy is a Tenant joined with its policy (for auth lookups).
type TenantWithPolicy struct {
	Tenant
	ScrubConfig sql.NullString // JSONB from policies table (NULL if no policy row)
}

// GenerateAPIKey creates a new gsk_ API key with its bcrypt hash and prefix.
// Returns (fullKey, hash, prefix, error). The fullKey is shown to the user once.
func GenerateAPIKey() (string, string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("GenerateAPIKey: %w", err)
	}
	fullKey := "gsk_" + hex.EncodeToString(raw)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("GenerateAPIKey: %w", err)
	}

	prefix := fullKey[:8] // "gsk_abcd"
	return fullKey, string(hashBytes), prefix, nil
}

// CreateTenant inserts a new tenant and its empty policy in a single
// transaction. Returns the tenant and plaintext API key (shown once).
func (s *Store) CreateTenant(ctx context.Context, name string) (*Tenant, string, error) {
	fullKey, keyHash, keyPrefix, err := GenerateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("CreateTenant: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("CreateTenant: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var t Tenant
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tenants (name, api_key_hash, api_key_prefix)
		VALUES ($1, $2, $3)
		RETURNING id, name, api_key_hash, api_key_prefix, created_at, updated_at`,
		name, keyHash, keyPrefix,
	).Scan(&t.ID, &t.Name, &t.APIKeyHash, &t.APIKeyPrefix, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("CreateTenant: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO policies (tenant_id) VALUES ($1)`, t.ID,
	); err != nil {
		return nil, "", fmt.Errorf("CreateTenant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("CreateTenant: %w", err)
	}

	return &t, fullKey, nil
}

// LookupByPrefix returns the tenant (with policy) whose API key prefix
// matches, or nil if not found.
func (s *Store) LookupByPrefix(ctx context.Context, prefix string) (*TenantWithPolicy, error) {
	var t TenantWithPolicy
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.api_key_hash, t.api_key_prefix, t.created_at, t.updated_at,
		       pol.scrub_config
		FROM tenants t
		LEFT JOIN policies pol ON pol.tenant_id = t.id
		WHERE t.api_key_prefix = $1`,
		prefix,
	).Scan(&t.ID, &t.Name, &t.APIKeyHash, &t.APIKeyPrefix, &t.CreatedAt, &t.UpdatedAt,
		&t.ScrubConfig)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LookupByPrefix: %w", err)
	}
	return &t, nil
}
