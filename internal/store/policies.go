package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Policy represents a row in the policies table. ScrubConfig is a JSONB
// document of engine.Overrides.
type Policy struct {
	ID          string
	TenantID    string
	ScrubConfig json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetPolicy returns the policy for a tenant, or nil if not found.
func (s *Store) GetPolicy(ctx context.Context, tenantID string) (*Policy, error) {
	var p Policy
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, COALESCE(scrub_config, '{}'::jsonb), created_at, updated_at
		FROM policies WHERE tenant_id = $1`, tenantID,
	).Scan(&p.ID, &p.TenantID, &p.ScrubConfig, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetPolicy: %w", err)
	}
	return &p, nil
}

// ReplacePolicy overwrites a tenant's scrub_config. Returns nil if the
// tenant has no policy row.
func (s *Store) ReplacePolicy(ctx context.Context, tenantID string, scrubConfig json.RawMessage) (*Policy, error) {
	var p Policy
	err := s.db.QueryRowContext(ctx, `
		UPDATE policies SET
			scrub_config = $2,
			updated_at   = now()
		WHERE tenant_id = $1
		RETURNING id, tenant_id, COALESCE(scrub_config, '{}'::jsonb), created_at, updated_at`,
		tenantID, scrubConfig,
	).Scan(&p.ID, &p.TenantID, &p.ScrubConfig, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ReplacePolicy: %w", err)
	}
	return &p, nil
}
