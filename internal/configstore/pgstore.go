package configstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed Store using pgx/v5. Each (service, company)
// key maps to one JSONB document row; writes upsert the full document in a
// single statement so readers never observe a partial config.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PostgreSQL config store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Read fetches the stored document, or nil when absent.
func (s *PgStore) Read(ctx context.Context, serviceID, companyID string) (*ConfigDocument, error) {
	var docJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT document
		FROM service_configs
		WHERE service_id = $1 AND company_id = $2`,
		serviceID, companyID,
	).Scan(&docJSON)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query service config: %w", err)
	}

	var doc ConfigDocument
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal service config: %w", err)
	}
	return &doc, nil
}

// Write upserts the document for the key.
func (s *PgStore) Write(ctx context.Context, serviceID, companyID string, doc ConfigDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal service config: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO service_configs (service_id, company_id, document, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (service_id, company_id)
		DO UPDATE SET document = $3, updated_at = $4, updated_by = $5`,
		serviceID, companyID, docJSON, doc.UpdatedAt, doc.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert service config: %w", err)
	}
	return nil
}

// Ping reports backend connectivity. Used by the readiness endpoint.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
