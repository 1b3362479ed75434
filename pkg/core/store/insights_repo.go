package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// InsightsRepo persists completed analyses for audit and replay.
type InsightsRepo struct{}

// NewInsightsRepo creates a new repository instance.
func NewInsightsRepo() *InsightsRepo {
	return &InsightsRepo{}
}

// Save upserts the final response envelope for a request.
// A single JSONB blob keeps the schema stable while the envelope evolves.
func (r *InsightsRepo) Save(ctx context.Context, requestID, companyName, pdfURL string, envelope map[string]interface{}) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	// Schema assumption:
	// CREATE TABLE IF NOT EXISTS financial_insights (
	//   request_id UUID PRIMARY KEY,
	//   company_name TEXT,
	//   pdf_url TEXT,
	//   response_json JSONB,
	//   created_at TIMESTAMPTZ
	// );

	query := `
		INSERT INTO financial_insights (request_id, company_name, pdf_url, response_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (request_id)
		DO UPDATE SET
			company_name = EXCLUDED.company_name,
			pdf_url = EXCLUDED.pdf_url,
			response_json = EXCLUDED.response_json,
			created_at = EXCLUDED.created_at;
	`

	_, err = pool.Exec(ctx, query, requestID, companyName, pdfURL, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save insights: %w", err)
	}
	return nil
}

// Load retrieves a saved envelope by request ID.
func (r *InsightsRepo) Load(ctx context.Context, requestID string) (map[string]interface{}, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `SELECT response_json FROM financial_insights WHERE request_id = $1`
	if err := pool.QueryRow(ctx, query, requestID).Scan(&jsonData); err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(jsonData, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return envelope, nil
}
