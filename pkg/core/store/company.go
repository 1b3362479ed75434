package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrCompanyNotFound reports that the requested company is absent from the
// registry table.
var ErrCompanyNotFound = errors.New("company not found in registry")

// Company is one registry row.
type Company struct {
	ID     string
	Name   string
	Siren  string
	Active bool
}

// CompanyRegistry resolves company names against the local registry.
type CompanyRegistry struct{}

func NewCompanyRegistry() *CompanyRegistry {
	return &CompanyRegistry{}
}

// Lookup finds a company by case-insensitive name match.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS companies (
//	  id UUID PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  siren TEXT,
//	  active BOOLEAN DEFAULT TRUE
//	);
func (r *CompanyRegistry) Lookup(ctx context.Context, name string) (*Company, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT id, name, COALESCE(siren, ''), active FROM companies WHERE LOWER(name) = LOWER($1) LIMIT 1`

	var c Company
	err := pool.QueryRow(ctx, query, strings.TrimSpace(name)).Scan(&c.ID, &c.Name, &c.Siren, &c.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("company lookup failed: %w", err)
	}
	return &c, nil
}
