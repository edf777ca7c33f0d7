// Package store persists leads between pipeline passes. Both backends
// keep the full lead as JSON alongside a few indexed columns, so the
// schema survives lead-shape changes without migrations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	State            model.EnrichState `json:"state,omitempty"`
	ReadyForOutreach *bool             `json:"ready_for_outreach,omitempty"`
	Limit            int               `json:"limit,omitempty"`
	Offset           int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// SaveLeads upserts the batch by lead ID, assigning IDs to new
	// leads in place. Each lead is written whole; the idempotence flags
	// land atomically with the rest of the record.
	SaveLeads(ctx context.Context, leads []model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the configured backend. The sqlite driver is the
// default for local single-user runs.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "leads.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
