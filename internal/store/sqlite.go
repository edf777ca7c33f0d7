package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/malhajar17/jim-and-dwight/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	email              TEXT,
	linkedin_url       TEXT,
	enrich_state       TEXT NOT NULL DEFAULT 'not_started',
	ready_for_outreach INTEGER NOT NULL DEFAULT 0,
	confidence         REAL NOT NULL DEFAULT 0,
	data               TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_enrich_state ON leads(enrich_state);
CREATE INDEX IF NOT EXISTS idx_leads_ready ON leads(ready_for_outreach);
CREATE INDEX IF NOT EXISTS idx_leads_confidence ON leads(confidence);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range leads {
		if leads[i].ID == "" {
			leads[i].ID = uuid.New().String()
		}
		data, err := json.Marshal(leads[i])
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal lead %s", leads[i].ID)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (id, name, email, linkedin_url, enrich_state, ready_for_outreach, confidence, data, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, email = excluded.email, linkedin_url = excluded.linkedin_url,
			   enrich_state = excluded.enrich_state, ready_for_outreach = excluded.ready_for_outreach,
			   confidence = excluded.confidence, data = excluded.data, updated_at = excluded.updated_at`,
			leads[i].ID, leads[i].Name, leads[i].Email, leads[i].LinkedInURL,
			string(leads[i].State()), leads[i].ReadyForOutreach, leads[i].ConfidenceScore,
			string(data), now, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert lead %s", leads[i].ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM leads WHERE id = ?`, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("lead not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return unmarshalLead([]byte(data))
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE 1=1`
	var args []any

	if filter.State != "" {
		query += ` AND enrich_state = ?`
		args = append(args, string(filter.State))
	}
	if filter.ReadyForOutreach != nil {
		query += ` AND ready_for_outreach = ?`
		args = append(args, *filter.ReadyForOutreach)
	}
	query += ` ORDER BY confidence DESC, created_at ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		lead, err := unmarshalLead([]byte(data))
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func unmarshalLead(data []byte) (*model.Lead, error) {
	var lead model.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal lead")
	}
	return &lead, nil
}
