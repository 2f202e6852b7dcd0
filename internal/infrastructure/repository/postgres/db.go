package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	ticker TEXT,
	industry TEXT,
	country TEXT,
	website TEXT,
	description TEXT,
	risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	risk_score_updated_at TIMESTAMPTZ,
	executive_summary TEXT,
	summary_updated_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	source TEXT NOT NULL,
	source_url TEXT,
	sentiment_score DOUBLE PRECISION,
	sentiment_label TEXT,
	entities JSONB,
	embedding_id TEXT,
	published_at TIMESTAMPTZ,
	ingested_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_company ON documents(company_id);
CREATE INDEX IF NOT EXISTS idx_documents_published ON documents(published_at DESC);

CREATE TABLE IF NOT EXISTS risk_scores (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	score DOUBLE PRECISION NOT NULL,
	rule_score DOUBLE PRECISION NOT NULL,
	stat_score DOUBLE PRECISION NOT NULL,
	features JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_risk_scores_company ON risk_scores(company_id, created_at DESC);

CREATE TABLE IF NOT EXISTS sentiment_timeseries (
	company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	avg_sentiment DOUBLE PRECISION NOT NULL,
	document_count INTEGER NOT NULL DEFAULT 0,
	positive_count INTEGER NOT NULL DEFAULT 0,
	negative_count INTEGER NOT NULL DEFAULT 0,
	neutral_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (company_id, date)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
