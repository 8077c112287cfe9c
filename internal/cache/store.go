// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists one research record per task in a local SQLite
// database. The task text is the unique key; writes are single-transaction
// upserts, so a repeated task replaces its earlier record instead of adding
// a second one.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

// Store manages the research cache database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at cfg.Path(), creating the data
// directory and schema when missing.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path()+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS research_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task TEXT NOT NULL UNIQUE,
		hypotheses TEXT,
		web_research TEXT,
		analysis TEXT,
		reasoning TEXT,
		evaluation TEXT,
		summary TEXT,
		conclusion TEXT,
		updated_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

const selectRecord = `SELECT task, hypotheses, web_research, analysis, reasoning,
	evaluation, summary, conclusion FROM research_data`

// Get looks up the record for task by exact match. The boolean is false
// when no record exists.
func (s *Store) Get(ctx context.Context, task string) (types.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+` WHERE task = ?`, task)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, fmt.Errorf("looking up task: %w", err)
	}
	return rec, true, nil
}

// Put inserts rec, or replaces every field of the existing record with the
// same task, in a single transaction.
func (s *Store) Put(ctx context.Context, rec types.Record) error {
	web := rec.WebResearch
	if web == nil {
		web = []types.WebResult{}
	}
	webJSON, err := json.Marshal(web)
	if err != nil {
		return fmt.Errorf("marshaling web research: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO research_data
			(task, hypotheses, web_research, analysis, reasoning, evaluation, summary, conclusion, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(task) DO UPDATE SET
			hypotheses=excluded.hypotheses, web_research=excluded.web_research,
			analysis=excluded.analysis, reasoning=excluded.reasoning,
			evaluation=excluded.evaluation, summary=excluded.summary,
			conclusion=excluded.conclusion, updated_at=excluded.updated_at`,
		rec.Task,
		types.JoinLines(rec.Hypotheses),
		string(webJSON),
		types.JoinLines(rec.Analysis),
		types.JoinLines(rec.Reasoning),
		types.JoinLines(rec.Evaluation),
		types.JoinLines(rec.Summary),
		types.JoinLines(rec.Conclusion),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// ListTasks returns every cached task in storage order. The slice is never nil.
func (s *Store) ListTasks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task FROM research_data ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []string{}
	for rows.Next() {
		var task string
		if err := rows.Scan(&task); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// All returns every cached record in storage order.
func (s *Store) All(ctx context.Context) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (types.Record, error) {
	var (
		rec        types.Record
		hypotheses sql.NullString
		webJSON    sql.NullString
		analysis   sql.NullString
		reasoning  sql.NullString
		evaluation sql.NullString
		summary    sql.NullString
		conclusion sql.NullString
	)
	if err := row.Scan(&rec.Task, &hypotheses, &webJSON, &analysis, &reasoning,
		&evaluation, &summary, &conclusion); err != nil {
		return types.Record{}, err
	}

	rec.Hypotheses = types.SplitLines(hypotheses.String)
	rec.Analysis = types.SplitLines(analysis.String)
	rec.Reasoning = types.SplitLines(reasoning.String)
	rec.Evaluation = types.SplitLines(evaluation.String)
	rec.Summary = types.SplitLines(summary.String)
	rec.Conclusion = types.SplitLines(conclusion.String)

	if webJSON.Valid && webJSON.String != "" {
		if err := json.Unmarshal([]byte(webJSON.String), &rec.WebResearch); err != nil {
			return types.Record{}, fmt.Errorf("decoding web research for %q: %w", rec.Task, err)
		}
	}
	if rec.WebResearch == nil {
		rec.WebResearch = []types.WebResult{}
	}
	return rec, nil
}
