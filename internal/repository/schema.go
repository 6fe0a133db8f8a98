package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the idempotent DDL for the feedback store.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS service_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS rating_criteria (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL UNIQUE COLLATE NOCASE,
		is_required INTEGER NOT NULL DEFAULT 1,
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS service_point_criteria (
		service_point_id INTEGER NOT NULL REFERENCES service_points(id),
		rating_criteria_id INTEGER NOT NULL REFERENCES rating_criteria(id),
		PRIMARY KEY (service_point_id, rating_criteria_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		submission_key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		company_id TEXT NOT NULL,
		branch_id TEXT NOT NULL DEFAULT '',
		user_path TEXT NOT NULL,
		sms_status TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id TEXT NOT NULL,
		branch_id TEXT NOT NULL DEFAULT '',
		service_point TEXT NOT NULL,
		rating_criteria_id INTEGER NOT NULL REFERENCES rating_criteria(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		score REAL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_company_branch ON ratings (company_id, branch_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings (user_id)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id TEXT NOT NULL,
		branch_id TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL REFERENCES users(id),
		rating_id INTEGER REFERENCES ratings(id),
		comments TEXT,
		suggestions TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS other_ratings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id TEXT NOT NULL,
		branch_id TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL REFERENCES users(id),
		criteria TEXT NOT NULL,
		ratings INTEGER NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	// one feedback and one other-criterion row per submission
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_feedback_user ON feedback (user_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_other_ratings_user ON other_ratings (user_id)`,
}

// Migrate applies Schema to db. Every statement is safe to re-run.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
