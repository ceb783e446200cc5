package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables are append-mostly: progress rows are inserted or overwritten per
// key and never deleted. Timestamps are RFC 3339 text in UTC.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS curricula (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		title      TEXT NOT NULL,
		domain     TEXT NOT NULL DEFAULT '',
		lessons    INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		data       TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS completed_lessons (
		user_id       TEXT NOT NULL,
		curriculum_id TEXT NOT NULL,
		lesson_id     TEXT NOT NULL,
		completed_at  TEXT NOT NULL,
		PRIMARY KEY (user_id, curriculum_id, lesson_id)
	)`,
	`CREATE TABLE IF NOT EXISTS exam_results (
		user_id       TEXT NOT NULL,
		curriculum_id TEXT NOT NULL,
		exam_id       TEXT NOT NULL,
		score         INTEGER NOT NULL,
		passed        INTEGER NOT NULL,
		completed_at  TEXT NOT NULL,
		answers       TEXT NOT NULL,
		PRIMARY KEY (user_id, curriculum_id, exam_id)
	)`,
	`CREATE TABLE IF NOT EXISTS video_positions (
		user_id       TEXT NOT NULL,
		curriculum_id TEXT NOT NULL,
		lesson_id     TEXT NOT NULL,
		seconds       INTEGER NOT NULL,
		updated_at    TEXT NOT NULL,
		PRIMARY KEY (user_id, curriculum_id, lesson_id)
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		sequence      INTEGER PRIMARY KEY,
		user_id       TEXT NOT NULL,
		curriculum_id TEXT NOT NULL DEFAULT '',
		lesson_id     TEXT NOT NULL DEFAULT '',
		kind          TEXT NOT NULL,
		minutes       INTEGER NOT NULL DEFAULT 0,
		timestamp     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS activities_user ON activities (user_id, curriculum_id)`,
	`CREATE TABLE IF NOT EXISTS roadmaps (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		title      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		data       TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		sequence      INTEGER PRIMARY KEY,
		timestamp     TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range tables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
