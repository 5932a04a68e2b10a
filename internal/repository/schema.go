package repository

import (
	"context"
	"database/sql"
)

// Instants are stored as canonical UTC text (2006-01-02T15:04:05Z) rather
// than timestamptz: the schedule queue compares raw strings, and jobs echo
// the upstream service's own date strings back on removal.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS videos (
		video_id TEXT PRIMARY KEY,
		caption TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT DEFAULT 'available',
		reusable BOOLEAN DEFAULT FALSE,
		created_at TEXT,
		scheduled_at TEXT,
		posted_at TEXT,
		post_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		platforms TEXT NOT NULL,
		created_at TEXT,
		is_ai BOOLEAN DEFAULT FALSE,
		autoposting_properties TEXT,
		last_upload_time TEXT,
		scheduled_times TEXT,
		next_upload_time TEXT,
		UNIQUE (user_id, username)
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		group_name TEXT NOT NULL,
		account_usernames TEXT NOT NULL,
		created_at TEXT,
		UNIQUE (user_id, group_name)
	)`,
	`CREATE TABLE IF NOT EXISTS group_videos (
		id BIGSERIAL PRIMARY KEY,
		group_id BIGINT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
		video_id TEXT NOT NULL,
		added_at TEXT,
		UNIQUE (group_id, video_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_jobs (
		id BIGSERIAL PRIMARY KEY,
		job_id TEXT UNIQUE NOT NULL,
		video_id TEXT NOT NULL,
		account_username TEXT NOT NULL,
		user_id TEXT NOT NULL,
		scheduled_date TEXT NOT NULL,
		queue_key TEXT DEFAULT '',
		status TEXT DEFAULT 'pending',
		is_async BOOLEAN DEFAULT FALSE,
		platform_post_url TEXT,
		created_at TEXT,
		completed_at TEXT
	)`,
}

func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
