package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations for the dialect. Statements are
// idempotent so Migrate may run on every open.
func Migrate(db *sql.DB, d Dialect) error {
	stmts := sqliteMigrations
	if d == Postgres {
		stmts = postgresMigrations
	}
	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			// SQLite has no ADD COLUMN IF NOT EXISTS; re-running an
			// applied ALTER TABLE is expected.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS calendar_sessions (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		athlete_id    TEXT NOT NULL,
		plan_id       TEXT NOT NULL,
		session_date  TEXT NOT NULL,
		session_order INTEGER NOT NULL DEFAULT 0,
		week_number   INTEGER NOT NULL CHECK(week_number > 0),
		day_index     INTEGER NOT NULL CHECK(day_index BETWEEN 0 AND 6),
		phase         TEXT NOT NULL DEFAULT '',
		title         TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		distance_mi   REAL NOT NULL DEFAULT 0 CHECK(distance_mi >= 0),
		duration_min  REAL NOT NULL DEFAULT 0,
		intensity     TEXT NOT NULL DEFAULT '',
		tags          TEXT NOT NULL DEFAULT '[]',
		template_id   TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE(user_id, athlete_id, plan_id, session_date, session_order)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_calendar_sessions_plan
		ON calendar_sessions(user_id, athlete_id, plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_sessions_date
		ON calendar_sessions(user_id, athlete_id, session_date)`,

	`ALTER TABLE calendar_sessions ADD COLUMN session_type TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE calendar_sessions ADD COLUMN structure_json TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE calendar_sessions ADD COLUMN source TEXT NOT NULL DEFAULT ''`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS calendar_sessions (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		athlete_id    TEXT NOT NULL,
		plan_id       TEXT NOT NULL,
		session_date  TEXT NOT NULL,
		session_order INTEGER NOT NULL DEFAULT 0,
		week_number   INTEGER NOT NULL CHECK(week_number > 0),
		day_index     INTEGER NOT NULL CHECK(day_index BETWEEN 0 AND 6),
		phase         TEXT NOT NULL DEFAULT '',
		title         TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		distance_mi   DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(distance_mi >= 0),
		duration_min  DOUBLE PRECISION NOT NULL DEFAULT 0,
		intensity     TEXT NOT NULL DEFAULT '',
		tags          TEXT NOT NULL DEFAULT '[]',
		template_id   TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE(user_id, athlete_id, plan_id, session_date, session_order)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_calendar_sessions_plan
		ON calendar_sessions(user_id, athlete_id, plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_sessions_date
		ON calendar_sessions(user_id, athlete_id, session_date)`,

	`ALTER TABLE calendar_sessions ADD COLUMN IF NOT EXISTS session_type TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE calendar_sessions ADD COLUMN IF NOT EXISTS structure_json TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE calendar_sessions ADD COLUMN IF NOT EXISTS source TEXT NOT NULL DEFAULT ''`,
}
