package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db, SQLite))
	require.NoError(t, Migrate(db, SQLite))
}

func TestMigrate_CreatesTableAndIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, name := range []string{"calendar_sessions", "idx_calendar_sessions_plan", "idx_calendar_sessions_date"} {
		var got string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE name = ?`, name).Scan(&got)
		require.NoError(t, err, "%s should exist", name)
		assert.Equal(t, name, got)
	}
}

const insertSession = `INSERT INTO calendar_sessions
	(id, user_id, athlete_id, plan_id, session_date, session_order, week_number, day_index, title, created_at, updated_at)
	VALUES (?, 'u', 'a', 'p', '2026-03-02', ?, 1, 0, 't', 'now', 'now')`

func TestMigrate_UniqueCalendarKey(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(insertSession, "s1", 0)
	require.NoError(t, err)
	_, err = db.Exec(insertSession, "s2", 1)
	require.NoError(t, err, "a different order is a different slot")

	_, err = db.Exec(insertSession, "s3", 0)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestMigrate_CheckConstraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO calendar_sessions
		(id, user_id, athlete_id, plan_id, session_date, week_number, day_index, title, created_at, updated_at)
		VALUES ('x', 'u', 'a', 'p', '2026-03-02', 1, 7, 't', 'now', 'now')`)
	assert.Error(t, err, "day_index must be 0-6")

	_, err = db.Exec(`INSERT INTO calendar_sessions
		(id, user_id, athlete_id, plan_id, session_date, week_number, day_index, title, distance_mi, created_at, updated_at)
		VALUES ('y', 'u', 'a', 'p', '2026-03-02', 1, 0, 't', -1, 'now', 'now')`)
	assert.Error(t, err, "distance must be non-negative")
}

// TestMigrate_UpgradePath_AddsLaterColumns opens a database created before
// session_type, structure_json and source existed and checks that existing
// rows survive with defaults.
func TestMigrate_UpgradePath_AddsLaterColumns(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(sqliteMigrations[0])
	require.NoError(t, err)
	_, err = db.Exec(insertSession, "legacy", 0)
	require.NoError(t, err)

	require.NoError(t, Migrate(db, SQLite))

	var sessionType, structure, source string
	err = db.QueryRow(`SELECT session_type, structure_json, source FROM calendar_sessions WHERE id = 'legacy'`).
		Scan(&sessionType, &structure, &source)
	require.NoError(t, err)
	assert.Equal(t, "", sessionType)
	assert.Equal(t, "[]", structure)
	assert.Equal(t, "", source)
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM t WHERE a = ? AND b = '?' AND c IN (?, ?)`
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, `SELECT id FROM t WHERE a = $1 AND b = '?' AND c IN ($2, $3)`, Postgres.Rebind(q))
	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(sql.ErrNoRows))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(t.Context(), "oracle", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown db driver "oracle"`)
}
