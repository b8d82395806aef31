package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// DateLayout is the storage format of session_date.
const DateLayout = "2006-01-02"

// CalendarKey is the natural key of a calendar session.
type CalendarKey struct {
	UserID    string
	AthleteID string
	PlanID    string
	Date      time.Time
	Order     int
}

// KeyOf returns the natural key of s.
func KeyOf(s *domain.CalendarSession) CalendarKey {
	return CalendarKey{UserID: s.UserID, AthleteID: s.AthleteID, PlanID: s.PlanID, Date: s.Date, Order: s.Order}
}

// PlanSummary describes one persisted plan.
type PlanSummary struct {
	PlanID          string
	Sessions        int
	FirstDate       time.Time
	LastDate        time.Time
	TotalDistanceMi float64
}

type CalendarRepo interface {
	FindByKey(ctx context.Context, key CalendarKey) (*domain.CalendarSession, error)
	Insert(ctx context.Context, s *domain.CalendarSession) error
	Update(ctx context.Context, s *domain.CalendarSession) error
	ListByPlan(ctx context.Context, id domain.Identity, planID string) ([]*domain.CalendarSession, error)
	ListPlans(ctx context.Context, id domain.Identity) ([]PlanSummary, error)
}

// calendarColumns is the canonical SELECT column list for calendar_sessions.
const calendarColumns = `id, user_id, athlete_id, plan_id, session_date, session_order,
		week_number, day_index, phase, title, notes, distance_mi, duration_min,
		intensity, tags, template_id, session_type, structure_json, source,
		created_at, updated_at`

// SQLCalendarRepo implements CalendarRepo on SQLite or Postgres. The
// DBTX must already be bound to its dialect.
type SQLCalendarRepo struct {
	db db.DBTX
}

// NewCalendarRepo creates a new SQLCalendarRepo.
func NewCalendarRepo(conn db.DBTX) *SQLCalendarRepo {
	return &SQLCalendarRepo{db: conn}
}

func (r *SQLCalendarRepo) FindByKey(ctx context.Context, key CalendarKey) (*domain.CalendarSession, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_sessions
		WHERE user_id = ? AND athlete_id = ? AND plan_id = ? AND session_date = ? AND session_order = ?`
	row := r.db.QueryRowContext(ctx, query,
		key.UserID, key.AthleteID, key.PlanID, key.Date.Format(DateLayout), key.Order)
	s, err := scanCalendarSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("calendar session: %w", ErrNotFound)
	}
	return s, err
}

func (r *SQLCalendarRepo) Insert(ctx context.Context, s *domain.CalendarSession) error {
	tags, err := json.Marshal(nonNil(s.Tags))
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	query := `INSERT INTO calendar_sessions (` + calendarColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.AthleteID,
		s.PlanID,
		s.Date.Format(DateLayout),
		s.Order,
		s.WeekNumber,
		s.DayIndex,
		string(s.Phase),
		s.Title,
		s.Notes,
		s.DistanceMi,
		s.DurationMin,
		s.Intensity,
		string(tags),
		s.TemplateID,
		s.SessionType,
		structureOrEmpty(s.StructureJSON),
		string(s.Source),
		s.CreatedAt.UTC().Format(time.RFC3339),
		s.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("inserting calendar session %s: %w", s.Date.Format(DateLayout), ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("inserting calendar session: %w", err)
	}
	return nil
}

// Update overwrites the content fields of the session with s.ID. The key
// columns and created_at are left as stored.
func (r *SQLCalendarRepo) Update(ctx context.Context, s *domain.CalendarSession) error {
	tags, err := json.Marshal(nonNil(s.Tags))
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	query := `UPDATE calendar_sessions SET
		week_number = ?, day_index = ?, phase = ?, title = ?, notes = ?,
		distance_mi = ?, duration_min = ?, intensity = ?, tags = ?,
		template_id = ?, session_type = ?, structure_json = ?, source = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.WeekNumber,
		s.DayIndex,
		string(s.Phase),
		s.Title,
		s.Notes,
		s.DistanceMi,
		s.DurationMin,
		s.Intensity,
		string(tags),
		s.TemplateID,
		s.SessionType,
		structureOrEmpty(s.StructureJSON),
		string(s.Source),
		s.UpdatedAt.UTC().Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating calendar session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating calendar session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("calendar session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLCalendarRepo) ListByPlan(ctx context.Context, id domain.Identity, planID string) ([]*domain.CalendarSession, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_sessions
		WHERE user_id = ? AND athlete_id = ? AND plan_id = ?
		ORDER BY session_date, session_order`
	rows, err := r.db.QueryContext(ctx, query, id.UserID, id.AthleteID, planID)
	if err != nil {
		return nil, fmt.Errorf("listing calendar sessions by plan: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.CalendarSession
	for rows.Next() {
		s, err := scanCalendarSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating calendar sessions: %w", err)
	}
	return sessions, nil
}

func (r *SQLCalendarRepo) ListPlans(ctx context.Context, id domain.Identity) ([]PlanSummary, error) {
	query := `SELECT plan_id, COUNT(*), MIN(session_date), MAX(session_date), SUM(distance_mi)
		FROM calendar_sessions
		WHERE user_id = ? AND athlete_id = ?
		GROUP BY plan_id
		ORDER BY MIN(session_date), plan_id`
	rows, err := r.db.QueryContext(ctx, query, id.UserID, id.AthleteID)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanSummary
	for rows.Next() {
		var p PlanSummary
		var first, last string
		if err := rows.Scan(&p.PlanID, &p.Sessions, &first, &last, &p.TotalDistanceMi); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		if p.FirstDate, err = time.Parse(DateLayout, first); err != nil {
			return nil, fmt.Errorf("parsing first date: %w", err)
		}
		if p.LastDate, err = time.Parse(DateLayout, last); err != nil {
			return nil, fmt.Errorf("parsing last date: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return plans, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalendarSession(row scanner) (*domain.CalendarSession, error) {
	var s domain.CalendarSession
	var date, phase, tags, source, createdAt, updatedAt string
	err := row.Scan(
		&s.ID, &s.UserID, &s.AthleteID, &s.PlanID, &date, &s.Order,
		&s.WeekNumber, &s.DayIndex, &phase, &s.Title, &s.Notes, &s.DistanceMi, &s.DurationMin,
		&s.Intensity, &tags, &s.TemplateID, &s.SessionType, &s.StructureJSON, &source,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning calendar session: %w", err)
	}
	s.Phase = domain.Focus(phase)
	s.Source = domain.TextSource(source)

	if s.Date, err = time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("parsing session_date: %w", err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	return &s, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func structureOrEmpty(s string) string {
	if s == "" {
		return "[]"
	}
	return s
}
