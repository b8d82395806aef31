package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

// PersistRequest is a finished plan ready for the calendar.
type PersistRequest struct {
	Context  domain.PlanContext
	Identity domain.Identity
	PlanID   string // generated when empty
	Weeks    []domain.PlannedWeek
	Now      time.Time
}

// PersistService writes planned weeks into the calendar, one transaction
// per week. Rows are matched on (user, athlete, plan, date, order), so
// writing the same plan twice updates in place.
type PersistService struct {
	uow    db.UnitOfWork
	logger *slog.Logger
}

func NewPersistService(uow db.UnitOfWork, logger *slog.Logger) *PersistService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PersistService{uow: uow, logger: logger}
}

// Persist upserts every session. A week that fails is rolled back, its
// sessions are counted as skipped and later weeks are still written.
// Only an unusable request is returned as an error.
func (s *PersistService) Persist(ctx context.Context, req PersistRequest) (domain.PersistResult, error) {
	if req.Context.Philosophy == nil {
		return domain.PersistResult{}, app.Errorf(app.ErrInvariant, "persistence requires a locked philosophy")
	}
	if req.Identity.UserID == "" || req.Identity.AthleteID == "" {
		return domain.PersistResult{}, app.Errorf(app.ErrContext, "persistence requires a user and athlete id")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Second)

	res := domain.PersistResult{PlanID: req.PlanID}
	if res.PlanID == "" {
		res.PlanID = uuid.New().String()
	}
	anchor := domain.PlanAnchor(req.Context, now)

	for _, w := range req.Weeks {
		var created, updated int
		var ids []string
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			calendar := repository.NewCalendarRepo(tx)
			for _, ps := range w.Sessions {
				row, err := calendarRow(req.Identity, res.PlanID, anchor, w, ps, now)
				if err != nil {
					return err
				}
				existing, err := calendar.FindByKey(ctx, repository.KeyOf(row))
				switch {
				case err == nil:
					row.ID = existing.ID
					row.CreatedAt = existing.CreatedAt
					if err := calendar.Update(ctx, row); err != nil {
						return fmt.Errorf("updating %s: %w", row.Date.Format(repository.DateLayout), err)
					}
					updated++
				case errors.Is(err, repository.ErrNotFound):
					if err := calendar.Insert(ctx, row); err != nil {
						return fmt.Errorf("inserting %s: %w", row.Date.Format(repository.DateLayout), err)
					}
					created++
				default:
					return err
				}
				ids = append(ids, row.ID)
			}
			return nil
		})
		if err != nil {
			res.Skipped += len(w.Sessions)
			res.Warnings = append(res.Warnings, weekWarning(w.Week, err))
			s.logger.WarnContext(ctx, "plan week not persisted",
				"plan_id", res.PlanID, "week", w.Week, "sessions", len(w.Sessions), "error", err)
			continue
		}
		res.Created += created
		res.Updated += updated
		res.SessionIDs = append(res.SessionIDs, ids...)
	}
	res.Success = len(res.Warnings) == 0
	return res, nil
}

func weekWarning(week int, err error) string {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Sprintf("week %d: concurrent write to the same calendar slot, week skipped: %v", week, err)
	}
	return fmt.Sprintf("week %d: not persisted: %v", week, err)
}

type stepRecord struct {
	Segment     string  `json:"segment"`
	Description string  `json:"description"`
	DistanceMi  float64 `json:"distance_mi"`
	DurationMin float64 `json:"duration_min"`
	Intensity   string  `json:"intensity"`
}

// calendarRow maps a planned session onto its calendar row.
func calendarRow(id domain.Identity, planID string, anchor time.Time, w domain.PlannedWeek, ps domain.PlannedSession, now time.Time) (*domain.CalendarSession, error) {
	row := &domain.CalendarSession{
		ID:            uuid.New().String(),
		UserID:        id.UserID,
		AthleteID:     id.AthleteID,
		PlanID:        planID,
		Date:          domain.SessionDate(anchor, w.Week, ps.DayIndex),
		Order:         ps.Order,
		WeekNumber:    w.Week,
		DayIndex:      ps.DayIndex,
		Phase:         w.Focus,
		DistanceMi:    ps.Distance,
		SessionType:   ps.SessionType,
		StructureJSON: "[]",
		Tags:          []string{string(ps.DayType)},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ps.Template != nil {
		row.TemplateID = ps.Template.ID
		row.Tags = append(row.Tags, ps.Template.Tags...)
	}
	if ps.Text == nil {
		row.Title = string(ps.DayType)
		return row, nil
	}

	t := ps.Text
	row.Title = t.Title
	row.Notes = t.Description
	row.DurationMin = t.Metrics.DurationMin
	row.Intensity = dominantBucket(t.Metrics)
	row.Source = t.Source
	if len(t.Structure) > 0 {
		steps := make([]stepRecord, len(t.Structure))
		for i, st := range t.Structure {
			steps[i] = stepRecord{
				Segment:     string(st.Segment),
				Description: st.Description,
				DistanceMi:  st.DistanceMi,
				DurationMin: st.DurationMin,
				Intensity:   st.Intensity,
			}
		}
		data, err := json.Marshal(steps)
		if err != nil {
			return nil, fmt.Errorf("encoding session structure: %w", err)
		}
		row.StructureJSON = string(data)
	}
	return row, nil
}

// dominantBucket is the hardest intensity bucket with any minutes.
func dominantBucket(m domain.SessionMetrics) string {
	for _, b := range []string{domain.BucketHard, domain.BucketModerate, domain.BucketEasy} {
		if m.IntensityMinutes[b] > 0 {
			return b
		}
	}
	return ""
}
