// Package service orchestrates day operations: every mutation runs a
// load-mutate-save cycle against the day store under a per-date lock, with
// all guards checked before anything is written.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"turnboard/internal/config"
	"turnboard/internal/dayerr"
	"turnboard/internal/metrics"
	"turnboard/internal/models"
	"turnboard/internal/recommend"
	"turnboard/internal/store"
)

const dateFormat = "2006-01-02"

// Store is the persistence port the service drives.
type Store interface {
	Exists(date string) bool
	Load(ctx context.Context, date string) (*models.Day, error)
	Save(ctx context.Context, day *models.Day, updateIndex bool) error
	Delete(ctx context.Context, date string, secure bool) (bool, error)
	ListDates() ([]string, error)
	ListMetadata(ctx context.Context) ([]store.Metadata, error)
}

// Catalog is the read-only catalog port.
type Catalog interface {
	models.ServiceLookup
	models.SkillLookup
	Technician(alias string) (models.Technician, bool)
	ListTechnicians() ([]models.Technician, error)
}

// Notifier is told when a day has been closed. Failures are logged, never
// propagated.
type Notifier interface {
	DayClosed(ctx context.Context, date string, summary *Summary) error
}

type Service struct {
	store     Store
	catalog   Catalog
	templates *config.TemplateSource
	log       zerolog.Logger
	locks     *dateLocks
	notifiers []Notifier
}

func New(st Store, cat Catalog, templates *config.TemplateSource, logger zerolog.Logger) *Service {
	return &Service{
		store:     st,
		catalog:   cat,
		templates: templates,
		log:       logger,
		locks:     newDateLocks(),
	}
}

// AddNotifier registers a day-closed notifier.
func (s *Service) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// CreateDay creates an empty open day with checklists copied from the
// current templates. The date must not already exist.
func (s *Service) CreateDay(ctx context.Context, date string) (*models.Day, error) {
	if date == "" {
		return nil, dayerr.Invalidf("date is required")
	}
	if _, err := time.Parse(dateFormat, date); err != nil {
		return nil, dayerr.Invalidf("invalid date format: %s; expected YYYY-MM-DD", date)
	}

	defer s.locks.acquire(date)()

	if s.store.Exists(date) {
		return nil, dayerr.Conflictf("day %s already exists", date)
	}

	tmpl := s.templates.Templates()
	day := models.NewDay(date, tmpl.NewDay, tmpl.EndDay)
	if err := s.store.Save(ctx, day, true); err != nil {
		return nil, err
	}
	metrics.IncDayOp("create_day")
	return day, nil
}

// GetDay returns the full aggregate for a date.
func (s *Service) GetDay(ctx context.Context, date string) (*models.Day, error) {
	return s.store.Load(ctx, date)
}

// ListDays returns index metadata for all non-deleted days, newest first.
func (s *Service) ListDays(ctx context.Context) ([]store.Metadata, error) {
	return s.store.ListMetadata(ctx)
}

// AvailableDates lists the dates with a day file, newest first.
func (s *Service) AvailableDates() ([]string, error) {
	return s.store.ListDates()
}

// SecureDelete erases a closed day's file beyond recovery.
func (s *Service) SecureDelete(ctx context.Context, date string) error {
	defer s.locks.acquire(date)()

	day, err := s.store.Load(ctx, date)
	if err != nil {
		return err
	}
	if day.Status != models.StatusClosed {
		return dayerr.Preconditionf("can only delete closed days; current status: %s", day.Status)
	}
	deleted, err := s.store.Delete(ctx, date, true)
	if err != nil {
		return err
	}
	if !deleted {
		return dayerr.NotFoundf("day %s not found", date)
	}
	metrics.IncDayOp("secure_delete")
	return nil
}

// mutate runs fn on the loaded aggregate under the date lock and saves the
// result when fn succeeds.
func (s *Service) mutate(ctx context.Context, date, op string, fn func(day *models.Day) error) (*models.Day, error) {
	defer s.locks.acquire(date)()

	day, err := s.store.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := fn(day); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, day, true); err != nil {
		return nil, err
	}
	metrics.IncDayOp(op)
	return day, nil
}

// ClockIn activates a row for the technician. When no display name is given
// the current catalog name is snapshotted.
func (s *Service) ClockIn(ctx context.Context, date, alias, name string) (*models.Day, error) {
	if alias == "" {
		return nil, dayerr.Invalidf("tech_alias is required")
	}
	if name == "" {
		if tech, ok := s.catalog.Technician(alias); ok {
			name = tech.Name
		}
	}
	return s.mutate(ctx, date, "clock_in", func(day *models.Day) error {
		_, err := day.ClockIn(alias, name)
		return err
	})
}

func (s *Service) ClockOut(ctx context.Context, date, alias string) (*models.Day, error) {
	if alias == "" {
		return nil, dayerr.Invalidf("tech_alias is required")
	}
	return s.mutate(ctx, date, "clock_out", func(day *models.Day) error {
		_, err := day.ClockOut(alias)
		return err
	})
}

func (s *Service) ToggleBreak(ctx context.Context, date string, rowNumber int) (*models.Day, error) {
	return s.mutate(ctx, date, "toggle_break", func(day *models.Day) error {
		_, err := day.ToggleBreak(rowNumber)
		return err
	})
}

func (s *Service) DeleteRow(ctx context.Context, date string, rowNumber int) (*models.Day, error) {
	return s.mutate(ctx, date, "delete_row", func(day *models.Day) error {
		return day.DeleteRow(rowNumber)
	})
}

func (s *Service) ReorderRows(ctx context.Context, date, alias string, newPosition int) (*models.Day, error) {
	if alias == "" {
		return nil, dayerr.Invalidf("tech_alias is required")
	}
	return s.mutate(ctx, date, "reorder_rows", func(day *models.Day) error {
		return day.ReorderRows(alias, newPosition)
	})
}

// CreateSeating appends an open seating to the technician's row after
// validating the service and the technician's skill for it.
func (s *Service) CreateSeating(ctx context.Context, date, alias, serviceName string, isRequested bool) (*models.Day, error) {
	if alias == "" || serviceName == "" {
		return nil, dayerr.Invalidf("tech_alias and service are required")
	}
	svc, ok := s.catalog.Service(serviceName)
	if !ok {
		return nil, dayerr.NotFoundf("service %s not found", serviceName)
	}
	if !s.catalog.HasSkill(alias, serviceName) {
		return nil, dayerr.Preconditionf("tech %s does not have skill for service %s", alias, serviceName)
	}
	return s.mutate(ctx, date, "create_seating", func(day *models.Day) error {
		seating := models.NewSeating(serviceName, svc.ShortName, isRequested)
		_, err := day.AddSeating(alias, seating, s.catalog)
		return err
	})
}

// UpdateSeatingInput is the partial patch accepted for a seating. Nil fields
// are left untouched; a TimeNeeded of zero or less clears the override.
type UpdateSeatingInput struct {
	Value           *int
	HasValuePenalty *bool
	IsRequested     *bool
	Service         *string
	ShortName       *string
	TimeNeeded      *int
}

func (s *Service) UpdateSeating(ctx context.Context, date, seatingID string, in UpdateSeatingInput) (*models.Day, error) {
	if seatingID == "" {
		return nil, dayerr.Invalidf("seating_id is required")
	}
	return s.mutate(ctx, date, "update_seating", func(day *models.Day) error {
		upd := models.SeatingUpdate{
			Value:           in.Value,
			HasValuePenalty: in.HasValuePenalty,
			IsRequested:     in.IsRequested,
			ShortName:       in.ShortName,
		}
		if in.TimeNeeded != nil {
			if *in.TimeNeeded <= 0 {
				upd.ClearTimeNeeded = true
			} else {
				upd.TimeNeeded = in.TimeNeeded
			}
		}
		if in.Service != nil {
			row, seating := day.FindSeating(seatingID)
			if seating == nil {
				return dayerr.NotFoundf("seating %s not found", seatingID)
			}
			svc, ok := s.catalog.Service(*in.Service)
			if !ok {
				return dayerr.NotFoundf("service %s not found", *in.Service)
			}
			if !s.catalog.HasSkill(row.TechAlias, *in.Service) {
				return dayerr.Preconditionf("tech %s does not have skill for service %s", row.TechAlias, *in.Service)
			}
			upd.Service = in.Service
			upd.ServiceShortName = &svc.ShortName
		}
		_, _, err := day.UpdateSeating(seatingID, upd, s.catalog)
		return err
	})
}

func (s *Service) DeleteSeating(ctx context.Context, date, seatingID string) (*models.Day, error) {
	if seatingID == "" {
		return nil, dayerr.Invalidf("seating_id is required")
	}
	return s.mutate(ctx, date, "delete_seating", func(day *models.Day) error {
		_, err := day.DeleteSeating(seatingID, s.catalog)
		return err
	})
}

func (s *Service) ToggleChecklistItem(ctx context.Context, date, checklistType string, index int) (*models.Day, error) {
	return s.mutate(ctx, date, "toggle_checklist", func(day *models.Day) error {
		return day.ToggleChecklistItem(checklistType, index)
	})
}

// EndDay transitions an open day to ended.
func (s *Service) EndDay(ctx context.Context, date string) (*models.Day, error) {
	return s.mutate(ctx, date, "end_day", func(day *models.Day) error {
		return day.End()
	})
}

// CloseDay transitions the day to its terminal state and notifies any
// registered listeners with the final summary.
func (s *Service) CloseDay(ctx context.Context, date string) (*models.Day, error) {
	day, err := s.mutate(ctx, date, "close_day", func(day *models.Day) error {
		return day.Close(time.Now())
	})
	if err != nil {
		return nil, err
	}
	metrics.IncDayClosed()

	if len(s.notifiers) > 0 {
		summary := s.buildSummary(day)
		for _, n := range s.notifiers {
			if err := n.DayClosed(ctx, date, summary); err != nil {
				s.log.Error().Err(err).Str("date", date).Msg("day closed notification failed")
			}
		}
	}
	return day, nil
}

// Unfreeze reopens an ended day.
func (s *Service) Unfreeze(ctx context.Context, date string) (*models.Day, error) {
	return s.mutate(ctx, date, "unfreeze", func(day *models.Day) error {
		return day.Unfreeze()
	})
}

// Recommend ranks technicians for the next assignment. Read-only.
func (s *Service) Recommend(ctx context.Context, date string, opts recommend.Options) ([]recommend.Recommendation, error) {
	if opts.TurnType != "" && opts.TurnType != recommend.TurnRegular && opts.TurnType != recommend.TurnBonus {
		return nil, dayerr.Invalidf("turn_type must be %q or %q", recommend.TurnRegular, recommend.TurnBonus)
	}
	day, err := s.store.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	recs := recommend.Recommend(day, opts, s.catalog, time.Now())
	metrics.IncRecommendation(string(opts.TurnType))
	return recs, nil
}
