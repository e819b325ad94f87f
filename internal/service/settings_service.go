package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/pkg/daterange"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.RegistrationSettings, error)
	Upsert(ctx context.Context, settings *models.RegistrationSettings) error
}

type scheduleWriter interface {
	ListExistingDates(ctx context.Context) ([]string, error)
	EnsureForDates(ctx context.Context, dates []string, capacity int, sessionTimes map[models.ExamSession][2]string) (int, error)
}

// SettingsConfig tunes the settings service defaults.
type SettingsConfig struct {
	DefaultSessionCap  int
	MorningStartTime   string
	MorningEndTime     string
	AfternoonStartTime string
	AfternoonEndTime   string
}

// SettingsService manages the registration window and exam date selection.
type SettingsService struct {
	repo      settingsRepository
	schedules scheduleWriter
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    SettingsConfig

	invalidate func(ctx context.Context)
}

// NewSettingsService constructs a SettingsService. The invalidate callback
// runs after any change that creates schedules, letting the closed-schedule
// cache drop stale listings.
func NewSettingsService(repo settingsRepository, schedules scheduleWriter, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config SettingsConfig, invalidate func(ctx context.Context)) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:       repo,
		schedules:  schedules,
		audit:      audit,
		validator:  validate,
		logger:     logger,
		config:     config,
		invalidate: invalidate,
	}
}

// Get returns the current settings together with the month calendar for the
// exam window and the dates that already carry persisted schedules.
func (s *SettingsService) Get(ctx context.Context) (*dto.SettingsView, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.schedules.ListExistingDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing exam dates")
	}

	window := daterange.Generate(settings.ExamStartDate, settings.ExamEndDate)
	return &dto.SettingsView{
		Settings:          *settings,
		ExistingExamDates: existing,
		Calendar:          daterange.MonthGrid(window),
	}, nil
}

// Update validates and persists the whole settings object in one request.
// Every selected date must be a weekday inside the exam window; dates that
// already carry schedules cannot be dropped. An open registration additionally
// requires a complete exam window and at least one selected date.
func (s *SettingsService) Update(ctx context.Context, actorID string, req dto.UpdateSettingsRequest) (*dto.SettingsView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	start := daterange.Normalize(req.ExamStartDate)
	end := daterange.Normalize(req.ExamEndDate)
	window := daterange.Generate(start, end)
	if (req.ExamStartDate != "" || req.ExamEndDate != "") && len(window) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam window is invalid or reversed")
	}
	inWindow := make(map[string]bool, len(window))
	for _, d := range window {
		inWindow[d] = true
	}

	selected := make([]string, 0, len(req.SelectedExamDates))
	seen := make(map[string]bool)
	for _, raw := range req.SelectedExamDates {
		date := daterange.Normalize(raw)
		if date == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid exam date %q", raw))
		}
		if daterange.IsWeekend(date) {
			return nil, appErrors.Clone(appErrors.ErrWeekendDate, fmt.Sprintf("%s falls on a weekend", date))
		}
		if !inWindow[date] {
			return nil, appErrors.Clone(appErrors.ErrDateOutOfRange, fmt.Sprintf("%s is outside the exam window", date))
		}
		if !seen[date] {
			seen[date] = true
			selected = append(selected, date)
		}
	}

	if req.RegistrationOpen {
		if start == "" || end == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "an open registration requires both exam window dates")
		}
		if len(selected) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "an open registration requires at least one selected exam date")
		}
	}

	existing, err := s.schedules.ListExistingDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing exam dates")
	}
	// Dates with persisted schedules stay selected no matter how the window
	// moves; a save that would drop one is rejected outright.
	for _, date := range existing {
		if !seen[date] {
			return nil, appErrors.Clone(appErrors.ErrDateLocked, fmt.Sprintf("%s already has persisted schedules", date))
		}
	}
	sort.Strings(selected)

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings.RegistrationOpen = req.RegistrationOpen
	settings.AcademicYear = req.AcademicYear
	settings.Semester = req.Semester
	settings.ExamStartDate = start
	settings.ExamEndDate = end
	settings.SelectedExamDates = pq.StringArray(selected)
	settings.StudentsPerDay = req.StudentsPerDay
	settings.RegistrationMessage = req.RegistrationMessage
	settings.MorningStartTime = orDefault(req.MorningStartTime, s.config.MorningStartTime)
	settings.MorningEndTime = orDefault(req.MorningEndTime, s.config.MorningEndTime)
	settings.AfternoonStartTime = orDefault(req.AfternoonStartTime, s.config.AfternoonStartTime)
	settings.AfternoonEndTime = orDefault(req.AfternoonEndTime, s.config.AfternoonEndTime)
	if actorID != "" {
		settings.UpdatedBy = &actorID
	}

	if err := s.persist(ctx, actorID, settings); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// ToggleDate adds or removes one date from the selection. Weekend dates are
// rejected, dates outside the exam window are rejected, and dates that
// already carry persisted schedules are add-only.
func (s *SettingsService) ToggleDate(ctx context.Context, actorID string, req dto.ToggleDateRequest) (*dto.SettingsView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}

	date := daterange.Normalize(req.Date)
	if date == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid exam date %q", req.Date))
	}
	if daterange.IsWeekend(date) {
		return nil, appErrors.Clone(appErrors.ErrWeekendDate, fmt.Sprintf("%s falls on a weekend", date))
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	window := daterange.Generate(settings.ExamStartDate, settings.ExamEndDate)
	found := false
	for _, d := range window {
		if d == date {
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrDateOutOfRange, fmt.Sprintf("%s is outside the exam window", date))
	}

	selected := make([]string, 0, len(settings.SelectedExamDates)+1)
	removed := false
	for _, d := range settings.SelectedExamDates {
		if d == date {
			removed = true
			continue
		}
		selected = append(selected, d)
	}
	if removed {
		existing, err := s.schedules.ListExistingDates(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing exam dates")
		}
		for _, d := range existing {
			if d == date {
				return nil, appErrors.Clone(appErrors.ErrDateLocked, fmt.Sprintf("%s already has persisted schedules", date))
			}
		}
	} else {
		selected = append(selected, date)
		sort.Strings(selected)
	}

	settings.SelectedExamDates = pq.StringArray(selected)
	if err := s.persist(ctx, actorID, settings); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// BulkSelect applies one of the bulk date selectors. Weekend dates never
// enter the selection and existing persisted dates always survive a clear.
func (s *SettingsService) BulkSelect(ctx context.Context, actorID string, req dto.BulkSelectRequest) (*dto.SettingsView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk selection payload")
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	window := daterange.Generate(settings.ExamStartDate, settings.ExamEndDate)
	existing, err := s.schedules.ListExistingDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing exam dates")
	}

	var selected []string
	switch req.Selection {
	case dto.SelectionAll, dto.SelectionWeekdays:
		selected = daterange.Weekdays(window)
	case dto.SelectionClear:
		selected = nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown selection %q", req.Selection))
	}

	inWindow := make(map[string]bool, len(window))
	for _, d := range window {
		inWindow[d] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, d := range selected {
		seen[d] = true
	}
	for _, d := range existing {
		if inWindow[d] && !seen[d] {
			seen[d] = true
			selected = append(selected, d)
		}
	}
	sort.Strings(selected)

	settings.SelectedExamDates = pq.StringArray(selected)
	if err := s.persist(ctx, actorID, settings); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *SettingsService) loadSettings(ctx context.Context) (*models.RegistrationSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.RegistrationSettings{
				MorningStartTime:   s.config.MorningStartTime,
				MorningEndTime:     s.config.MorningEndTime,
				AfternoonStartTime: s.config.AfternoonStartTime,
				AfternoonEndTime:   s.config.AfternoonEndTime,
				SelectedExamDates:  pq.StringArray{},
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration settings")
	}
	return settings, nil
}

// persist saves the settings row, materializes schedules for every selected
// date and records the audit trail.
func (s *SettingsService) persist(ctx context.Context, actorID string, settings *models.RegistrationSettings) error {
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration settings")
	}

	capacity := settings.StudentsPerDay
	if capacity <= 0 {
		capacity = s.config.DefaultSessionCap
	}
	sessionTimes := map[models.ExamSession][2]string{
		models.SessionMorning:   {settings.MorningStartTime, settings.MorningEndTime},
		models.SessionAfternoon: {settings.AfternoonStartTime, settings.AfternoonEndTime},
	}
	created, err := s.schedules.EnsureForDates(ctx, settings.SelectedExamDates, capacity, sessionTimes)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize exam schedules")
	}
	if created > 0 && s.invalidate != nil {
		s.invalidate(ctx)
	}

	if s.audit != nil {
		log := &models.AuditLog{
			Action:    models.AuditActionSettingsUpdate,
			Resource:  "registration_settings",
			NewValues: []byte(fmt.Sprintf(`{"selected_dates":%d,"schedules_created":%d}`, len(settings.SelectedExamDates), created)),
		}
		if actorID != "" {
			log.UserID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record settings audit log", zap.Error(err))
		}
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
