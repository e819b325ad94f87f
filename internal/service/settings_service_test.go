package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type mockSettingsRepo struct {
	stored *models.RegistrationSettings
}

func (m *mockSettingsRepo) Get(ctx context.Context) (*models.RegistrationSettings, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.stored
	return &cp, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, settings *models.RegistrationSettings) error {
	cp := *settings
	m.stored = &cp
	return nil
}

type mockScheduleWriter struct {
	existing     []string
	ensured      [][]string
	createdCount int
}

func (m *mockScheduleWriter) ListExistingDates(ctx context.Context) ([]string, error) {
	return m.existing, nil
}

func (m *mockScheduleWriter) EnsureForDates(ctx context.Context, dates []string, capacity int, sessionTimes map[models.ExamSession][2]string) (int, error) {
	m.ensured = append(m.ensured, dates)
	return m.createdCount, nil
}

// 2025-03 facts: the 1st and 2nd are a weekend; the 3rd through 7th are
// weekdays.
func newSettingsFixture() (*SettingsService, *mockSettingsRepo, *mockScheduleWriter) {
	repo := &mockSettingsRepo{stored: &models.RegistrationSettings{
		ID:                "cfg",
		AcademicYear:      "2025-2026",
		Semester:          "1st",
		ExamStartDate:     "2025-03-01",
		ExamEndDate:       "2025-03-07",
		SelectedExamDates: pq.StringArray{"2025-03-03"},
	}}
	schedules := &mockScheduleWriter{existing: []string{"2025-03-03"}}
	svc := NewSettingsService(repo, schedules, nil, nil, nil, SettingsConfig{
		DefaultSessionCap:  30,
		MorningStartTime:   "08:00",
		MorningEndTime:     "11:00",
		AfternoonStartTime: "13:00",
		AfternoonEndTime:   "16:00",
	}, nil)
	return svc, repo, schedules
}

func TestSettingsServiceGetBuildsCalendar(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	view, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-03"}, view.ExistingExamDates)
	require.Len(t, view.Calendar, 1)
	assert.Equal(t, 3, view.Calendar[0].Month)
	assert.Len(t, view.Calendar[0].Cells, 7)
}

func TestSettingsServiceToggleAddsWeekday(t *testing.T) {
	svc, repo, _ := newSettingsFixture()

	view, err := svc.ToggleDate(context.Background(), "u1", dto.ToggleDateRequest{Date: "2025-03-04"})
	require.NoError(t, err)
	assert.Contains(t, []string(view.Settings.SelectedExamDates), "2025-03-04")
	assert.Contains(t, []string(repo.stored.SelectedExamDates), "2025-03-03")
}

func TestSettingsServiceToggleRejectsWeekend(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	_, err := svc.ToggleDate(context.Background(), "u1", dto.ToggleDateRequest{Date: "2025-03-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWeekendDate.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceToggleRejectsOutOfRange(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	_, err := svc.ToggleDate(context.Background(), "u1", dto.ToggleDateRequest{Date: "2025-04-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDateOutOfRange.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceToggleCannotRemoveExistingDate(t *testing.T) {
	svc, repo, _ := newSettingsFixture()

	_, err := svc.ToggleDate(context.Background(), "u1", dto.ToggleDateRequest{Date: "2025-03-03"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDateLocked.Code, appErrors.FromError(err).Code)
	assert.Contains(t, []string(repo.stored.SelectedExamDates), "2025-03-03")
}

func TestSettingsServiceBulkSelectWeekdaysSkipsWeekend(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	view, err := svc.BulkSelect(context.Background(), "u1", dto.BulkSelectRequest{Selection: dto.SelectionWeekdays})
	require.NoError(t, err)
	selected := []string(view.Settings.SelectedExamDates)
	assert.Equal(t, []string{"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07"}, selected)
}

func TestSettingsServiceBulkClearPreservesExistingDates(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	view, err := svc.BulkSelect(context.Background(), "u1", dto.BulkSelectRequest{Selection: dto.SelectionClear})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-03"}, []string(view.Settings.SelectedExamDates))
}

func TestSettingsServiceUpdateRejectsDroppingExistingDate(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	_, err := svc.Update(context.Background(), "u1", dto.UpdateSettingsRequest{
		AcademicYear:      "2025-2026",
		Semester:          "1st",
		ExamStartDate:     "2025-03-01",
		ExamEndDate:       "2025-03-07",
		SelectedExamDates: []string{"2025-03-04"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDateLocked.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceUpdateMaterializesSchedules(t *testing.T) {
	svc, repo, schedules := newSettingsFixture()

	view, err := svc.Update(context.Background(), "u1", dto.UpdateSettingsRequest{
		RegistrationOpen:  true,
		AcademicYear:      "2025-2026",
		Semester:          "1st",
		ExamStartDate:     "2025-03-01",
		ExamEndDate:       "2025-03-07",
		SelectedExamDates: []string{"2025-03-03", "2025-03-05"},
		StudentsPerDay:    40,
	})
	require.NoError(t, err)
	assert.True(t, view.Settings.RegistrationOpen)
	assert.Equal(t, []string{"2025-03-03", "2025-03-05"}, []string(repo.stored.SelectedExamDates))
	require.NotEmpty(t, schedules.ensured)
	assert.Equal(t, []string{"2025-03-03", "2025-03-05"}, schedules.ensured[len(schedules.ensured)-1])
}

func TestSettingsServiceUpdateOpenRequiresWindowAndDates(t *testing.T) {
	svc, repo, _ := newSettingsFixture()

	_, err := svc.Update(context.Background(), "u1", dto.UpdateSettingsRequest{
		RegistrationOpen: true,
		AcademicYear:     "2025-2026",
		Semester:         "1st",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"2025-03-03"}, []string(repo.stored.SelectedExamDates))
}

func TestSettingsServiceUpdateOpenRequiresSelectedDate(t *testing.T) {
	svc, _, schedules := newSettingsFixture()
	schedules.existing = nil

	_, err := svc.Update(context.Background(), "u1", dto.UpdateSettingsRequest{
		RegistrationOpen: true,
		AcademicYear:     "2025-2026",
		Semester:         "1st",
		ExamStartDate:    "2025-03-01",
		ExamEndDate:      "2025-03-07",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceUpdateWindowChangeCannotDropExistingDate(t *testing.T) {
	svc, repo, _ := newSettingsFixture()

	// The new window excludes the locked 2025-03-03, so the save must fail
	// rather than silently drop it from the selection.
	_, err := svc.Update(context.Background(), "u1", dto.UpdateSettingsRequest{
		AcademicYear:      "2025-2026",
		Semester:          "1st",
		ExamStartDate:     "2025-03-04",
		ExamEndDate:       "2025-03-07",
		SelectedExamDates: []string{"2025-03-04"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDateLocked.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"2025-03-03"}, []string(repo.stored.SelectedExamDates))
}

func TestSettingsServiceUpdateRejectsReversedWindow(t *testing.T) {
	svc, _, _ := newSettingsFixture()

	_, err := svc.Update(context.Background(), "u1", dto.UpdateSettingsRequest{
		AcademicYear:  "2025-2026",
		Semester:      "1st",
		ExamStartDate: "2025-03-07",
		ExamEndDate:   "2025-03-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
