package dto

import (
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/pkg/daterange"
)

// UpdateSettingsRequest carries the whole registration settings object, saved
// in a single request.
type UpdateSettingsRequest struct {
	RegistrationOpen    bool     `json:"registration_open"`
	AcademicYear        string   `json:"academic_year" validate:"required"`
	Semester            string   `json:"semester" validate:"required"`
	ExamStartDate       string   `json:"exam_start_date"`
	ExamEndDate         string   `json:"exam_end_date"`
	SelectedExamDates   []string `json:"selected_exam_dates"`
	StudentsPerDay      int      `json:"students_per_day" validate:"min=0"`
	RegistrationMessage string   `json:"registration_message"`
	MorningStartTime    string   `json:"morning_start_time"`
	MorningEndTime      string   `json:"morning_end_time"`
	AfternoonStartTime  string   `json:"afternoon_start_time"`
	AfternoonEndTime    string   `json:"afternoon_end_time"`
}

// ToggleDateRequest toggles one date's membership in the selection.
type ToggleDateRequest struct {
	Date string `json:"date" validate:"required"`
}

// Bulk date selection modes.
const (
	SelectionAll      = "all"
	SelectionWeekdays = "weekdays"
	SelectionClear    = "clear"
)

// BulkSelectRequest applies one of the bulk date selectors.
type BulkSelectRequest struct {
	Selection string `json:"selection" validate:"required,oneof=all weekdays clear"`
}

// SettingsView bundles the stored settings with the derived calendar layout
// and the dates that already carry persisted schedules.
type SettingsView struct {
	Settings          models.RegistrationSettings `json:"settings"`
	ExistingExamDates []string                    `json:"existing_exam_dates"`
	Calendar          []daterange.MonthLayout     `json:"calendar"`
}
