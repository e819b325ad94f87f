package dto

import (
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

// ScheduleMonthGroup buckets closed schedules for one calendar month.
type ScheduleMonthGroup struct {
	Label     string                `json:"label"`
	Year      int                   `json:"year"`
	Month     int                   `json:"month"`
	Schedules []models.ExamSchedule `json:"schedules"`
}

// ScheduleYearGroup buckets month groups for one year, newest month first.
type ScheduleYearGroup struct {
	Year   int                  `json:"year"`
	Months []ScheduleMonthGroup `json:"months"`
}

// ArchiveSessionGroup holds one session's archived registrations with the
// per-session pagination window applied.
type ArchiveSessionGroup struct {
	Session       models.ExamSession            `json:"session"`
	Registrations []models.ArchivedRegistration `json:"registrations"`
	Pagination    paging.Meta                   `json:"pagination"`
}

// ArchiveMonthGroup buckets archived registrations by month and session.
type ArchiveMonthGroup struct {
	Label    string                `json:"label"`
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Sessions []ArchiveSessionGroup `json:"sessions"`
}

// ArchiveYearGroup buckets month groups for one year, newest month first.
type ArchiveYearGroup struct {
	Year   int                 `json:"year"`
	Months []ArchiveMonthGroup `json:"months"`
}

// BulkUnarchiveRequest restores a set of archived registrations.
type BulkUnarchiveRequest struct {
	RegistrationIDs []string `json:"registration_ids" validate:"required,min=1,dive,required"`
}

// UnarchiveResult reports how many registrations were restored.
type UnarchiveResult struct {
	Restored int `json:"restored"`
}
