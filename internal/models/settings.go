package models

import (
	"time"

	"github.com/lib/pq"
)

// RegistrationSettings is the single-row configuration governing the exam
// registration window and selectable exam dates.
type RegistrationSettings struct {
	ID                  string         `db:"id" json:"id"`
	RegistrationOpen    bool           `db:"registration_open" json:"registration_open"`
	AcademicYear        string         `db:"academic_year" json:"academic_year"`
	Semester            string         `db:"semester" json:"semester"`
	ExamStartDate       string         `db:"exam_start_date" json:"exam_start_date"`
	ExamEndDate         string         `db:"exam_end_date" json:"exam_end_date"`
	SelectedExamDates   pq.StringArray `db:"selected_exam_dates" json:"selected_exam_dates"`
	StudentsPerDay      int            `db:"students_per_day" json:"students_per_day"`
	RegistrationMessage string         `db:"registration_message" json:"registration_message"`
	MorningStartTime    string         `db:"morning_start_time" json:"morning_start_time"`
	MorningEndTime      string         `db:"morning_end_time" json:"morning_end_time"`
	AfternoonStartTime  string         `db:"afternoon_start_time" json:"afternoon_start_time"`
	AfternoonEndTime    string         `db:"afternoon_end_time" json:"afternoon_end_time"`
	UpdatedBy           *string        `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}
