package models

import "time"

// ExamSession identifies the half-day slot of an exam schedule.
type ExamSession string

const (
	SessionMorning   ExamSession = "morning"
	SessionAfternoon ExamSession = "afternoon"
	// SessionNone is used when an archived registration was never assigned
	// to a session.
	SessionNone ExamSession = "no_session"
)

// ScheduleStatus tracks the lifecycle of an exam schedule.
type ScheduleStatus string

const (
	ScheduleStatusOpen   ScheduleStatus = "open"
	ScheduleStatusClosed ScheduleStatus = "closed"
)

// ExamSchedule represents a single exam sitting on a calendar date.
type ExamSchedule struct {
	ID                   string         `db:"id" json:"id"`
	ExamDate             string         `db:"exam_date" json:"exam_date"`
	Session              ExamSession    `db:"session" json:"session"`
	StartTime            string         `db:"start_time" json:"start_time"`
	EndTime              string         `db:"end_time" json:"end_time"`
	MaxCapacity          int            `db:"max_capacity" json:"max_capacity"`
	CurrentRegistrations int            `db:"current_registrations" json:"current_registrations"`
	Status               ScheduleStatus `db:"status" json:"status"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter narrows closed-schedule listings.
type ScheduleFilter struct {
	Query   string
	Session string
}
