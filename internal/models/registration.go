package models

import "time"

// RegistrationStatus tracks an examinee registration lifecycle.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusApproved  RegistrationStatus = "approved"
	RegistrationStatusCompleted RegistrationStatus = "completed"
	RegistrationStatusArchived  RegistrationStatus = "archived"
)

// ArchivedRegistration is an examinee registration that has been moved out of
// the active pool. BucketDate resolves the grouping key: the assigned exam
// date when present, otherwise the registration date.
type ArchivedRegistration struct {
	ID               string             `db:"id" json:"id"`
	ExamineeName     string             `db:"examinee_name" json:"examinee_name"`
	SchoolName       string             `db:"school_name" json:"school_name"`
	RegistrationDate string             `db:"registration_date" json:"registration_date"`
	AssignedExamDate *string            `db:"assigned_exam_date" json:"assigned_exam_date,omitempty"`
	AssignedSession  *ExamSession       `db:"assigned_session" json:"assigned_session,omitempty"`
	Status           RegistrationStatus `db:"status" json:"status"`
	ArchivedAt       *time.Time         `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
}

// BucketDate returns the date used for year/month grouping.
func (r ArchivedRegistration) BucketDate() string {
	if r.AssignedExamDate != nil && *r.AssignedExamDate != "" {
		return *r.AssignedExamDate
	}
	return r.RegistrationDate
}

// BucketSession returns the session used for grouping, SessionNone when the
// registration was never assigned one.
func (r ArchivedRegistration) BucketSession() ExamSession {
	if r.AssignedSession != nil && *r.AssignedSession != "" {
		return *r.AssignedSession
	}
	return SessionNone
}

// ArchiveFilter narrows archived registration listings.
type ArchiveFilter struct {
	Query   string
	Page    int
	PerPage int
}
