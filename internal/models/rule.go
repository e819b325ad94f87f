package models

import "time"

// RecommendationRule maps a personality type score band to a recommended
// course for a given academic year.
type RecommendationRule struct {
	ID                string    `db:"id" json:"id"`
	PersonalityType   string    `db:"personality_type" json:"personality_type"`
	MinScore          int       `db:"min_score" json:"min_score"`
	MaxScore          int       `db:"max_score" json:"max_score"`
	RecommendedCourse string    `db:"recommended_course" json:"recommended_course"`
	AcademicYear      string    `db:"academic_year" json:"academic_year"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Course is an offered program with an optional passing-rate threshold used
// by the compatibility filter.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PassingRate *int      `db:"passing_rate" json:"passing_rate,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RuleFilter narrows recommendation rule listings.
type RuleFilter struct {
	PersonalityType string
	AcademicYear    string
}
