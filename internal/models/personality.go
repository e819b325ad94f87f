package models

import "time"

// PersonalityQuestion is a dichotomy-scored item in the personality test bank.
type PersonalityQuestion struct {
	ID           string    `db:"id" json:"id"`
	Question     string    `db:"question" json:"question"`
	Dichotomy    string    `db:"dichotomy" json:"dichotomy"`
	PositiveSide string    `db:"positive_side" json:"positive_side"`
	NegativeSide string    `db:"negative_side" json:"negative_side"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PersonalityQuestionFilter narrows personality question listings.
type PersonalityQuestionFilter struct {
	Search  string
	Page    int
	PerPage int
}
