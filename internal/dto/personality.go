package dto

// CreatePersonalityQuestionRequest is the payload for a new test item.
type CreatePersonalityQuestionRequest struct {
	Question     string `json:"question" validate:"required"`
	Dichotomy    string `json:"dichotomy" validate:"required"`
	PositiveSide string `json:"positive_side" validate:"required"`
	NegativeSide string `json:"negative_side" validate:"required"`
}

// UpdatePersonalityQuestionRequest mirrors the create payload; the same form
// serves both paths.
type UpdatePersonalityQuestionRequest = CreatePersonalityQuestionRequest

// ImportSummary reports the outcome of a CSV bulk import.
type ImportSummary struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
