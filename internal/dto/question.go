package dto

// SaveQuestionRequest is the payload for creating or updating an exam
// question. Option A is mandatory; the correct answer must name an option
// that has content.
type SaveQuestionRequest struct {
	Question      string  `json:"question" validate:"required"`
	Option1       string  `json:"option1" validate:"required"`
	Option2       string  `json:"option2"`
	Option3       string  `json:"option3"`
	Option4       string  `json:"option4"`
	Option5       string  `json:"option5"`
	CorrectAnswer string  `json:"correct_answer" validate:"required,oneof=A B C D E"`
	Category      string  `json:"category" validate:"required"`
	Direction     *string `json:"direction"`
}

// BulkArchiveRequest archives a set of questions in one request.
type BulkArchiveRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1,dive,required"`
}

// ArchiveResult reports how many questions were archived.
type ArchiveResult struct {
	Archived int `json:"archived"`
}

// QuestionLocation answers a deep-link lookup: the page that contains the
// question under the current filter, or Found=false when absent.
type QuestionLocation struct {
	QuestionID string `json:"question_id"`
	Found      bool   `json:"found"`
	Page       int    `json:"page"`
}

// QuestionImageURL carries a signed URL for a stored question image.
type QuestionImageURL struct {
	Field string `json:"field"`
	URL   string `json:"url"`
}
