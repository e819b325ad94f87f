package models

import "time"

// OptionLetters enumerates the answer slots of an exam question.
var OptionLetters = []string{"A", "B", "C", "D", "E"}

// Question is an item in the entrance exam question bank. Image fields hold
// relative storage paths served through signed URLs.
type Question struct {
	ID            string    `db:"id" json:"question_id"`
	Question      string    `db:"question" json:"question"`
	Option1       string    `db:"option1" json:"option1"`
	Option2       string    `db:"option2" json:"option2"`
	Option3       string    `db:"option3" json:"option3"`
	Option4       string    `db:"option4" json:"option4"`
	Option5       string    `db:"option5" json:"option5"`
	CorrectAnswer string    `db:"correct_answer" json:"correct_answer"`
	Category      string    `db:"category" json:"category"`
	Direction     *string   `db:"direction" json:"direction,omitempty"`
	Image         *string   `db:"image" json:"image,omitempty"`
	Option1Image  *string   `db:"option1_image" json:"option1_image,omitempty"`
	Option2Image  *string   `db:"option2_image" json:"option2_image,omitempty"`
	Option3Image  *string   `db:"option3_image" json:"option3_image,omitempty"`
	Option4Image  *string   `db:"option4_image" json:"option4_image,omitempty"`
	Option5Image  *string   `db:"option5_image" json:"option5_image,omitempty"`
	Archived      bool      `db:"archived" json:"archived"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Options returns the five option texts indexed by letter.
func (q Question) Options() map[string]string {
	return map[string]string{
		"A": q.Option1,
		"B": q.Option2,
		"C": q.Option3,
		"D": q.Option4,
		"E": q.Option5,
	}
}

// QuestionFilter captures the server-driven listing parameters.
type QuestionFilter struct {
	Category  string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}
