package dto

import "time"

// CreateEvaluatorRequest is the payload for registering an evaluator account.
type CreateEvaluatorRequest struct {
	Username             string `json:"username" validate:"required,min=3"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	Name                 string `json:"name" validate:"required"`
	Department           string `json:"department" validate:"required"`
}

// EvaluatorItem is an evaluator account exposed via API.
type EvaluatorItem struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}
