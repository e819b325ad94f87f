package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Evaluator is a scoring-staff account managed by guidance counselors.
type Evaluator struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Department   string    `db:"department" json:"department"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EvaluatorRepository provides database access for evaluator accounts.
type EvaluatorRepository struct {
	db *sqlx.DB
}

// NewEvaluatorRepository creates a new instance of EvaluatorRepository.
func NewEvaluatorRepository(db *sqlx.DB) *EvaluatorRepository {
	return &EvaluatorRepository{db: db}
}

// List returns all evaluator accounts newest first.
func (r *EvaluatorRepository) List(ctx context.Context) ([]Evaluator, error) {
	const query = `SELECT id, username, email, password_hash, name, department, created_at FROM evaluators ORDER BY created_at DESC`
	var evaluators []Evaluator
	if err := r.db.SelectContext(ctx, &evaluators, query); err != nil {
		return nil, fmt.Errorf("list evaluators: %w", err)
	}
	return evaluators, nil
}

// FindByID returns an evaluator by identifier.
func (r *EvaluatorRepository) FindByID(ctx context.Context, id string) (*Evaluator, error) {
	const query = `SELECT id, username, email, password_hash, name, department, created_at FROM evaluators WHERE id = $1 LIMIT 1`
	var evaluator Evaluator
	if err := r.db.GetContext(ctx, &evaluator, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluator by id: %w", err)
	}
	return &evaluator, nil
}

// FindByUsername returns an evaluator by username.
func (r *EvaluatorRepository) FindByUsername(ctx context.Context, username string) (*Evaluator, error) {
	const query = `SELECT id, username, email, password_hash, name, department, created_at FROM evaluators WHERE username = $1 LIMIT 1`
	var evaluator Evaluator
	if err := r.db.GetContext(ctx, &evaluator, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluator by username: %w", err)
	}
	return &evaluator, nil
}

// FindByEmail returns an evaluator by email address.
func (r *EvaluatorRepository) FindByEmail(ctx context.Context, email string) (*Evaluator, error) {
	const query = `SELECT id, username, email, password_hash, name, department, created_at FROM evaluators WHERE email = $1 LIMIT 1`
	var evaluator Evaluator
	if err := r.db.GetContext(ctx, &evaluator, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluator by email: %w", err)
	}
	return &evaluator, nil
}

// Create inserts a new evaluator account.
func (r *EvaluatorRepository) Create(ctx context.Context, evaluator *Evaluator) error {
	if evaluator.ID == "" {
		evaluator.ID = uuid.NewString()
	}
	if evaluator.CreatedAt.IsZero() {
		evaluator.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluators (id, username, email, password_hash, name, department, created_at) VALUES (:id, :username, :email, :password_hash, :name, :department, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluator); err != nil {
		return fmt.Errorf("create evaluator: %w", err)
	}
	return nil
}

// Delete removes an evaluator account.
func (r *EvaluatorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM evaluators WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete evaluator: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
