package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/junyours/occ-admission-sub002/internal/models"
)

// PersonalityRepository provides database access for the personality test bank.
type PersonalityRepository struct {
	db *sqlx.DB
}

// NewPersonalityRepository creates a new instance of PersonalityRepository.
func NewPersonalityRepository(db *sqlx.DB) *PersonalityRepository {
	return &PersonalityRepository{db: db}
}

const personalityColumns = `id, question, dichotomy, positive_side, negative_side, created_at, updated_at`

// List returns personality questions matching the filter with total count.
func (r *PersonalityRepository) List(ctx context.Context, filter models.PersonalityQuestionFilter) ([]models.PersonalityQuestion, int, error) {
	baseQuery := `FROM personality_questions WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		baseQuery += fmt.Sprintf(" AND (LOWER(question) LIKE $%d OR LOWER(dichotomy) LIKE $%d)", len(args), len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	offset := (page - 1) * perPage

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", personalityColumns, baseQuery, perPage, offset)

	var questions []models.PersonalityQuestion
	if err := r.db.SelectContext(ctx, &questions, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list personality questions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count personality questions: %w", err)
	}

	return questions, total, nil
}

// FindByID returns a personality question by identifier.
func (r *PersonalityRepository) FindByID(ctx context.Context, id string) (*models.PersonalityQuestion, error) {
	query := fmt.Sprintf(`SELECT %s FROM personality_questions WHERE id = $1 LIMIT 1`, personalityColumns)
	var question models.PersonalityQuestion
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find personality question by id: %w", err)
	}
	return &question, nil
}

// Create inserts a new personality question.
func (r *PersonalityRepository) Create(ctx context.Context, question *models.PersonalityQuestion) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now

	const query = `INSERT INTO personality_questions (id, question, dichotomy, positive_side, negative_side, created_at, updated_at) VALUES (:id, :question, :dichotomy, :positive_side, :negative_side, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("create personality question: %w", err)
	}
	return nil
}

// Update modifies an existing personality question.
func (r *PersonalityRepository) Update(ctx context.Context, question *models.PersonalityQuestion) error {
	question.UpdatedAt = time.Now().UTC()
	const query = `UPDATE personality_questions SET question = :question, dichotomy = :dichotomy, positive_side = :positive_side, negative_side = :negative_side, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("update personality question: %w", err)
	}
	return nil
}

// Delete removes a personality question.
func (r *PersonalityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM personality_questions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete personality question: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkCreate inserts a batch of imported questions in one transaction.
func (r *PersonalityRepository) BulkCreate(ctx context.Context, questions []models.PersonalityQuestion) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO personality_questions (id, question, dichotomy, positive_side, negative_side, created_at, updated_at) VALUES (:id, :question, :dichotomy, :positive_side, :negative_side, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		if questions[i].CreatedAt.IsZero() {
			questions[i].CreatedAt = now
		}
		questions[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, questions[i]); err != nil {
			return fmt.Errorf("bulk create personality question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create: %w", err)
	}
	return nil
}
