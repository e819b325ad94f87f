package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/junyours/occ-admission-sub002/internal/models"
)

// QuestionRepository provides database access for the exam question bank.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new instance of QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, question, option1, option2, option3, option4, option5, correct_answer, category, direction, image, option1_image, option2_image, option3_image, option4_image, option5_image, archived, created_at, updated_at`

func questionFilterClause(filter models.QuestionFilter) (string, []interface{}) {
	clause := `FROM questions WHERE archived = FALSE`
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		clause += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		clause += fmt.Sprintf(" AND LOWER(question) LIKE $%d", len(args))
	}
	return clause, args
}

func questionOrderClause(filter models.QuestionFilter) string {
	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at": true,
		"category":   true,
		"question":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, sortOrder)
}

// List returns questions based on filters with total count. A non-positive
// per-page returns the full filtered set.
func (r *QuestionRepository) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int, error) {
	baseQuery, args := questionFilterClause(filter)
	listQuery := fmt.Sprintf("SELECT %s %s%s", questionColumns, baseQuery, questionOrderClause(filter))

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		listQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PerPage, (page-1)*filter.PerPage)
	}

	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	return questions, total, nil
}

// ListIDs returns the ordered question IDs for the filter, used to locate a
// deep-linked question's page.
func (r *QuestionRepository) ListIDs(ctx context.Context, filter models.QuestionFilter) ([]string, error) {
	baseQuery, args := questionFilterClause(filter)
	query := fmt.Sprintf("SELECT id %s%s", baseQuery, questionOrderClause(filter))

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	return ids, nil
}

// CountByCategory returns the number of active questions in a category.
// An empty category counts the whole bank.
func (r *QuestionRepository) CountByCategory(ctx context.Context, category string) (int, error) {
	baseQuery, args := questionFilterClause(models.QuestionFilter{Category: category})
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", baseQuery), args...); err != nil {
		return 0, fmt.Errorf("count questions by category: %w", err)
	}
	return total, nil
}

// FindByID returns a question by identifier.
func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id = $1 LIMIT 1`, questionColumns)
	var question models.Question
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find question by id: %w", err)
	}
	return &question, nil
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now

	const query = `INSERT INTO questions (id, question, option1, option2, option3, option4, option5, correct_answer, category, direction, image, option1_image, option2_image, option3_image, option4_image, option5_image, archived, created_at, updated_at)
		VALUES (:id, :question, :option1, :option2, :option3, :option4, :option5, :correct_answer, :category, :direction, :image, :option1_image, :option2_image, :option3_image, :option4_image, :option5_image, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// Update modifies an existing question.
func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) error {
	question.UpdatedAt = time.Now().UTC()
	const query = `UPDATE questions SET question = :question, option1 = :option1, option2 = :option2, option3 = :option3, option4 = :option4, option5 = :option5, correct_answer = :correct_answer, category = :category, direction = :direction, image = :image, option1_image = :option1_image, option2_image = :option2_image, option3_image = :option3_image, option4_image = :option4_image, option5_image = :option5_image, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

// Archive marks a single question archived.
func (r *QuestionRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE questions SET archived = TRUE, updated_at = $2 WHERE id = $1 AND archived = FALSE`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archive question: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkArchive marks the given questions archived and returns the affected count.
func (r *QuestionRepository) BulkArchive(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `UPDATE questions SET archived = TRUE, updated_at = $2 WHERE id = ANY($1) AND archived = FALSE`
	result, err := r.db.ExecContext(ctx, query, pq.Array(ids), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("bulk archive questions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		affected = 0
	}
	return int(affected), nil
}

// BulkCreate inserts a batch of imported questions in one transaction.
func (r *QuestionRepository) BulkCreate(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO questions (id, question, option1, option2, option3, option4, option5, correct_answer, category, direction, image, option1_image, option2_image, option3_image, option4_image, option5_image, archived, created_at, updated_at)
		VALUES (:id, :question, :option1, :option2, :option3, :option4, :option5, :correct_answer, :category, :direction, :image, :option1_image, :option2_image, :option3_image, :option4_image, :option5_image, :archived, :created_at, :updated_at)`
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
			return fmt.Errorf("bulk create question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create: %w", err)
	}
	return nil
}

// SetImage stores a question image path on the given field.
func (r *QuestionRepository) SetImage(ctx context.Context, id, field, path string) error {
	allowed := map[string]bool{
		"image":         true,
		"option1_image": true,
		"option2_image": true,
		"option3_image": true,
		"option4_image": true,
		"option5_image": true,
	}
	if !allowed[field] {
		return fmt.Errorf("invalid image field %q", field)
	}
	query := fmt.Sprintf(`UPDATE questions SET %s = $2, updated_at = $3 WHERE id = $1`, field)
	result, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set question image: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
