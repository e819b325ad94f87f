package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/junyours/occ-admission-sub002/internal/models"
)

// RuleRepository provides database access for recommendation rules and the
// course catalog they reference.
type RuleRepository struct {
	db *sqlx.DB
}

// NewRuleRepository creates a new instance of RuleRepository.
func NewRuleRepository(db *sqlx.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `id, personality_type, min_score, max_score, recommended_course, academic_year, created_at, updated_at`

// List returns recommendation rules matching the filter.
func (r *RuleRepository) List(ctx context.Context, filter models.RuleFilter) ([]models.RecommendationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM recommendation_rules WHERE 1=1`, ruleColumns)
	var args []interface{}

	if filter.PersonalityType != "" {
		args = append(args, filter.PersonalityType)
		query += fmt.Sprintf(" AND personality_type = $%d", len(args))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		query += fmt.Sprintf(" AND academic_year = $%d", len(args))
	}
	query += " ORDER BY personality_type ASC, min_score ASC, recommended_course ASC"

	var rules []models.RecommendationRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		return nil, fmt.Errorf("list recommendation rules: %w", err)
	}
	return rules, nil
}

// FindByID returns a rule by identifier.
func (r *RuleRepository) FindByID(ctx context.Context, id string) (*models.RecommendationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM recommendation_rules WHERE id = $1 LIMIT 1`, ruleColumns)
	var rule models.RecommendationRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find rule by id: %w", err)
	}
	return &rule, nil
}

// Create inserts a new recommendation rule.
func (r *RuleRepository) Create(ctx context.Context, rule *models.RecommendationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO recommendation_rules (id, personality_type, min_score, max_score, recommended_course, academic_year, created_at, updated_at) VALUES (:id, :personality_type, :min_score, :max_score, :recommended_course, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create recommendation rule: %w", err)
	}
	return nil
}

// BulkCreate inserts a batch of rules in one transaction.
func (r *RuleRepository) BulkCreate(ctx context.Context, rules []models.RecommendationRule) error {
	if len(rules) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create rules: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO recommendation_rules (id, personality_type, min_score, max_score, recommended_course, academic_year, created_at, updated_at) VALUES (:id, :personality_type, :min_score, :max_score, :recommended_course, :academic_year, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = uuid.NewString()
		}
		if rules[i].CreatedAt.IsZero() {
			rules[i].CreatedAt = now
		}
		rules[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, rules[i]); err != nil {
			return fmt.Errorf("bulk create rule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create rules: %w", err)
	}
	return nil
}

// Update modifies an existing rule.
func (r *RuleRepository) Update(ctx context.Context, rule *models.RecommendationRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE recommendation_rules SET personality_type = :personality_type, min_score = :min_score, max_score = :max_score, recommended_course = :recommended_course, academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update recommendation rule: %w", err)
	}
	return nil
}

// Delete removes a rule.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM recommendation_rules WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete recommendation rule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByPersonalityType returns the rule count per personality type for an
// academic year.
func (r *RuleRepository) CountByPersonalityType(ctx context.Context, academicYear string) (map[string]int, error) {
	const query = `SELECT personality_type, COUNT(*) AS total FROM recommendation_rules WHERE academic_year = $1 GROUP BY personality_type`
	rows := []struct {
		PersonalityType string `db:"personality_type"`
		Total           int    `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, academicYear); err != nil {
		return nil, fmt.Errorf("count rules by personality type: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.PersonalityType] = row.Total
	}
	return counts, nil
}

// ListCourses returns the course catalog ordered by name.
func (r *RuleRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, passing_rate, created_at FROM courses ORDER BY name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
