package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/junyours/occ-admission-sub002/internal/models"
)

// RegistrationRepository provides database access for archived registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository creates a new instance of RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, examinee_name, school_name, registration_date, assigned_exam_date, assigned_session, status, archived_at, created_at`

// ListArchived returns archived registrations matching the free-text query,
// which covers name, school, dates, session and status.
func (r *RegistrationRepository) ListArchived(ctx context.Context, query string) ([]models.ArchivedRegistration, error) {
	sqlQuery := fmt.Sprintf(`SELECT %s FROM registrations WHERE archived_at IS NOT NULL`, registrationColumns)
	var args []interface{}

	if query != "" {
		args = append(args, "%"+strings.ToLower(query)+"%")
		sqlQuery += ` AND (LOWER(examinee_name) LIKE $1 OR LOWER(school_name) LIKE $1 OR registration_date LIKE $1 OR COALESCE(assigned_exam_date, '') LIKE $1 OR COALESCE(assigned_session, '') LIKE $1 OR LOWER(status) LIKE $1)`
	}
	sqlQuery += ` ORDER BY COALESCE(assigned_exam_date, registration_date) DESC, examinee_name ASC`

	var registrations []models.ArchivedRegistration
	if err := r.db.SelectContext(ctx, &registrations, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("list archived registrations: %w", err)
	}
	return registrations, nil
}

// Unarchive restores a single archived registration.
func (r *RegistrationRepository) Unarchive(ctx context.Context, id string) error {
	const query = `UPDATE registrations SET archived_at = NULL, status = 'pending' WHERE id = $1 AND archived_at IS NOT NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("unarchive registration: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkUnarchive restores the given registrations in one transaction and
// returns how many rows were actually restored.
func (r *RegistrationRepository) BulkUnarchive(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk unarchive: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE registrations SET archived_at = NULL, status = 'pending' WHERE id = ANY($1) AND archived_at IS NOT NULL`
	result, err := tx.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk unarchive registrations: %w", err)
	}
	restored, err := result.RowsAffected()
	if err != nil {
		restored = 0
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk unarchive: %w", err)
	}
	return int(restored), nil
}
