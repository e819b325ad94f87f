package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/junyours/occ-admission-sub002/internal/models"
)

// ScheduleRepository provides database access for exam schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, exam_date, session, start_time, end_time, max_capacity, current_registrations, status, created_at, updated_at`

// ListClosed returns closed schedules matching the filter, newest exam date
// first. The free-text query matches date, session and time columns.
func (r *ScheduleRepository) ListClosed(ctx context.Context, filter models.ScheduleFilter) ([]models.ExamSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM exam_schedules WHERE status = 'closed'`, scheduleColumns)
	var args []interface{}

	if filter.Session != "" {
		args = append(args, filter.Session)
		query += fmt.Sprintf(" AND session = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (exam_date LIKE $%d OR LOWER(session) LIKE $%d OR start_time LIKE $%d OR end_time LIKE $%d)", n, n, n, n)
	}
	query += " ORDER BY exam_date DESC, session ASC"

	var schedules []models.ExamSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list closed schedules: %w", err)
	}
	return schedules, nil
}

// ListExistingDates returns the distinct exam dates that already carry
// persisted schedules. These dates can never be deselected.
func (r *ScheduleRepository) ListExistingDates(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT exam_date FROM exam_schedules ORDER BY exam_date ASC`
	var dates []string
	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, fmt.Errorf("list existing exam dates: %w", err)
	}
	return dates, nil
}

// EnsureForDates creates morning and afternoon schedules for any selected
// dates that do not have them yet. Returns the number of rows created.
func (r *ScheduleRepository) EnsureForDates(ctx context.Context, dates []string, capacity int, sessionTimes map[models.ExamSession][2]string) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ensure schedules: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO exam_schedules (id, exam_date, session, start_time, end_time, max_capacity, current_registrations, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 'open', $7, $7)
		ON CONFLICT (exam_date, session) DO NOTHING`

	created := 0
	now := time.Now().UTC()
	for _, date := range dates {
		for session, times := range sessionTimes {
			result, err := tx.ExecContext(ctx, insert, uuid.NewString(), date, session, times[0], times[1], capacity, now)
			if err != nil {
				return 0, fmt.Errorf("ensure schedule %s/%s: %w", date, session, err)
			}
			if affected, err := result.RowsAffected(); err == nil {
				created += int(affected)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ensure schedules: %w", err)
	}
	return created, nil
}
