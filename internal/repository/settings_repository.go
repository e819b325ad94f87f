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

// SettingsRepository provides database access for the single registration
// settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, registration_open, academic_year, semester, exam_start_date, exam_end_date, selected_exam_dates, students_per_day, registration_message, morning_start_time, morning_end_time, afternoon_start_time, afternoon_end_time, updated_by, updated_at`

// Get returns the stored registration settings.
func (r *SettingsRepository) Get(ctx context.Context) (*models.RegistrationSettings, error) {
	query := fmt.Sprintf(`SELECT %s FROM registration_settings ORDER BY updated_at DESC LIMIT 1`, settingsColumns)
	var settings models.RegistrationSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get registration settings: %w", err)
	}
	return &settings, nil
}

// Upsert stores the full settings object, inserting the row on first save.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.RegistrationSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	settings.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO registration_settings (id, registration_open, academic_year, semester, exam_start_date, exam_end_date, selected_exam_dates, students_per_day, registration_message, morning_start_time, morning_end_time, afternoon_start_time, afternoon_end_time, updated_by, updated_at)
		VALUES (:id, :registration_open, :academic_year, :semester, :exam_start_date, :exam_end_date, :selected_exam_dates, :students_per_day, :registration_message, :morning_start_time, :morning_end_time, :afternoon_start_time, :afternoon_end_time, :updated_by, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			registration_open = EXCLUDED.registration_open,
			academic_year = EXCLUDED.academic_year,
			semester = EXCLUDED.semester,
			exam_start_date = EXCLUDED.exam_start_date,
			exam_end_date = EXCLUDED.exam_end_date,
			selected_exam_dates = EXCLUDED.selected_exam_dates,
			students_per_day = EXCLUDED.students_per_day,
			registration_message = EXCLUDED.registration_message,
			morning_start_time = EXCLUDED.morning_start_time,
			morning_end_time = EXCLUDED.morning_end_time,
			afternoon_start_time = EXCLUDED.afternoon_start_time,
			afternoon_end_time = EXCLUDED.afternoon_end_time,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert registration settings: %w", err)
	}
	return nil
}
