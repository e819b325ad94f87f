package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/models"
)

func newRuleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRuleRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()
	repo := NewRuleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "personality_type", "min_score", "max_score", "recommended_course", "academic_year", "created_at", "updated_at"}).
		AddRow("r1", "INTJ", 80, 100, "Computer Science", "2026-2027", time.Now(), time.Now()).
		AddRow("r2", "INTJ", 80, 100, "Mathematics", "2026-2027", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM recommendation_rules WHERE 1=1 AND personality_type = $1 AND academic_year = $2 ORDER BY personality_type ASC, min_score ASC, recommended_course ASC")).
		WithArgs("INTJ", "2026-2027").
		WillReturnRows(rows)

	rules, err := repo.List(context.Background(), models.RuleFilter{PersonalityType: "INTJ", AcademicYear: "2026-2027"})
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, "Computer Science", rules[0].RecommendedCourse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleRepositoryBulkCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()
	repo := NewRuleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recommendation_rules").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO recommendation_rules").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	rules := []models.RecommendationRule{
		{PersonalityType: "INTJ", MinScore: 80, MaxScore: 100, RecommendedCourse: "Computer Science", AcademicYear: "2026-2027"},
		{PersonalityType: "ENFP", MinScore: 80, MaxScore: 100, RecommendedCourse: "Psychology", AcademicYear: "2026-2027"},
	}
	err := repo.BulkCreate(context.Background(), rules)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleRepositoryCountByPersonalityType(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()
	repo := NewRuleRepository(db)

	rows := sqlmock.NewRows([]string{"personality_type", "total"}).
		AddRow("INTJ", 4).
		AddRow("ENFP", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT personality_type, COUNT(*) AS total FROM recommendation_rules WHERE academic_year = $1 GROUP BY personality_type")).
		WithArgs("2026-2027").
		WillReturnRows(rows)

	counts, err := repo.CountByPersonalityType(context.Background(), "2026-2027")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"INTJ": 4, "ENFP": 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleRepositoryListCourses(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()
	repo := NewRuleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "passing_rate", "created_at"}).
		AddRow("c1", "Computer Science", 85, time.Now()).
		AddRow("c2", "Psychology", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, passing_rate, created_at FROM courses ORDER BY name ASC")).
		WillReturnRows(rows)

	courses, err := repo.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.NotNil(t, courses[0].PassingRate)
	assert.Equal(t, 85, *courses[0].PassingRate)
	assert.Nil(t, courses[1].PassingRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
