package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

type mockQuestionRepo struct {
	questions []models.Question
	nextID    int
	archived  []string
}

func (m *mockQuestionRepo) filtered(filter models.QuestionFilter) []models.Question {
	out := make([]models.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if q.Archived {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (m *mockQuestionRepo) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int, error) {
	all := m.filtered(filter)
	total := len(all)
	if filter.PerPage <= 0 {
		return all, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.PerPage
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *mockQuestionRepo) ListIDs(ctx context.Context, filter models.QuestionFilter) ([]string, error) {
	all := m.filtered(filter)
	ids := make([]string, 0, len(all))
	for _, q := range all {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (m *mockQuestionRepo) CountByCategory(ctx context.Context, category string) (int, error) {
	return len(m.filtered(models.QuestionFilter{Category: category})), nil
}

func (m *mockQuestionRepo) FindByID(ctx context.Context, id string) (*models.Question, error) {
	for i := range m.questions {
		if m.questions[i].ID == id {
			cp := m.questions[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	m.nextID++
	question.ID = fmt.Sprintf("q%d", m.nextID)
	m.questions = append(m.questions, *question)
	return nil
}

func (m *mockQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	for i := range m.questions {
		if m.questions[i].ID == question.ID {
			m.questions[i] = *question
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockQuestionRepo) Archive(ctx context.Context, id string) error {
	for i := range m.questions {
		if m.questions[i].ID == id && !m.questions[i].Archived {
			m.questions[i].Archived = true
			m.archived = append(m.archived, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockQuestionRepo) BulkArchive(ctx context.Context, ids []string) (int, error) {
	count := 0
	for _, id := range ids {
		if err := m.Archive(ctx, id); err == nil {
			count++
		}
	}
	return count, nil
}

func (m *mockQuestionRepo) BulkCreate(ctx context.Context, questions []models.Question) error {
	for i := range questions {
		if err := m.Create(ctx, &questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockQuestionRepo) SetImage(ctx context.Context, id, field, path string) error {
	for i := range m.questions {
		if m.questions[i].ID == id {
			if field == "image" {
				m.questions[i].Image = &path
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func seedQuestions(repo *mockQuestionRepo, n int) {
	for i := 0; i < n; i++ {
		repo.nextID++
		repo.questions = append(repo.questions, models.Question{
			ID:            fmt.Sprintf("q%d", repo.nextID),
			Question:      fmt.Sprintf("Question %d", repo.nextID),
			Option1:       "first",
			Option2:       "second",
			CorrectAnswer: "A",
			Category:      "math",
		})
	}
}

func newQuestionFixture() (*QuestionService, *mockQuestionRepo) {
	repo := &mockQuestionRepo{}
	svc := NewQuestionService(repo, nil, nil, nil, nil, nil, QuestionConfig{DefaultPerPage: 10, MinPerPage: 5, MaxPerPage: 500})
	return svc, repo
}

func TestQuestionServiceListClampsPerPage(t *testing.T) {
	svc, repo := newQuestionFixture()
	seedQuestions(repo, 12)

	// Below the minimum: clamped up to 5.
	questions, meta, _, err := svc.List(context.Background(), models.QuestionFilter{PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, questions, 5)
	assert.Equal(t, 5, meta.PerPage)
	assert.Equal(t, 12, meta.Total)
	assert.Equal(t, 1, meta.From)
	assert.Equal(t, 5, meta.To)
}

func TestQuestionServiceListShowAll(t *testing.T) {
	svc, repo := newQuestionFixture()
	seedQuestions(repo, 12)

	questions, meta, options, err := svc.List(context.Background(), models.QuestionFilter{PerPage: paging.ShowAll})
	require.NoError(t, err)
	assert.Len(t, questions, 12)
	assert.Equal(t, paging.ShowAll, meta.PerPage)
	assert.Equal(t, 1, meta.From)
	assert.Equal(t, 12, meta.To)
	assert.Contains(t, options, 5)
	assert.Contains(t, options, 10)
	assert.Equal(t, paging.ShowAll, options[len(options)-1])
}

func TestQuestionServiceCreateRejectsGappedOptions(t *testing.T) {
	svc, _ := newQuestionFixture()

	_, err := svc.Create(context.Background(), dto.SaveQuestionRequest{
		Question:      "What is a gap?",
		Option1:       "first",
		Option3:       "third without second",
		CorrectAnswer: "A",
		Category:      "math",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceCreateRejectsEmptyCorrectOption(t *testing.T) {
	svc, _ := newQuestionFixture()

	_, err := svc.Create(context.Background(), dto.SaveQuestionRequest{
		Question:      "Pick the empty one",
		Option1:       "first",
		Option2:       "second",
		CorrectAnswer: "C",
		Category:      "math",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceCreateAndUpdate(t *testing.T) {
	svc, repo := newQuestionFixture()

	created, err := svc.Create(context.Background(), dto.SaveQuestionRequest{
		Question:      "2 + 2 = ?",
		Option1:       "3",
		Option2:       "4",
		CorrectAnswer: "B",
		Category:      "math",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := svc.Update(context.Background(), created.ID, dto.SaveQuestionRequest{
		Question:      "2 + 3 = ?",
		Option1:       "4",
		Option2:       "5",
		CorrectAnswer: "B",
		Category:      "math",
	})
	require.NoError(t, err)
	assert.Equal(t, "2 + 3 = ?", updated.Question)
	assert.Equal(t, "2 + 3 = ?", repo.questions[0].Question)
}

func TestQuestionServiceLocatePage(t *testing.T) {
	svc, repo := newQuestionFixture()
	seedQuestions(repo, 23)

	location, err := svc.LocatePage(context.Background(), "q13", models.QuestionFilter{PerPage: 5})
	require.NoError(t, err)
	assert.True(t, location.Found)
	assert.Equal(t, 3, location.Page)

	location, err = svc.LocatePage(context.Background(), "missing", models.QuestionFilter{PerPage: 5})
	require.NoError(t, err)
	assert.False(t, location.Found)
	assert.Equal(t, 1, location.Page)
}

func TestQuestionServiceBulkArchiveCountsOnlyChangedRows(t *testing.T) {
	svc, repo := newQuestionFixture()
	seedQuestions(repo, 3)
	audit := &mockAuditWriter{}
	svc.audit = audit

	result, err := svc.BulkArchive(context.Background(), "u1", dto.BulkArchiveRequest{QuestionIDs: []string{"q1", "q2", "ghost"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Archived)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionQuestionArchive, audit.logs[0].Action)
}

func TestQuestionServiceImportCSV(t *testing.T) {
	svc, repo := newQuestionFixture()

	csvData := strings.Join([]string{
		"question,option1,option2,option3,correct_answer,category",
		"What is 2+2?,3,4,5,B,math",
		"Capital of France?,Paris,,,A,geography",
		",1,2,3,A,math",
		"Bad letter,1,2,3,Z,math",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, summary.Errors, 2)
	assert.Contains(t, summary.Errors[0], "line 4")
	require.Len(t, repo.questions, 2)
	assert.Equal(t, "B", repo.questions[0].CorrectAnswer)
	assert.Equal(t, "geography", repo.questions[1].Category)
}

func TestQuestionServiceImportCSVRequiresColumns(t *testing.T) {
	svc, _ := newQuestionFixture()

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("question,option1\nfoo,bar"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceImportCSVSkipsGappedOptions(t *testing.T) {
	svc, repo := newQuestionFixture()

	csvData := strings.Join([]string{
		"question,option1,option2,option3,correct_answer,category",
		"Gapped,first,,third,C,math",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, repo.questions)
}
