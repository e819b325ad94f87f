package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

type personalityRepository interface {
	List(ctx context.Context, filter models.PersonalityQuestionFilter) ([]models.PersonalityQuestion, int, error)
	FindByID(ctx context.Context, id string) (*models.PersonalityQuestion, error)
	Create(ctx context.Context, question *models.PersonalityQuestion) error
	Update(ctx context.Context, question *models.PersonalityQuestion) error
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, questions []models.PersonalityQuestion) error
}

// importErrorLimit caps how many row errors a CSV import reports back.
const importErrorLimit = 25

// PersonalityService manages the personality test question bank.
type PersonalityService struct {
	repo      personalityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPersonalityService constructs a PersonalityService.
func NewPersonalityService(repo personalityRepository, validate *validator.Validate, logger *zap.Logger) *PersonalityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonalityService{repo: repo, validator: validate, logger: logger}
}

// List returns personality questions with pagination metadata.
func (s *PersonalityService) List(ctx context.Context, filter models.PersonalityQuestionFilter) ([]models.PersonalityQuestion, *paging.Meta, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 10
	}
	questions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list personality questions")
	}

	meta := &paging.Meta{
		Page:     filter.Page,
		PerPage:  filter.PerPage,
		Total:    total,
		LastPage: (total + filter.PerPage - 1) / filter.PerPage,
	}
	if meta.LastPage < 1 {
		meta.LastPage = 1
	}
	if len(questions) > 0 {
		meta.From = (filter.Page-1)*filter.PerPage + 1
		meta.To = meta.From + len(questions) - 1
	}
	return questions, meta, nil
}

// Get returns one personality question.
func (s *PersonalityService) Get(ctx context.Context, id string) (*models.PersonalityQuestion, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "personality question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personality question")
	}
	return question, nil
}

// Create adds a new personality question.
func (s *PersonalityService) Create(ctx context.Context, req dto.CreatePersonalityQuestionRequest) (*models.PersonalityQuestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personality question payload")
	}
	question := &models.PersonalityQuestion{
		Question:     strings.TrimSpace(req.Question),
		Dichotomy:    strings.ToUpper(strings.TrimSpace(req.Dichotomy)),
		PositiveSide: strings.TrimSpace(req.PositiveSide),
		NegativeSide: strings.TrimSpace(req.NegativeSide),
	}
	if err := s.repo.Create(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create personality question")
	}
	return question, nil
}

// Update modifies an existing personality question.
func (s *PersonalityService) Update(ctx context.Context, id string, req dto.UpdatePersonalityQuestionRequest) (*models.PersonalityQuestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personality question payload")
	}
	question, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Question = strings.TrimSpace(req.Question)
	question.Dichotomy = strings.ToUpper(strings.TrimSpace(req.Dichotomy))
	question.PositiveSide = strings.TrimSpace(req.PositiveSide)
	question.NegativeSide = strings.TrimSpace(req.NegativeSide)

	if err := s.repo.Update(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update personality question")
	}
	return question, nil
}

// Delete removes a personality question.
func (s *PersonalityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "personality question not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete personality question")
	}
	return nil
}

// ImportCSV bulk-loads questions from a CSV stream. The header row maps
// columns by name; rows with missing fields are skipped and reported.
func (s *PersonalityService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "CSV file is empty or unreadable")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"question", "dichotomy", "positive_side", "negative_side"} {
		if _, ok := columns[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("CSV is missing the %q column", required))
		}
	}

	summary := &dto.ImportSummary{}
	var batch []models.PersonalityQuestion
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			summary.Skipped++
			s.noteImportError(summary, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		question := models.PersonalityQuestion{
			Question:     cell(record, columns["question"]),
			Dichotomy:    strings.ToUpper(cell(record, columns["dichotomy"])),
			PositiveSide: cell(record, columns["positive_side"]),
			NegativeSide: cell(record, columns["negative_side"]),
		}
		if question.Question == "" || question.Dichotomy == "" || question.PositiveSide == "" || question.NegativeSide == "" {
			summary.Skipped++
			s.noteImportError(summary, fmt.Sprintf("line %d: one or more required fields are empty", line))
			continue
		}
		batch = append(batch, question)
	}

	if len(batch) > 0 {
		if err := s.repo.BulkCreate(ctx, batch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import personality questions")
		}
	}
	summary.Created = len(batch)
	s.logger.Info("personality question import finished",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (s *PersonalityService) noteImportError(summary *dto.ImportSummary, msg string) {
	if len(summary.Errors) < importErrorLimit {
		summary.Errors = append(summary.Errors, msg)
	}
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
