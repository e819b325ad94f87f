package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

type questionRepository interface {
	List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int, error)
	ListIDs(ctx context.Context, filter models.QuestionFilter) ([]string, error)
	CountByCategory(ctx context.Context, category string) (int, error)
	FindByID(ctx context.Context, id string) (*models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Archive(ctx context.Context, id string) error
	BulkArchive(ctx context.Context, ids []string) (int, error)
	BulkCreate(ctx context.Context, questions []models.Question) error
	SetImage(ctx context.Context, id, field, path string) error
}

type imageStore interface {
	Save(filename string, data []byte) (string, error)
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

type imageSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
}

// QuestionConfig tunes question bank listing behaviour.
type QuestionConfig struct {
	DefaultPerPage int
	MinPerPage     int
	MaxPerPage     int
}

// QuestionService manages the entrance exam question bank.
type QuestionService struct {
	repo      questionRepository
	images    imageStore
	signer    imageSigner
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    QuestionConfig
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(repo questionRepository, images imageStore, signer imageSigner, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config QuestionConfig) *QuestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultPerPage <= 0 {
		config.DefaultPerPage = 10
	}
	if config.MinPerPage <= 0 {
		config.MinPerPage = 5
	}
	if config.MaxPerPage <= 0 {
		config.MaxPerPage = 500
	}
	return &QuestionService{
		repo:      repo,
		images:    images,
		signer:    signer,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// clampPerPage applies the listing bounds, keeping the show-all sentinel.
func (s *QuestionService) clampPerPage(perPage int) int {
	if perPage == paging.ShowAll {
		return 0
	}
	return paging.Clamp(perPage, s.config.MinPerPage, s.config.MaxPerPage, s.config.DefaultPerPage)
}

// List returns questions for the current filter with pagination metadata and
// the per-page step options sized to the filtered total.
func (s *QuestionService) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, *paging.Meta, []int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.PerPage = s.clampPerPage(filter.PerPage)

	questions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list questions")
	}

	meta := &paging.Meta{Page: filter.Page, PerPage: filter.PerPage, Total: total, LastPage: 1}
	if filter.PerPage > 0 {
		meta.LastPage = (total + filter.PerPage - 1) / filter.PerPage
		if meta.LastPage < 1 {
			meta.LastPage = 1
		}
		if len(questions) > 0 {
			meta.From = (filter.Page-1)*filter.PerPage + 1
			meta.To = meta.From + len(questions) - 1
		}
	} else {
		meta.PerPage = paging.ShowAll
		if len(questions) > 0 {
			meta.From = 1
			meta.To = len(questions)
		}
	}
	return questions, meta, paging.Options(total), nil
}

// Get returns one question.
func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	return question, nil
}

// Create adds a new question after validating the option layout.
func (s *QuestionService) Create(ctx context.Context, req dto.SaveQuestionRequest) (*models.Question, error) {
	if err := s.validateSave(req); err != nil {
		return nil, err
	}
	question := &models.Question{}
	applySaveRequest(question, req)
	if err := s.repo.Create(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create question")
	}
	return question, nil
}

// Update modifies an existing question.
func (s *QuestionService) Update(ctx context.Context, id string, req dto.SaveQuestionRequest) (*models.Question, error) {
	if err := s.validateSave(req); err != nil {
		return nil, err
	}
	question, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applySaveRequest(question, req)
	if err := s.repo.Update(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update question")
	}
	return question, nil
}

// validateSave checks the payload plus the option guard: the correct answer
// must point at an option with content, and options must not skip letters.
func (s *QuestionService) validateSave(req dto.SaveQuestionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question payload")
	}

	options := []string{req.Option1, req.Option2, req.Option3, req.Option4, req.Option5}
	filled := 0
	for i, option := range options {
		if strings.TrimSpace(option) == "" {
			continue
		}
		if i != filled {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("option %s is set while an earlier option is empty", models.OptionLetters[i]))
		}
		filled++
	}

	answerIdx := -1
	for i, letter := range models.OptionLetters {
		if letter == req.CorrectAnswer {
			answerIdx = i
			break
		}
	}
	if answerIdx < 0 || strings.TrimSpace(options[answerIdx]) == "" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("correct answer %s has no option content", req.CorrectAnswer))
	}
	return nil
}

// ImportCSV bulk-loads exam questions from a CSV stream. The header row maps
// columns by name; rows that fail the option guard are skipped and reported.
func (s *QuestionService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportSummary, error) {
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
	for _, required := range []string{"question", "option1", "correct_answer", "category"} {
		if _, ok := columns[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("CSV is missing the %q column", required))
		}
	}
	optional := func(name string) int {
		if idx, ok := columns[name]; ok {
			return idx
		}
		return -1
	}

	summary := &dto.ImportSummary{}
	var batch []models.Question
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

		req := dto.SaveQuestionRequest{
			Question:      cell(record, columns["question"]),
			Option1:       cell(record, columns["option1"]),
			Option2:       cell(record, optional("option2")),
			Option3:       cell(record, optional("option3")),
			Option4:       cell(record, optional("option4")),
			Option5:       cell(record, optional("option5")),
			CorrectAnswer: strings.ToUpper(cell(record, columns["correct_answer"])),
			Category:      cell(record, columns["category"]),
		}
		if direction := cell(record, optional("direction")); direction != "" {
			req.Direction = &direction
		}
		if err := s.validateSave(req); err != nil {
			summary.Skipped++
			s.noteImportError(summary, fmt.Sprintf("line %d: %s", line, appErrors.FromError(err).Message))
			continue
		}
		question := models.Question{}
		applySaveRequest(&question, req)
		batch = append(batch, question)
	}

	if len(batch) > 0 {
		if err := s.repo.BulkCreate(ctx, batch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import questions")
		}
	}
	summary.Created = len(batch)
	s.logger.Info("exam question import finished",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (s *QuestionService) noteImportError(summary *dto.ImportSummary, msg string) {
	if len(summary.Errors) < importErrorLimit {
		summary.Errors = append(summary.Errors, msg)
	}
}

// LocatePage answers a deep link: which page the question sits on under the
// current filter. Found is false when the question is absent from the
// filtered set.
func (s *QuestionService) LocatePage(ctx context.Context, id string, filter models.QuestionFilter) (*dto.QuestionLocation, error) {
	perPage := s.clampPerPage(filter.PerPage)
	ids, err := s.repo.ListIDs(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to locate question")
	}

	location := &dto.QuestionLocation{QuestionID: id, Page: 1}
	for idx, candidate := range ids {
		if candidate == id {
			location.Found = true
			if perPage > 0 {
				location.Page = idx/perPage + 1
			}
			break
		}
	}
	return location, nil
}

// Archive soft-deletes a single question.
func (s *QuestionService) Archive(ctx context.Context, actorID, id string) error {
	if err := s.repo.Archive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "question not found or already archived")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive question")
	}
	s.recordAudit(ctx, actorID, id, 1)
	return nil
}

// BulkArchive soft-deletes a batch of questions and reports how many rows
// actually changed.
func (s *QuestionService) BulkArchive(ctx context.Context, actorID string, req dto.BulkArchiveRequest) (*dto.ArchiveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid archive payload")
	}
	archived, err := s.repo.BulkArchive(ctx, req.QuestionIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive questions")
	}
	s.recordAudit(ctx, actorID, "", archived)
	return &dto.ArchiveResult{Archived: archived}, nil
}

// allowed image upload extensions
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadImage stores an image for a question field and returns a signed URL
// for it. Field names mirror the storage columns: image, option1_image ..
// option5_image.
func (s *QuestionService) UploadImage(ctx context.Context, id, field, filename string, r io.Reader) (*dto.QuestionImageURL, error) {
	if s.images == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "image storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported image type %q", ext))
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	stored := fmt.Sprintf("%s-%s%s", id, uuid.NewString(), ext)
	relPath, err := s.images.SaveStream(stored, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store question image")
	}
	if err := s.repo.SetImage(ctx, id, field, relPath); err != nil {
		if cleanupErr := s.images.Delete(stored); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned question image", zap.Error(cleanupErr))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach question image")
	}

	url, _, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign image URL")
	}
	return &dto.QuestionImageURL{Field: field, URL: url}, nil
}

// ImageURLs returns signed URLs for every image attached to a question.
func (s *QuestionService) ImageURLs(ctx context.Context, id string) ([]dto.QuestionImageURL, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "image storage is not configured")
	}
	question, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]*string{
		"image":         question.Image,
		"option1_image": question.Option1Image,
		"option2_image": question.Option2Image,
		"option3_image": question.Option3Image,
		"option4_image": question.Option4Image,
		"option5_image": question.Option5Image,
	}
	urls := make([]dto.QuestionImageURL, 0)
	for _, field := range []string{"image", "option1_image", "option2_image", "option3_image", "option4_image", "option5_image"} {
		path := fields[field]
		if path == nil || *path == "" {
			continue
		}
		url, _, err := s.signer.Generate(id, *path)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign image URL")
		}
		urls = append(urls, dto.QuestionImageURL{Field: field, URL: url})
	}
	return urls, nil
}

func (s *QuestionService) recordAudit(ctx context.Context, actorID, questionID string, archived int) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:    models.AuditActionQuestionArchive,
		Resource:  "questions",
		NewValues: []byte(fmt.Sprintf(`{"archived":%d}`, archived)),
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if questionID != "" {
		log.ResourceID = &questionID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record question archive audit log", zap.Error(err))
	}
}

func applySaveRequest(question *models.Question, req dto.SaveQuestionRequest) {
	question.Question = strings.TrimSpace(req.Question)
	question.Option1 = strings.TrimSpace(req.Option1)
	question.Option2 = strings.TrimSpace(req.Option2)
	question.Option3 = strings.TrimSpace(req.Option3)
	question.Option4 = strings.TrimSpace(req.Option4)
	question.Option5 = strings.TrimSpace(req.Option5)
	question.CorrectAnswer = req.CorrectAnswer
	question.Category = strings.TrimSpace(req.Category)
	question.Direction = req.Direction
}
