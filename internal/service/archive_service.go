package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/export"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

type registrationRepository interface {
	ListArchived(ctx context.Context, query string) ([]models.ArchivedRegistration, error)
	Unarchive(ctx context.Context, id string) error
	BulkUnarchive(ctx context.Context, ids []string) (int, error)
}

// Per-session pagination bounds for the archive browser.
const (
	archiveMinPerPage     = 5
	archiveMaxPerPage     = 500
	archiveDefaultPerPage = 10
)

// ArchiveService serves the archived registration browser and restore
// operations.
type ArchiveService struct {
	repo      registrationRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter

	invalidate func(ctx context.Context)
}

// NewArchiveService constructs an ArchiveService. The invalidate callback
// runs after a restore so cached schedule listings drop stale groupings.
func NewArchiveService(repo registrationRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger, invalidate func(ctx context.Context)) *ArchiveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		repo:       repo,
		audit:      audit,
		validator:  validate,
		logger:     logger,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		invalidate: invalidate,
	}
}

// List returns archived registrations grouped by year, month and session.
// Sessions inside a month page independently with the same page/per-page
// window. A per-page of paging.ShowAll disables the window.
func (s *ArchiveService) List(ctx context.Context, filter models.ArchiveFilter) ([]dto.ArchiveYearGroup, error) {
	registrations, err := s.repo.ListArchived(ctx, filter.Query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived registrations")
	}

	perPage := filter.PerPage
	if perPage != paging.ShowAll {
		perPage = paging.Clamp(perPage, archiveMinPerPage, archiveMaxPerPage, archiveDefaultPerPage)
	}
	return groupArchiveByYear(registrations, filter.Page, perPage), nil
}

// PerPageOptions returns the selectable per-page step values for the current
// archive size.
func (s *ArchiveService) PerPageOptions(ctx context.Context, query string) ([]int, error) {
	registrations, err := s.repo.ListArchived(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count archived registrations")
	}
	return paging.Options(len(registrations)), nil
}

// Unarchive restores a single registration to the active pool.
func (s *ArchiveService) Unarchive(ctx context.Context, actorID, id string) error {
	if err := s.repo.Unarchive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "archived registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore registration")
	}
	s.recordAudit(ctx, actorID, id, 1)
	if s.invalidate != nil {
		s.invalidate(ctx)
	}
	return nil
}

// BulkUnarchive restores a batch of registrations and reports how many rows
// actually changed.
func (s *ArchiveService) BulkUnarchive(ctx context.Context, actorID string, req dto.BulkUnarchiveRequest) (*dto.UnarchiveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unarchive payload")
	}
	restored, err := s.repo.BulkUnarchive(ctx, req.RegistrationIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore registrations")
	}
	s.recordAudit(ctx, actorID, "", restored)
	if restored > 0 && s.invalidate != nil {
		s.invalidate(ctx)
	}
	return &dto.UnarchiveResult{Restored: restored}, nil
}

// ExportCSV renders the filtered archive as a CSV document.
func (s *ArchiveService) ExportCSV(ctx context.Context, query string) ([]byte, error) {
	dataset, err := s.exportDataset(ctx, query)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render archive CSV")
	}
	return payload, nil
}

// ExportPDF renders the filtered archive as a PDF report.
func (s *ArchiveService) ExportPDF(ctx context.Context, query string) ([]byte, error) {
	dataset, err := s.exportDataset(ctx, query)
	if err != nil {
		return nil, err
	}
	subtitle := fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 MST"))
	payload, err := s.pdf.Render(*dataset, "Archived Registrations", subtitle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render archive PDF")
	}
	return payload, nil
}

func (s *ArchiveService) exportDataset(ctx context.Context, query string) (*export.Dataset, error) {
	registrations, err := s.repo.ListArchived(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archived registrations")
	}

	dataset := &export.Dataset{
		Headers: []string{"Examinee", "School", "Registration Date", "Exam Date", "Session", "Status", "Archived At"},
	}
	for _, reg := range registrations {
		examDate := ""
		if reg.AssignedExamDate != nil {
			examDate = *reg.AssignedExamDate
		}
		archivedAt := ""
		if reg.ArchivedAt != nil {
			archivedAt = reg.ArchivedAt.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Examinee":          reg.ExamineeName,
			"School":            reg.SchoolName,
			"Registration Date": reg.RegistrationDate,
			"Exam Date":         examDate,
			"Session":           string(reg.BucketSession()),
			"Status":            string(reg.Status),
			"Archived At":       archivedAt,
		})
	}
	return dataset, nil
}

func (s *ArchiveService) recordAudit(ctx context.Context, actorID, registrationID string, restored int) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:    models.AuditActionRegistrationUnarchive,
		Resource:  "registrations",
		NewValues: []byte(fmt.Sprintf(`{"restored":%d}`, restored)),
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if registrationID != "" {
		log.ResourceID = &registrationID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record unarchive audit log", zap.Error(err))
	}
}
