package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/jobs"
	"github.com/junyours/occ-admission-sub002/pkg/storage"
)

// ReportFormat selects the rendering of an archive report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportTicket is handed back when a report render is queued. The download
// URL becomes valid once the background worker finishes.
type ReportTicket struct {
	ReportID    string    `json:"report_id"`
	Format      string    `json:"format"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type reportJob struct {
	ReportID string
	Format   ReportFormat
	Query    string
	Filename string
}

// ReportService renders archive exports in the background and serves them
// through signed download URLs.
type ReportService struct {
	archive *ArchiveService
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger

	queue *jobs.Queue
}

// NewReportService constructs a ReportService and its worker queue. Call
// Start before queueing and Stop on shutdown.
func NewReportService(archive *ArchiveService, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg jobs.QueueConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{archive: archive, store: store, signer: signer, logger: logger}
	s.queue = jobs.NewQueue("archive-reports", s.process, cfg)
	return s
}

// Start launches the worker pool.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Request queues a report render and returns the ticket for fetching it.
func (s *ReportService) Request(ctx context.Context, format ReportFormat, query string) (*ReportTicket, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	id := uuid.NewString()
	filename := fmt.Sprintf("archive-%s.%s", id, format)
	job := reportJob{ReportID: id, Format: format, Query: query, Filename: filename}
	if err := s.queue.Enqueue(jobs.Job{ID: id, Kind: "archive-export", Payload: job}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report queue is full")
	}

	url, expiresAt, err := s.signer.Generate(id, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report URL")
	}
	return &ReportTicket{ReportID: id, Format: string(format), DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// Fetch validates a signed token and opens the stored report file. Callers
// own closing the returned file.
func (s *ReportService) Fetch(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired report token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report is not ready yet")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}
	return file, relPath, nil
}

// CleanupExpired deletes stored reports older than the given TTL.
func (s *ReportService) CleanupExpired(ttl time.Duration) {
	removed, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", len(removed)))
	}
}

func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reportJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	var (
		data []byte
		err  error
	)
	switch payload.Format {
	case ReportFormatCSV:
		data, err = s.archive.ExportCSV(ctx, payload.Query)
	case ReportFormatPDF:
		data, err = s.archive.ExportPDF(ctx, payload.Query)
	default:
		return fmt.Errorf("unsupported report format %q", payload.Format)
	}
	if err != nil {
		return fmt.Errorf("render report %s: %w", payload.ReportID, err)
	}

	if _, err := s.store.Save(payload.Filename, data); err != nil {
		return fmt.Errorf("store report %s: %w", payload.ReportID, err)
	}
	s.logger.Info("archive report rendered",
		zap.String("report_id", payload.ReportID),
		zap.String("format", string(payload.Format)),
		zap.Int("bytes", len(data)))
	return nil
}
