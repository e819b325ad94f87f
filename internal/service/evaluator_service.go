package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/internal/repository"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type evaluatorRepository interface {
	List(ctx context.Context) ([]repository.Evaluator, error)
	FindByID(ctx context.Context, id string) (*repository.Evaluator, error)
	FindByUsername(ctx context.Context, username string) (*repository.Evaluator, error)
	FindByEmail(ctx context.Context, email string) (*repository.Evaluator, error)
	Create(ctx context.Context, evaluator *repository.Evaluator) error
	Delete(ctx context.Context, id string) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// EvaluatorService manages evaluator staff accounts.
type EvaluatorService struct {
	repo      evaluatorRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvaluatorService constructs an EvaluatorService.
func NewEvaluatorService(repo evaluatorRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *EvaluatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluatorService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns all evaluator accounts newest first.
func (s *EvaluatorService) List(ctx context.Context) ([]dto.EvaluatorItem, error) {
	evaluators, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluators")
	}
	items := make([]dto.EvaluatorItem, 0, len(evaluators))
	for _, evaluator := range evaluators {
		items = append(items, dto.EvaluatorItem{
			ID:         evaluator.ID,
			Username:   evaluator.Username,
			Email:      evaluator.Email,
			Name:       evaluator.Name,
			Department: evaluator.Department,
			CreatedAt:  evaluator.CreatedAt,
		})
	}
	return items, nil
}

// Create registers a new evaluator account. The password confirmation must
// match and both username and email must be unused.
func (s *EvaluatorService) Create(ctx context.Context, actorID string, req dto.CreateEvaluatorRequest) (*dto.EvaluatorItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluator payload")
	}
	if req.Password != req.PasswordConfirmation {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password confirmation does not match")
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("username %q is already taken", username))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("email %q is already registered", email))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	evaluator := &repository.Evaluator{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Department:   strings.TrimSpace(req.Department),
	}
	if err := s.repo.Create(ctx, evaluator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluator")
	}

	s.recordAudit(ctx, actorID, models.AuditActionEvaluatorCreate, evaluator.ID)

	return &dto.EvaluatorItem{
		ID:         evaluator.ID,
		Username:   evaluator.Username,
		Email:      evaluator.Email,
		Name:       evaluator.Name,
		Department: evaluator.Department,
		CreatedAt:  evaluator.CreatedAt,
	}, nil
}

// Delete removes an evaluator account.
func (s *EvaluatorService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "evaluator not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluator")
	}
	s.recordAudit(ctx, actorID, models.AuditActionEvaluatorDelete, id)
	return nil
}

func (s *EvaluatorService) recordAudit(ctx context.Context, actorID, action, evaluatorID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "evaluators",
		ResourceID: &evaluatorID,
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record evaluator audit log", zap.String("action", action), zap.Error(err))
	}
}
