package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/google/uuid"
)

type AuditService interface {
	// Record stores an audit entry. A nil exec writes outside any transaction.
	Record(ctx context.Context, exec repositories.SQLExecutor, entry AuditEntry) error
	ListAuditLogs(ctx context.Context, input ListAuditLogsInput) (*AuditLogList, error)
}

type AuditEntry struct {
	ActorID    string
	Action     models.AuditAction
	EntityType models.AuditEntityType
	EntityID   string
	Details    interface{}
}

type ListAuditLogsInput struct {
	Action     string
	EntityType string
	Page       int
	Limit      int
}

type AuditLogList struct {
	Logs []models.AuditLog `json:"logs"`
	models.Page
}

type auditService struct {
	auditRepo repositories.AuditLogRepository
	logger    *slog.Logger
}

func NewAuditService(auditRepo repositories.AuditLogRepository, logger *slog.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, exec repositories.SQLExecutor, entry AuditEntry) error {
	details := "{}"
	if entry.Details != nil {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = string(b)
	}

	log := &models.AuditLog{
		ID:         uuid.NewString(),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    details,
	}
	if entry.ActorID != "" {
		actor := entry.ActorID
		log.UserID = &actor
	}

	if err := s.auditRepo.Create(ctx, exec, log); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *auditService) ListAuditLogs(ctx context.Context, input ListAuditLogsInput) (*AuditLogList, error) {
	page, limit := normalizePage(input.Page, input.Limit)
	filter := repositories.ListAuditLogsFilter{Limit: limit, Offset: (page - 1) * limit}

	verr := newValidationError()
	if input.Action != "" {
		action := models.AuditAction(input.Action)
		switch action {
		case models.AuditActionCreate, models.AuditActionUpdate, models.AuditActionDelete:
			filter.Action = &action
		default:
			verr.Add("action", "must be one of CREATE, UPDATE, DELETE")
		}
	}
	if input.EntityType != "" {
		entityType := models.AuditEntityType(input.EntityType)
		switch entityType {
		case models.AuditEntityPlayer, models.AuditEntityTournament, models.AuditEntityParticipation:
			filter.EntityType = &entityType
		default:
			verr.Add("entityType", "must be one of Player, Tournament, Participation")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	logs, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return &AuditLogList{Logs: logs, Page: models.NewPage(page, limit, total)}, nil
}

// recordOutsideTx пишет аудит после уже выполненной операции: ошибка не
// отменяет саму операцию, только логируется.
func recordOutsideTx(ctx context.Context, audit AuditService, logger *slog.Logger, entry AuditEntry) {
	if err := audit.Record(ctx, nil, entry); err != nil {
		logger.ErrorContext(ctx, "audit log write failed",
			slog.String("entity_type", string(entry.EntityType)),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err),
		)
	}
}
