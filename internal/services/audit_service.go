package services

import (
	"context"
	"log/slog"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	pkglogger "github.com/NujabesCode/itsmycolor-authgate/pkg/logger"
)

// AuditLogRepository persists audit entries.
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
}

// AuditService records privileged actions both to the structured log stream
// and to the audit table. The log line is emitted even when the database write
// fails, so an operator action never goes completely unrecorded.
type AuditService struct {
	repo        AuditLogRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo AuditLogRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuditService {
	return &AuditService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// RecordAdminAction writes one privileged action to both sinks. actorID is
// the operator performing the action, never the affected account.
func (s *AuditService) RecordAdminAction(ctx context.Context, eventType, actorID, resourceType, resourceID, action string, metadata models.AuditMetadata) {
	logMeta := make(map[string]string, len(metadata)+2)
	logMeta["resource_type"] = resourceType
	logMeta["resource_id"] = resourceID
	for key, val := range metadata {
		if str, ok := val.(string); ok {
			logMeta[key] = str
		}
	}
	s.auditLogger.LogAdminAction(eventType, actorID, logMeta)

	entry := &models.AuditLog{
		EventType:    eventType,
		ActorID:      &actorID,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		Action:       action,
		Success:      true,
		Metadata:     metadata,
	}
	if _, err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit entry",
			slog.String("event_type", eventType),
			slog.String("actor_id", actorID),
			slog.Any("error", err))
	}
}
