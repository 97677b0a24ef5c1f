package usecase

import (
	"context"
	"time"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

// AdminCheck reports whether ctx carries an admin session. IdentityUsecase.IsAdmin satisfies it.
type AdminCheck func(ctx context.Context) bool

func requireAdmin(ctx context.Context, isAdmin AdminCheck) error {
	if _, err := currentIdentity(ctx); err != nil {
		return err
	}
	if isAdmin == nil || !isAdmin(ctx) {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

type auditLogger struct {
	logs domain.AuditLogRepository
	now  func() time.Time
}

// NewAuditLogger appends entries to the audit_logs collection, attributing them to the
// identity in ctx.
func NewAuditLogger(logs domain.AuditLogRepository) domain.AuditLogger {
	return &auditLogger{logs: logs, now: time.Now}
}

func (a *auditLogger) Record(ctx context.Context, entry domain.AuditLog) {
	if identity, ok := domain.IdentityFromContext(ctx); ok {
		entry.AdminEmail = identity.Email
		entry.AdminName = identity.DisplayName
		if entry.AdminName == "" {
			entry.AdminName = identity.Email
		}
	}
	if entry.AdminName == "" {
		entry.AdminName = "Admin"
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityLow
	}
	entry.Timestamp = domain.FormatTime(a.now())

	if _, err := a.logs.Create(ctx, entry); err != nil {
		logger.Log.Error("audit log write failed",
			"action", entry.Action,
			"target_type", entry.TargetType,
			"target_id", entry.TargetID,
			"error", err,
		)
	}
}
