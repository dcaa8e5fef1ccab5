package repository

import (
	"context"

	"erp/internal/domain/model"
)

type AuditLogFilter struct {
	ActorUserID  *int64
	Action       model.AuditAction
	ResourceType string
	Page         int
	Limit        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]model.AuditLog, error)
}
