package service

import (
	"context"

	"github.com/carteira-sync/internal/domain/failure"
)

// AuditService records persistence failure events reported by ledger instances.
type AuditService interface {
	Record(ctx context.Context, event *failure.Event) error
}
