package contract

import (
	"context"

	"qbwc-sync-be/internal/entity"
)

type SyncSessionRepository interface {
	Create(ctx context.Context, session *entity.SyncSession) error
	FindByTicket(ctx context.Context, ticket string) (*entity.SyncSession, error)
	SetLastError(ctx context.Context, ticket, message string) error
	ClearLastError(ctx context.Context, ticket string) error
	// UpdateStatus moves an active session to status and reports whether
	// this call made the transition.
	UpdateStatus(ctx context.Context, ticket string, status entity.SessionStatus) (bool, error)
}
