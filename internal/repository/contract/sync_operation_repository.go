package contract

import (
	"context"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SyncOperationRepository interface {
	// Enqueue stores ops as pending, unclaimed work for companyID. Ids,
	// timestamps and sequence numbers are assigned here.
	Enqueue(ctx context.Context, companyID uuid.UUID, ops []*entity.SyncOperation) error
	CountPending(ctx context.Context, companyID uuid.UUID) (int64, error)
	// ClaimPending assigns ticket to every pending, unclaimed operation of
	// companyID in one conditional update and returns how many it took.
	ClaimPending(ctx context.Context, companyID uuid.UUID, ticket string) (int64, error)
	CancelPending(ctx context.Context, companyID uuid.UUID) (int64, error)
	FindNextForTicket(ctx context.Context, ticket string) (*entity.SyncOperation, error)
	// MarkSent reports false when the operation was no longer pending.
	MarkSent(ctx context.Context, id uuid.UUID, requestXML string) (bool, error)
	// Complete reports false when the operation was already finished.
	Complete(ctx context.Context, id uuid.UUID, responseXML, errorMessage string) (bool, error)
	MarkErrored(ctx context.Context, id uuid.UUID, errorMessage string) error
	// AbandonTicket finishes the leftovers of a dead session: never-sent
	// operations are cancelled and the one in flight is errored. Both stay
	// attached to ticket.
	AbandonTicket(ctx context.Context, ticket, unsentMessage, inFlightMessage string) (cancelled int64, errored int64, err error)
	CountByTicket(ctx context.Context, ticket string) (total int64, finished int64, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SyncOperation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncOperation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
