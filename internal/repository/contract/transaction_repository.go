package contract

import (
	"context"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	Update(ctx context.Context, txn *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error)
	FindAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Transaction, error)
	FindNeedingPush(ctx context.Context, companyID uuid.UUID) ([]*entity.Transaction, error)
	UpsertByExternalID(ctx context.Context, txn *entity.Transaction) error
}

type ListEntryRepository interface {
	UpsertByListID(ctx context.Context, entries []*entity.ListEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ListEntry, error)
}

type SystemLogRepository interface {
	Create(ctx context.Context, log *entity.SystemLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SystemLog, error)
}
