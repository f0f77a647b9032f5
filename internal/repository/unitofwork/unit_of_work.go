package unitofwork

import (
	"context"

	"qbwc-sync-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CompanyRepository() contract.CompanyRepository
	SyncOperationRepository() contract.SyncOperationRepository
	SyncSessionRepository() contract.SyncSessionRepository
	TransactionRepository() contract.TransactionRepository
	ListEntryRepository() contract.ListEntryRepository
	SystemLogRepository() contract.SystemLogRepository
}
