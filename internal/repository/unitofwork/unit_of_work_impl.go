package unitofwork

import (
	"context"
	"fmt"

	"qbwc-sync-be/internal/repository/contract"
	"qbwc-sync-be/internal/repository/implementation"

	"gorm.io/gorm"
)

// UnitOfWorkImpl hands out repositories bound to the open transaction, or to
// the plain connection when none is open. While a transaction is open only
// its repositories may be used: sqlite runs on a single connection.
type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) CompanyRepository() contract.CompanyRepository {
	return implementation.NewCompanyRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SyncOperationRepository() contract.SyncOperationRepository {
	return implementation.NewSyncOperationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SyncSessionRepository() contract.SyncSessionRepository {
	return implementation.NewSyncSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TransactionRepository() contract.TransactionRepository {
	return implementation.NewTransactionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ListEntryRepository() contract.ListEntryRepository {
	return implementation.NewListEntryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SystemLogRepository() contract.SystemLogRepository {
	return implementation.NewSystemLogRepository(u.getDB())
}
