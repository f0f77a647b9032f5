package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/mapper"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/internal/repository/contract"
	"qbwc-sync-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrMissingExternalID = errors.New("transaction has no external id")

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TransactionMapper
}

func NewTransactionRepository(db *gorm.DB) contract.TransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTransactionMapper(),
	}
}

func (r *TransactionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, txn *entity.Transaction) error {
	if txn.Id == uuid.Nil {
		txn.Id = uuid.New()
	}
	m, err := r.mapper.ToModel(txn)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*txn = *r.mapper.ToEntity(m)
	return nil
}

func (r *TransactionRepositoryImpl) Update(ctx context.Context, txn *entity.Transaction) error {
	m, err := r.mapper.ToModel(txn)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*txn = *r.mapper.ToEntity(m)
	return nil
}

func (r *TransactionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *TransactionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error) {
	var m model.Transaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error) {
	var models []*model.Transaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TransactionRepositoryImpl) FindAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Transaction, error) {
	return r.FindAll(ctx,
		specification.ByCompanyID{CompanyID: companyID},
		specification.OrderBy{Field: "txn_date"},
	)
}

func (r *TransactionRepositoryImpl) FindNeedingPush(ctx context.Context, companyID uuid.UUID) ([]*entity.Transaction, error) {
	return r.FindAll(ctx,
		specification.ByCompanyID{CompanyID: companyID},
		specification.NeedsPush{},
		specification.OrderBy{Field: "created_at"},
	)
}

// UpsertByExternalID inserts txn or overwrites the QuickBooks-owned fields of
// the row already holding its external id. txn is reloaded afterwards.
func (r *TransactionRepositoryImpl) UpsertByExternalID(ctx context.Context, txn *entity.Transaction) error {
	if txn.ExternalId == "" {
		return ErrMissingExternalID
	}
	if txn.Id == uuid.Nil {
		txn.Id = uuid.New()
	}
	m, err := r.mapper.ToModel(txn)
	if err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"external_type", "edit_sequence", "amount", "txn_date", "due_date",
			"payee", "account_name", "ref_number", "memo", "lines",
			"sync_status", "last_synced_at", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", txn.ExternalId, err)
	}

	stored, err := r.FindOne(ctx,
		specification.ByCompanyID{CompanyID: txn.CompanyId},
		specification.ByExternalID{ExternalID: txn.ExternalId},
	)
	if err != nil {
		return err
	}
	if stored != nil {
		*txn = *stored
	}
	return nil
}
