package implementation

import (
	"context"
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

type ListEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ListEntryMapper
}

func NewListEntryRepository(db *gorm.DB) contract.ListEntryRepository {
	return &ListEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewListEntryMapper(),
	}
}

func (r *ListEntryRepositoryImpl) UpsertByListID(ctx context.Context, entries []*entity.ListEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]*model.QBListEntry, 0, len(entries))
	for _, e := range entries {
		if e.Id == uuid.Nil {
			e.Id = uuid.New()
		}
		m := r.mapper.ToModel(e)
		m.UpdatedAt = now
		models = append(models, m)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}, {Name: "kind"}, {Name: "list_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "full_name", "is_active", "account_type", "edit_sequence", "balance", "updated_at",
		}),
	}).CreateInBatches(&models, 200).Error
}

func (r *ListEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ListEntry, error) {
	var models []*model.QBListEntry
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
