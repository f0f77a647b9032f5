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
)

type SystemLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SystemLogMapper
}

func NewSystemLogRepository(db *gorm.DB) contract.SystemLogRepository {
	return &SystemLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewSystemLogMapper(),
	}
}

func (r *SystemLogRepositoryImpl) Create(ctx context.Context, log *entity.SystemLog) error {
	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	m, err := r.mapper.ToModel(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *SystemLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SystemLog, error) {
	var models []*model.SystemLog
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.SystemLog, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ToEntity(m))
	}
	return out, nil
}
