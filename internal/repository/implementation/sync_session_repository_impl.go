package implementation

import (
	"context"
	"errors"
	"time"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/mapper"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/internal/repository/contract"

	"gorm.io/gorm"
)

type SyncSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncSessionMapper
}

func NewSyncSessionRepository(db *gorm.DB) contract.SyncSessionRepository {
	return &SyncSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncSessionMapper(),
	}
}

func (r *SyncSessionRepositoryImpl) Create(ctx context.Context, session *entity.SyncSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if session.Status == "" {
		session.Status = entity.SessionActive
	}
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SyncSessionRepositoryImpl) FindByTicket(ctx context.Context, ticket string) (*entity.SyncSession, error) {
	var m model.SyncSession
	if err := r.db.WithContext(ctx).Where("ticket = ?", ticket).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SyncSessionRepositoryImpl) SetLastError(ctx context.Context, ticket, message string) error {
	return r.db.WithContext(ctx).Model(&model.SyncSession{}).
		Where("ticket = ?", ticket).
		Update("last_error", message).Error
}

func (r *SyncSessionRepositoryImpl) ClearLastError(ctx context.Context, ticket string) error {
	return r.db.WithContext(ctx).Model(&model.SyncSession{}).
		Where("ticket = ?", ticket).
		Update("last_error", gorm.Expr("NULL")).Error
}

func (r *SyncSessionRepositoryImpl) UpdateStatus(ctx context.Context, ticket string, status entity.SessionStatus) (bool, error) {
	updates := map[string]interface{}{"status": string(status)}
	if status != entity.SessionActive {
		updates["closed_at"] = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&model.SyncSession{}).
		Where("ticket = ? AND status = ?", ticket, string(entity.SessionActive)).
		Updates(updates)
	return result.RowsAffected == 1, result.Error
}
