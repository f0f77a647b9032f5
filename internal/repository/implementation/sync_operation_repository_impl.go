package implementation

import (
	"context"
	"errors"
	"time"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/mapper"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/internal/repository/contract"
	"qbwc-sync-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncOperationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncOperationMapper
}

func NewSyncOperationRepository(db *gorm.DB) contract.SyncOperationRepository {
	return &SyncOperationRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncOperationMapper(),
	}
}

func (r *SyncOperationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SyncOperationRepositoryImpl) Enqueue(ctx context.Context, companyID uuid.UUID, ops []*entity.SyncOperation) error {
	if len(ops) == 0 {
		return nil
	}

	var next int
	err := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(MAX(sequence), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	models := make([]*model.SyncOperation, 0, len(ops))
	for i, op := range ops {
		if op.Id == uuid.Nil {
			op.Id = uuid.New()
		}
		op.CompanyId = companyID
		op.Status = entity.OperationPending
		op.SessionTicket = ""
		op.Sequence = next + i
		op.CreatedAt = now

		m, err := r.mapper.ToModel(op)
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *SyncOperationRepositoryImpl) CountPending(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return r.Count(ctx,
		specification.ByCompanyID{CompanyID: companyID},
		specification.WithStatus(entity.OperationPending),
		specification.Unclaimed{},
	)
}

func (r *SyncOperationRepositoryImpl) ClaimPending(ctx context.Context, companyID uuid.UUID, ticket string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("company_id = ? AND status = ? AND session_ticket IS NULL", companyID, string(entity.OperationPending)).
		Updates(map[string]interface{}{
			"session_ticket": ticket,
			"claimed_at":     time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *SyncOperationRepositoryImpl) CancelPending(ctx context.Context, companyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("company_id = ? AND status = ? AND session_ticket IS NULL", companyID, string(entity.OperationPending)).
		Updates(map[string]interface{}{
			"status":       string(entity.OperationCancelled),
			"completed_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *SyncOperationRepositoryImpl) FindNextForTicket(ctx context.Context, ticket string) (*entity.SyncOperation, error) {
	var m model.SyncOperation
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByTicket{Ticket: ticket},
		specification.WithStatus(entity.OperationPending, entity.OperationSent),
		specification.QueueOrder{},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SyncOperationRepositoryImpl) MarkSent(ctx context.Context, id uuid.UUID, requestXML string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("id = ? AND status = ?", id, string(entity.OperationPending)).
		Updates(map[string]interface{}{
			"status":      string(entity.OperationSent),
			"request_xml": requestXML,
			"sent_at":     time.Now().UTC(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *SyncOperationRepositoryImpl) Complete(ctx context.Context, id uuid.UUID, responseXML, errorMessage string) (bool, error) {
	status := entity.OperationCompleted
	updates := map[string]interface{}{
		"response_xml": responseXML,
		"completed_at": time.Now().UTC(),
	}
	if errorMessage != "" {
		status = entity.OperationErrored
		updates["error_message"] = errorMessage
	}
	updates["status"] = string(status)

	result := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("id = ? AND status IN ?", id, []string{string(entity.OperationPending), string(entity.OperationSent)}).
		Updates(updates)
	return result.RowsAffected == 1, result.Error
}

func (r *SyncOperationRepositoryImpl) MarkErrored(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("id = ? AND status = ?", id, string(entity.OperationCompleted)).
		Updates(map[string]interface{}{
			"status":        string(entity.OperationErrored),
			"error_message": errorMessage,
		}).Error
}

func (r *SyncOperationRepositoryImpl) AbandonTicket(ctx context.Context, ticket, unsentMessage, inFlightMessage string) (int64, int64, error) {
	now := time.Now().UTC()
	unsent := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("session_ticket = ? AND status = ?", ticket, string(entity.OperationPending)).
		Updates(map[string]interface{}{
			"status":        string(entity.OperationCancelled),
			"error_message": unsentMessage,
			"completed_at":  now,
		})
	if unsent.Error != nil {
		return 0, 0, unsent.Error
	}

	inFlight := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Where("session_ticket = ? AND status = ?", ticket, string(entity.OperationSent)).
		Updates(map[string]interface{}{
			"status":        string(entity.OperationErrored),
			"error_message": inFlightMessage,
			"completed_at":  now,
		})
	return unsent.RowsAffected, inFlight.RowsAffected, inFlight.Error
}

func (r *SyncOperationRepositoryImpl) CountByTicket(ctx context.Context, ticket string) (int64, int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&model.SyncOperation{}).
		Select("status, COUNT(*) AS n").
		Where("session_ticket = ?", ticket).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	var total, finished int64
	for _, row := range rows {
		total += row.N
		if entity.OperationStatus(row.Status).Finished() {
			finished += row.N
		}
	}
	return total, finished, nil
}

func (r *SyncOperationRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.SyncOperation, error) {
	var m model.SyncOperation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SyncOperationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncOperation, error) {
	var models []*model.SyncOperation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SyncOperationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SyncOperation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
