package implementation

import (
	"context"
	"errors"
	"strings"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/mapper"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CompanyMapper
}

func NewCompanyRepository(db *gorm.DB) contract.CompanyRepository {
	return &CompanyRepositoryImpl{
		db:     db,
		mapper: mapper.NewCompanyMapper(),
	}
}

func (r *CompanyRepositoryImpl) Create(ctx context.Context, company *entity.Company) error {
	if company.Id == uuid.Nil {
		company.Id = uuid.New()
	}
	m := r.mapper.ToModel(company)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*company = *r.mapper.ToEntity(m)
	return nil
}

func (r *CompanyRepositoryImpl) first(query *gorm.DB) (*entity.Company, error) {
	var m model.Company
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CompanyRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CompanyRepositoryImpl) FindByCode(ctx context.Context, code string) (*entity.Company, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.first(r.db.WithContext(ctx).Where("LOWER(code) = ?", strings.ToLower(code)))
}

// FindByIDPrefix matches the leading characters of the canonical id text.
func (r *CompanyRepositoryImpl) FindByIDPrefix(ctx context.Context, prefix string) (*entity.Company, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || strings.ContainsAny(prefix, "%_") {
		return nil, nil
	}
	return r.first(r.db.WithContext(ctx).
		Where("CAST(id AS TEXT) LIKE ?", prefix+"%").
		Order("created_at ASC"))
}
