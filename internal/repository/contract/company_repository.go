package contract

import (
	"context"

	"qbwc-sync-be/internal/entity"

	"github.com/google/uuid"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	FindByCode(ctx context.Context, code string) (*entity.Company, error)
	FindByIDPrefix(ctx context.Context, prefix string) (*entity.Company, error)
}
