package unitofwork

import (
	"context"
	"path/filepath"
	"testing"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	db, err := database.OpenGormQuiet(database.DriverSQLite, filepath.Join(t.TempDir(), "uow.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	ctx := context.Background()

	factory := NewRepositoryFactory(db)
	uow := factory.NewUnitOfWork(ctx)

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))

	company := &entity.Company{Code: "T1", Name: "T1", IsActive: true}
	require.NoError(t, uow.CompanyRepository().Create(ctx, company))
	require.NoError(t, uow.Rollback())

	found, err := uow.CompanyRepository().FindByCode(ctx, "T1")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.CompanyRepository().Create(ctx, company))
	require.NoError(t, uow.Commit())

	found, err = uow.CompanyRepository().FindByCode(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Error(t, uow.Commit())
	assert.Error(t, uow.Rollback())
}
