package implementation

import (
	"context"
	"path/filepath"
	"testing"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenGormQuiet(database.DriverSQLite, filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedCompany(t *testing.T, db *gorm.DB, code string) *entity.Company {
	t.Helper()
	company := &entity.Company{Code: code, Name: code + " Inc", IsActive: true}
	require.NoError(t, NewCompanyRepository(db).Create(context.Background(), company))
	return company
}
