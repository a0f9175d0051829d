package persistence

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// newTestDB opens an isolated in-memory SQLite database with the service
// schema. The advice log model is excluded: it uses a native PostgreSQL
// array column.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.ExpenseModel{},
		&model.IncomeModel{},
		&model.MonthlyAggregateModel{},
		&model.AggregateEntryModel{},
		&model.DashboardCacheModel{},
		&model.DashboardItemModel{},
		&model.TokenLedgerModel{},
		&model.DeletionSagaModel{},
		&model.OutboxMessageModel{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}
