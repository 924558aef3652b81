// Package testutils provides shared fixtures for package tests.
package testutils

import (
	"path/filepath"
	"testing"

	"foodpos-api/config"
	"foodpos-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory sqlite database private to t.
// The pool holds a single connection, so transactions run one at a time.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := config.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// OpenFileDB returns a migrated sqlite database file under t's temp dir.
// The pool is left at its defaults so concurrent callers get their own
// connections, as they would in production.
func OpenFileDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.Open("sqlite", filepath.Join(t.TempDir(), "foodpos.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// CreateFood inserts a food directly, bypassing code generation.
func CreateFood(t testing.TB, db *gorm.DB, categoryID uint, code, name, price string, stock int) models.Food {
	t.Helper()
	f := models.Food{
		Code:       code,
		Name:       name,
		CategoryID: categoryID,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Status:     models.FoodAvailable,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}

func Stock(t testing.TB, db *gorm.DB, foodID uint) int {
	t.Helper()
	var f models.Food
	require.NoError(t, db.First(&f, foodID).Error)
	return f.Stock
}

// Money asserts that got equals the decimal written in want.
func Money(t testing.TB, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
