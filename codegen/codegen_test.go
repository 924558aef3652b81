package codegen_test

import (
	"testing"
	"time"

	"foodpos-api/codegen"
	"foodpos-api/models"
	"foodpos-api/testutils"

	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFormatAndParse(t *testing.T) {
	assert.Equal(t, "MKN0001", codegen.Format(codegen.FoodPrefix, 1))
	assert.Equal(t, "MKN0123", codegen.Format(codegen.FoodPrefix, 123))
	assert.Equal(t, "MKN12345", codegen.Format(codegen.FoodPrefix, 12345))

	day := time.Date(2024, 1, 15, 13, 0, 0, 0, time.Local)
	s := codegen.TransactionScope(day)
	assert.Equal(t, "TRX20240115", s.Prefix)
	assert.Equal(t, "TRX202401150007", codegen.Format(s.Prefix, 7))

	n, err := s.Parse("TRX202401150042")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = s.Parse("TRX202401160001")
	assert.Error(t, err)
	_, err = codegen.FoodScope().Parse("MKNabc")
	assert.Error(t, err)
}

func TestMaxFoods(t *testing.T) {
	db := testutils.OpenDB(t)

	n, err := codegen.Max(db, codegen.FoodScope())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	cat := testutils.CreateCategory(t, db, "Food")
	testutils.CreateFood(t, db, cat.ID, "MKN0009", "Rice", "1", 1)
	testutils.CreateFood(t, db, cat.ID, "MKN0010", "Noodles", "1", 1)
	testutils.CreateFood(t, db, cat.ID, "MKN10000", "Soup", "1", 1)

	n, err = codegen.Max(db, codegen.FoodScope())
	require.NoError(t, err)
	assert.Equal(t, 10000, n)
}

func TestMaxTransactionsRestartsEachDay(t *testing.T) {
	db := testutils.OpenDB(t)
	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)

	for _, code := range []string{"TRX202401150001", "TRX202401150002"} {
		require.NoError(t, db.Create(&models.Transaction{
			Code:            code,
			TransactionDate: day,
			PaymentMethod:   models.PaymentCash,
			Status:          models.TransactionCompleted,
			Subtotal:        decimal.Zero,
		}).Error)
	}

	n, err := codegen.Max(db, codegen.TransactionScope(day))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = codegen.Max(db, codegen.TransactionScope(day.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestClaimRetriesOnDuplicate(t *testing.T) {
	db := testutils.OpenDB(t)
	cat := testutils.CreateCategory(t, db, "Food")
	testutils.CreateFood(t, db, cat.ID, "MKN0001", "Rice", "1", 1)

	calls := 0
	var code string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		code, err = codegen.Claim(tx, codegen.FoodScope(), func(code string) error {
			calls++
			if calls == 1 {
				// a code another writer already took
				code = "MKN0001"
			}
			return tx.Omit("Category").Create(&models.Food{
				Code: code, Name: "Noodles", CategoryID: cat.ID, Status: models.FoodAvailable,
			}).Error
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "MKN0003", code)

	var count int64
	require.NoError(t, db.Model(&models.Food{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestClaimExhausted(t *testing.T) {
	db := testutils.OpenDB(t)
	cat := testutils.CreateCategory(t, db, "Food")
	testutils.CreateFood(t, db, cat.ID, "MKN0001", "Rice", "1", 1)

	calls := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := codegen.Claim(tx, codegen.FoodScope(), func(string) error {
			calls++
			return tx.Omit("Category").Create(&models.Food{
				Code: "MKN0001", Name: "Noodles", CategoryID: cat.ID, Status: models.FoodAvailable,
			}).Error
		})
		return err
	})
	assert.True(t, errors.Is(err, codegen.ErrExhausted))
	assert.Equal(t, codegen.MaxAttempts, calls)
}

func TestClaimPassesOtherErrors(t *testing.T) {
	db := testutils.OpenDB(t)
	boom := errors.New("boom")

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := codegen.Claim(tx, codegen.FoodScope(), func(string) error { return boom })
		return err
	})
	assert.True(t, errors.Is(err, boom))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, codegen.IsDuplicateKey(nil))
	assert.True(t, codegen.IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, codegen.IsDuplicateKey(errors.Wrap(gorm.ErrDuplicatedKey, "insert")))
	assert.True(t, codegen.IsDuplicateKey(errors.New("Error 1062: Duplicate entry 'MKN0001' for key 'code'")))
	assert.False(t, codegen.IsDuplicateKey(errors.New("connection refused")))
}

func TestIsLockContention(t *testing.T) {
	assert.False(t, codegen.IsLockContention(nil))
	assert.True(t, codegen.IsLockContention(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}))
	assert.True(t, codegen.IsLockContention(errors.Wrap(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, "insert")))
	assert.False(t, codegen.IsLockContention(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, codegen.IsLockContention(gorm.ErrDuplicatedKey))
	assert.False(t, codegen.IsLockContention(errors.New("database is locked")))
}
