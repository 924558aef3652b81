package services

import (
	"testing"

	"foodpos-api/testutils"

	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTransactReplaysAfterDeadlock(t *testing.T) {
	db := testutils.OpenDB(t)

	calls := 0
	err := transact(db, func(tx *gorm.DB) error {
		calls++
		if calls == 1 {
			return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTransactGivesUpAsConflict(t *testing.T) {
	db := testutils.OpenDB(t)

	calls := 0
	err := transact(db, func(tx *gorm.DB) error {
		calls++
		return errors.Wrap(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, "insert")
	})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, MaxTxAttempts, calls)
}

func TestTransactPassesOtherErrors(t *testing.T) {
	db := testutils.OpenDB(t)
	boom := errors.New("boom")

	calls := 0
	err := transact(db, func(tx *gorm.DB) error {
		calls++
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, calls)
}
