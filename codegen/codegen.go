// Package codegen issues sequential human-readable codes such as MKN0001
// and TRX202401150001.
//
// The highest existing suffix in a scope is read inside the caller's
// database transaction. On dialects with row locks the read takes
// FOR UPDATE, so competing transactions queue behind the one that will
// insert the next code. A duplicate key on insert is retried with the next
// suffix a bounded number of times.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	FoodPrefix        = "MKN"
	TransactionPrefix = "TRX"

	// Width is the zero-padded length of the numeric suffix.
	Width = 4
	// MaxAttempts bounds inserts tried per Claim.
	MaxAttempts = 5

	dateLayout = "20060102"

	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	sqliteBusy           = 5
)

// ErrExhausted is returned when every attempt collided with an existing code.
var ErrExhausted = errors.New("code generation retries exhausted")

// Scope is the set of codes sharing a prefix in one column.
type Scope struct {
	Table  string
	Column string
	Prefix string
}

func FoodScope() Scope {
	return Scope{Table: "foods", Column: "code", Prefix: FoodPrefix}
}

// TransactionScope covers codes issued on the calendar day of t, so the
// counter restarts at 1 each day.
func TransactionScope(t time.Time) Scope {
	return Scope{Table: "transactions", Column: "code", Prefix: TransactionPrefix + t.Format(dateLayout)}
}

// Format renders prefix followed by n zero-padded to Width.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, Width, n)
}

// Parse returns the numeric suffix of code within scope.
func (s Scope) Parse(code string) (int, error) {
	if !strings.HasPrefix(code, s.Prefix) {
		return 0, errors.Newf("code %q outside scope %q", code, s.Prefix)
	}
	n, err := strconv.Atoi(code[len(s.Prefix):])
	if err != nil || n < 0 {
		return 0, errors.Newf("code %q has no numeric suffix", code)
	}
	return n, nil
}

// Max returns the highest suffix issued in scope, or 0 when none exists.
func Max(tx *gorm.DB, s Scope) (int, error) {
	q := tx.Table(s.Table).
		Select(s.Column).
		Where(s.Column+" LIKE ?", s.Prefix+"%").
		Order(fmt.Sprintf("LENGTH(%s) DESC, %s DESC", s.Column, s.Column)).
		Limit(1)
	if supportsRowLocks(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var codes []string
	if err := q.Pluck(s.Column, &codes).Error; err != nil {
		return 0, errors.Wrapf(err, "read max %s code", s.Prefix)
	}
	if len(codes) == 0 {
		return 0, nil
	}
	return s.Parse(codes[0])
}

// Claim picks the next code in scope and hands it to insert. When insert
// fails with a duplicate key the attempt is undone to a savepoint and the
// following suffix is tried. tx must be an open transaction, and insert
// must run its statements on it.
func Claim(tx *gorm.DB, s Scope, insert func(code string) error) (string, error) {
	last, err := Max(tx, s)
	if err != nil {
		return "", err
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code := Format(s.Prefix, last+attempt)
		savepoint := fmt.Sprintf("codegen_%d", attempt)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return "", errors.Wrap(err, "create savepoint")
		}

		err := insert(code)
		if err == nil {
			return code, nil
		}
		if !IsDuplicateKey(err) {
			return "", err
		}
		if err := tx.RollbackTo(savepoint).Error; err != nil {
			return "", errors.Wrap(err, "rollback to savepoint")
		}
	}
	return "", errors.Wrapf(ErrExhausted, "scope %s after %d attempts", s.Prefix, MaxAttempts)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// IsLockContention reports whether the database aborted a statement
// because another transaction held the lock it needed. MySQL has already
// rolled the whole transaction back by then, so callers must replay it
// from the start rather than retry within it.
func IsLockContention(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	var liteErr *gosqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqliteBusy
	}
	return false
}

// SQLite rejects FOR UPDATE. Its writers are serialised by opening every
// transaction IMMEDIATE (see config.SQLiteDSN).
func supportsRowLocks(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "sqlite"
}
