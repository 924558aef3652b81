// Package services holds the data access and business rules behind the
// HTTP handlers. Every function takes the *gorm.DB it should run on, so
// callers decide the request context and tests can pass a private database.
package services

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// Kind classifies an expected failure for translation to an HTTP status.
type Kind int

const (
	// KindInvalid is a missing or malformed input.
	KindInvalid Kind = iota + 1
	KindNotFound
	// KindRule is a business-rule violation such as a duplicate name.
	KindRule
	// KindConflict is a clash with concurrent state such as exhausted stock.
	KindConflict
)

// Error is an expected failure whose message is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Rulef(format string, args ...any) error {
	return &Error{Kind: KindRule, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or 0 for unexpected errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ConfirmationRequiredError is returned when deleting a food that past
// sales still reference and the caller did not ask for a cascade.
type ConfirmationRequiredError struct {
	TransactionCount     int64      `json:"transaction_count"`
	FirstTransactionDate *time.Time `json:"first_transaction_date,omitempty"`
	LastTransactionDate  *time.Time `json:"last_transaction_date,omitempty"`
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("This food has been used in %d transaction item(s). Are you sure you want to delete it?", e.TransactionCount)
}
