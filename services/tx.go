package services

import (
	"log"

	"foodpos-api/codegen"

	"gorm.io/gorm"
)

// MaxTxAttempts bounds how often a write transaction is replayed after the
// database aborted it over lock contention.
const MaxTxAttempts = 3

// transact runs fn in a transaction and replays it from the start when it
// loses a deadlock, a lock wait or a busy database. fn must rebuild any
// state it writes on each call.
func transact(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	for attempt := 1; attempt <= MaxTxAttempts; attempt++ {
		err := db.Transaction(fn)
		if !codegen.IsLockContention(err) {
			return err
		}
		log.Printf("transaction attempt %d/%d hit lock contention: %v", attempt, MaxTxAttempts, err)
	}
	return Conflictf("The database is busy, please retry")
}
