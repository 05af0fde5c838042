// Package repository implements the inventory store on MySQL using
// database/sql.  All seat mutations go through conditional UPDATEs or
// row locks inside a transaction; the availability check is re-run by
// the database at commit time, never as a separate read followed by a
// write.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/maelig/balade-reservation/internal/inventory"
)

// MySQL server error numbers that signal a concurrent-write collision.
const (
	mysqlErrDeadlock    = 1213
	mysqlErrLockTimeout = 1205
)

// Store provides persistence for balades and reservations.  It
// implements inventory.Store.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the raw handle for callers that need it (health checks,
// admin lookups sharing the pool).
func (s *Store) DB() *sql.DB { return s.db }

// InTx runs fn inside a database transaction.  The transaction is
// rolled back unless fn and the commit both succeed, so a partially
// applied reserve or release is never visible.  Deadlocks and lock
// timeouts are reported as inventory.ErrConflict so the manager can
// retry.
func (s *Store) InTx(ctx context.Context, fn func(tx inventory.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapConflict(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapConflict(err)
	}
	committed = true
	return nil
}

// sqlTx implements inventory.Tx over an open *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

// mapConflict rewrites MySQL deadlock and lock-wait-timeout errors to
// the retryable sentinel.  Everything else passes through untouched.
func mapConflict(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlErrDeadlock || me.Number == mysqlErrLockTimeout) {
		return inventory.ErrConflict
	}
	return err
}
