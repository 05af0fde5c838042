package repository

import (
	"context"
	"database/sql"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/model"
)

const baladeColumns = `id, theme, date_balade, heure, lieu, places_initiales, places_disponibles, created_at, updated_at`

func scanBalade(row interface {
	Scan(dest ...interface{}) error
}) (*model.Balade, error) {
	var b model.Balade
	err := row.Scan(
		&b.ID, &b.Theme, &b.Date, &b.Heure, &b.Lieu,
		&b.PlacesInitiales, &b.PlacesDisponibles,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBalade returns a single balade by ID.  It returns
// inventory.ErrBaladeNotFound when no row exists.
func (s *Store) GetBalade(ctx context.Context, id uint64) (*model.Balade, error) {
	const q = `SELECT ` + baladeColumns + ` FROM balades WHERE id = ?`
	b, err := scanBalade(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, inventory.ErrBaladeNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBalades returns all balades ordered by date then start time, so
// the public listing reads chronologically.
func (s *Store) ListBalades(ctx context.Context) ([]model.Balade, error) {
	const q = `SELECT ` + baladeColumns + ` FROM balades ORDER BY date_balade, heure, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	balades := make([]model.Balade, 0)
	for rows.Next() {
		b, err := scanBalade(rows)
		if err != nil {
			return nil, err
		}
		balades = append(balades, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return balades, nil
}

// BaladeIDs returns the IDs of every balade.  Used by the recount-all
// path so each balade can be repaired in its own short transaction.
func (s *Store) BaladeIDs(ctx context.Context) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM balades ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// TakeSeats debits count seats with a single conditional UPDATE.  The
// WHERE clause re-checks availability under the database's concurrency
// control, so the counter can never be driven negative even when two
// requests race for the last seats.
func (t *sqlTx) TakeSeats(ctx context.Context, baladeID uint64, count int) error {
	const q = `UPDATE balades
	           SET places_disponibles = places_disponibles - ?
	           WHERE id = ? AND places_disponibles >= ?`
	res, err := t.tx.ExecContext(ctx, q, count, baladeID, count)
	if err != nil {
		return mapConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the balade does not exist or it is short on seats;
		// tell them apart for the caller.
		if err := t.baladeExists(ctx, baladeID); err != nil {
			return err
		}
		return inventory.ErrInsufficientSeats
	}
	return nil
}

// CreditSeats returns count seats to the balade.  LEAST() caps the
// counter at places_initiales so a release after a manual correction
// cannot overshoot the capacity.
func (t *sqlTx) CreditSeats(ctx context.Context, baladeID uint64, count int) error {
	const q = `UPDATE balades
	           SET places_disponibles = LEAST(places_initiales, places_disponibles + ?)
	           WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, count, baladeID)
	if err != nil {
		return mapConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows both for a missing balade
		// and for a no-op credit already at the cap.
		return t.baladeExists(ctx, baladeID)
	}
	return nil
}

// BaladeForUpdate loads the balade under FOR UPDATE so reserve and
// release calls on the same row block until this transaction ends.
func (t *sqlTx) BaladeForUpdate(ctx context.Context, baladeID uint64) (*model.Balade, error) {
	const q = `SELECT ` + baladeColumns + ` FROM balades WHERE id = ? FOR UPDATE`
	b, err := scanBalade(t.tx.QueryRowContext(ctx, q, baladeID))
	if err == sql.ErrNoRows {
		return nil, inventory.ErrBaladeNotFound
	}
	if err != nil {
		return nil, mapConflict(err)
	}
	return b, nil
}

// ActiveSeats sums nombre_personnes over the balade's non-cancelled
// reservations.
func (t *sqlTx) ActiveSeats(ctx context.Context, baladeID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(nombre_personnes), 0)
	           FROM reservations
	           WHERE balade_id = ? AND statut <> ?`
	var total int
	if err := t.tx.QueryRowContext(ctx, q, baladeID, model.StatutAnnulee).Scan(&total); err != nil {
		return 0, mapConflict(err)
	}
	return total, nil
}

// SetSeats overwrites places_disponibles.  Only the recount path uses
// it, always after BaladeForUpdate on the same row.
func (t *sqlTx) SetSeats(ctx context.Context, baladeID uint64, value int) error {
	const q = `UPDATE balades SET places_disponibles = ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, value, baladeID)
	if err != nil {
		return mapConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return t.baladeExists(ctx, baladeID)
	}
	return nil
}

// baladeExists returns nil when the balade row exists and
// inventory.ErrBaladeNotFound otherwise.
func (t *sqlTx) baladeExists(ctx context.Context, baladeID uint64) error {
	var id uint64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM balades WHERE id = ?`, baladeID).Scan(&id)
	if err == sql.ErrNoRows {
		return inventory.ErrBaladeNotFound
	}
	if err != nil {
		return mapConflict(err)
	}
	return nil
}
