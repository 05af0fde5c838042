package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/model"
)

const reservationColumns = `id, balade_id, nom, prenom, email, nombre_personnes, message,
	statut, present, reference, payment_ref, montant_cents, created_at, updated_at`

func scanReservation(row interface {
	Scan(dest ...interface{}) error
}) (*model.Reservation, error) {
	var r model.Reservation
	var present sql.NullBool
	var paymentRef sql.NullString
	err := row.Scan(
		&r.ID, &r.BaladeID, &r.Nom, &r.Prenom, &r.Email,
		&r.NombrePersonnes, &r.Message, &r.Statut,
		&present, &r.Reference, &paymentRef, &r.MontantCents,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if present.Valid {
		p := present.Bool
		r.Present = &p
	}
	if paymentRef.Valid {
		ref := paymentRef.String
		r.PaymentRef = &ref
	}
	return &r, nil
}

// GetReservation returns a single reservation by ID.  It returns
// inventory.ErrReservationNotFound when no row exists.
func (s *Store) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, inventory.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReservations returns reservations matching the filter, newest
// first.  A zero filter returns everything.
func (s *Store) ListReservations(ctx context.Context, f inventory.ReservationFilter) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	var conds []string
	var args []interface{}
	if f.BaladeID != 0 {
		conds = append(conds, "balade_id = ?")
		args = append(args, f.BaladeID)
	}
	if f.Statut != "" {
		conds = append(conds, "statut = ?")
		args = append(args, f.Statut)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetPresence records the attendance flag outside any seat-count
// transaction; the flag is pure metadata.
func (s *Store) SetPresence(ctx context.Context, id uint64, present bool) error {
	const q = `UPDATE reservations SET present = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, present, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// identical flag value also reports zero affected rows
		var found uint64
		err := s.db.QueryRowContext(ctx, `SELECT id FROM reservations WHERE id = ?`, id).Scan(&found)
		if err == sql.ErrNoRows {
			return inventory.ErrReservationNotFound
		}
		return err
	}
	return nil
}

// CreateReservation inserts the reservation within the transaction and
// reads the row back to populate the generated ID and timestamps.
func (t *sqlTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (balade_id, nom, prenom, email, nombre_personnes, message, statut, reference, montant_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := t.tx.ExecContext(ctx, q,
		res.BaladeID, res.Nom, res.Prenom, res.Email,
		res.NombrePersonnes, res.Message, res.Statut, res.Reference, res.MontantCents,
	)
	if err != nil {
		return mapConflict(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := t.tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return mapConflict(err)
	}
	return nil
}

// ReservationForUpdate loads the reservation under FOR UPDATE so that
// two concurrent releases of the same reservation serialize, which is
// what keeps the cancellation idempotent.
func (t *sqlTx) ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	r, err := scanReservation(t.tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, inventory.ErrReservationNotFound
	}
	if err != nil {
		return nil, mapConflict(err)
	}
	return r, nil
}

// SetReservationStatus updates the statut column within the
// transaction.
func (t *sqlTx) SetReservationStatus(ctx context.Context, id uint64, statut string) error {
	const q = `UPDATE reservations SET statut = ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, statut, id)
	if err != nil {
		return mapConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrReservationNotFound
	}
	return nil
}
