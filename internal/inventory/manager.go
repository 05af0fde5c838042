package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/maelig/balade-reservation/internal/model"
)

// maxRetries bounds how many times an operation is replayed after the
// store reports a write collision.  Operations never spin forever; the
// final ErrConflict is surfaced to the caller.
const maxRetries = 3

// ReserveRequest carries the sanitized input for a new reservation.
// Validation happens at the HTTP boundary before the manager is
// reached; the manager still enforces the hard preconditions.
type ReserveRequest struct {
	BaladeID        uint64
	Nom             string
	Prenom          string
	Email           string
	NombrePersonnes int
	Message         string
	MontantCents    uint32
}

// RecountResult reports the outcome of a seat recount for one balade.
type RecountResult struct {
	BaladeID  uint64 `json:"balade_id"`
	Previous  int    `json:"places_avant"`
	Corrected int    `json:"places_apres"`
	Applied   bool   `json:"corrige"`
}

// Manager keeps places_disponibles consistent with the set of active
// reservations.  All mutating operations run inside a single store
// transaction so that the check-and-decrement, the reservation write
// and the status change commit or fail as one unit.
type Manager struct {
	store Store
}

// New returns a Manager backed by the given store.
func New(store Store) *Manager {
	if store == nil {
		panic("nil store passed to inventory.New")
	}
	return &Manager{store: store}
}

// Store exposes the underlying store for read-only callers such as the
// public listing handlers.
func (m *Manager) Store() Store { return m.store }

// Reserve atomically debits req.NombrePersonnes seats from the balade
// and persists a new en_attente reservation.  Both writes commit
// together or not at all.  The availability check happens inside the
// store's conditional write, so two simultaneous requests for the last
// remaining seats cannot both succeed: one gets the seats, the other
// gets ErrInsufficientSeats.
func (m *Manager) Reserve(ctx context.Context, req ReserveRequest) (*model.Reservation, error) {
	if req.NombrePersonnes < 1 {
		return nil, ErrInvalidSeatCount
	}
	var created *model.Reservation
	err := m.withRetry(ctx, func(tx Tx) error {
		created = nil
		if err := tx.TakeSeats(ctx, req.BaladeID, req.NombrePersonnes); err != nil {
			return err
		}
		res := &model.Reservation{
			BaladeID:        req.BaladeID,
			Nom:             req.Nom,
			Prenom:          req.Prenom,
			Email:           req.Email,
			NombrePersonnes: req.NombrePersonnes,
			Message:         req.Message,
			Statut:          model.StatutEnAttente,
			Reference:       uuid.NewString(),
			MontantCents:    req.MontantCents,
		}
		if err := tx.CreateReservation(ctx, res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Release cancels the reservation and credits its seats back to the
// balade, capped at places_initiales.  It is idempotent in effect: a
// second call finds the reservation already cancelled and returns
// ErrAlreadyCancelled without touching the seat count.
func (m *Manager) Release(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	var released *model.Reservation
	err := m.withRetry(ctx, func(tx Tx) error {
		released = nil
		res, err := tx.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Statut == model.StatutAnnulee {
			return ErrAlreadyCancelled
		}
		if err := tx.CreditSeats(ctx, res.BaladeID, res.NombrePersonnes); err != nil {
			return err
		}
		if err := tx.SetReservationStatus(ctx, res.ID, model.StatutAnnulee); err != nil {
			return err
		}
		res.Statut = model.StatutAnnulee
		released = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// Accept moves a pending reservation to confirmee.  Seat counts are
// untouched: the seats were already taken at reservation time.
func (m *Manager) Accept(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	var accepted *model.Reservation
	err := m.withRetry(ctx, func(tx Tx) error {
		accepted = nil
		res, err := tx.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		switch res.Statut {
		case model.StatutEnAttente:
			// the only transition into confirmee
		case model.StatutConfirmee:
			accepted = res
			return nil
		default:
			return ErrInvalidTransition
		}
		if err := tx.SetReservationStatus(ctx, res.ID, model.StatutConfirmee); err != nil {
			return err
		}
		res.Statut = model.StatutConfirmee
		accepted = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// Recount recomputes places_disponibles for one balade (baladeID > 0)
// or all balades (baladeID == 0) from first principles:
// places_initiales minus the sum of nombre_personnes over active
// reservations.  It repairs drift from manual edits or past bugs,
// including stored negative values.  Each balade is recounted in its
// own transaction under a row lock so the recount never races with
// Reserve or Release in a way that loses an update.
func (m *Manager) Recount(ctx context.Context, baladeID uint64) ([]RecountResult, error) {
	ids := []uint64{baladeID}
	if baladeID == 0 {
		var err error
		ids, err = m.store.BaladeIDs(ctx)
		if err != nil {
			return nil, err
		}
	}
	results := make([]RecountResult, 0, len(ids))
	for _, id := range ids {
		var r RecountResult
		err := m.withRetry(ctx, func(tx Tx) error {
			b, err := tx.BaladeForUpdate(ctx, id)
			if err != nil {
				return err
			}
			taken, err := tx.ActiveSeats(ctx, id)
			if err != nil {
				return err
			}
			corrected := b.PlacesInitiales - taken
			if corrected < 0 {
				// active reservations oversubscribe the capacity;
				// only possible after manual data edits
				corrected = 0
			}
			r = RecountResult{BaladeID: id, Previous: b.PlacesDisponibles, Corrected: corrected}
			if corrected != b.PlacesDisponibles {
				if err := tx.SetSeats(ctx, id, corrected); err != nil {
					return err
				}
				r.Applied = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// MarkPresence records whether the participant showed up.  Metadata
// only; seat counts are not affected.
func (m *Manager) MarkPresence(ctx context.Context, reservationID uint64, present bool) error {
	return m.store.SetPresence(ctx, reservationID, present)
}

// withRetry replays fn in a fresh transaction while the store reports
// ErrConflict, up to maxRetries attempts.
func (m *Manager) withRetry(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = m.store.InTx(ctx, fn)
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
