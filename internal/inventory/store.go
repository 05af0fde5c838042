package inventory

import (
	"context"

	"github.com/maelig/balade-reservation/internal/model"
)

// ReservationFilter narrows ListReservations.  Zero values mean "no
// filter" for that field.
type ReservationFilter struct {
	BaladeID uint64 // restrict to one balade
	Statut   string // restrict to one status value
}

// Store is the persistence contract the manager runs against.  The
// production implementation lives in internal/repository on MySQL; an
// in-memory implementation ships in this package for tests and local
// development.
//
// InTx runs fn inside one atomic unit: either every write performed
// through the Tx is committed, or none is.  Implementations must make
// concurrent InTx calls touching the same balade serialize with
// respect to each other, and may fail fn (or the commit) with
// ErrConflict when they detect a collision; the manager retries a
// bounded number of times.
type Store interface {
	GetBalade(ctx context.Context, id uint64) (*model.Balade, error)
	ListBalades(ctx context.Context) ([]model.Balade, error)
	BaladeIDs(ctx context.Context) ([]uint64, error)

	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)

	// SetPresence records the attendance flag.  Pure metadata: no
	// seat counts involved, so no transaction needed.  Returns
	// ErrReservationNotFound for an unknown ID.
	SetPresence(ctx context.Context, id uint64, present bool) error

	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the writes available inside a Store transaction.
type Tx interface {
	// TakeSeats conditionally debits count seats from the balade.
	// The availability check and the decrement are one atomic
	// conditional write: it fails with ErrInsufficientSeats when
	// fewer than count seats remain at commit time, never leaving a
	// negative counter behind.
	TakeSeats(ctx context.Context, baladeID uint64, count int) error

	// CreditSeats returns count seats to the balade, capped at
	// places_initiales.
	CreditSeats(ctx context.Context, baladeID uint64, count int) error

	// BaladeForUpdate loads the balade and blocks concurrent writers
	// to it until the transaction ends.
	BaladeForUpdate(ctx context.Context, baladeID uint64) (*model.Balade, error)

	// ActiveSeats sums nombre_personnes over the balade's
	// non-cancelled reservations.
	ActiveSeats(ctx context.Context, baladeID uint64) (int, error)

	// SetSeats overwrites places_disponibles.  Only recount uses it,
	// always under BaladeForUpdate.
	SetSeats(ctx context.Context, baladeID uint64, value int) error

	// CreateReservation inserts the reservation and fills in its
	// generated ID and timestamps.
	CreateReservation(ctx context.Context, res *model.Reservation) error

	ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error)
	SetReservationStatus(ctx context.Context, id uint64, statut string) error
}
