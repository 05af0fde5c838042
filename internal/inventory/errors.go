// Package inventory owns the seat accounting for balades: it keeps
// places_disponibles consistent with the set of active reservations and
// provides reserve/release/recount operations that are safe when
// invoked concurrently for the same balade.  These sentinel values let
// handlers distinguish failure classes: a sold-out balade is a business
// outcome shown to the visitor, while a storage conflict is a retryable
// infrastructure condition.
package inventory

import "errors"

// ErrInsufficientSeats is returned by Reserve when the balade does not
// have enough remaining seats at commit time.  Handlers should
// translate this into an HTTP 409 response.
var ErrInsufficientSeats = errors.New("insufficient seats")

// ErrInvalidSeatCount is returned by Reserve when the requested number
// of seats is not a positive integer.  A malformed request, not a
// sold-out balade: handlers answer 400, not 409.
var ErrInvalidSeatCount = errors.New("invalid seat count")

// ErrBaladeNotFound is returned when the referenced balade does not
// exist.
var ErrBaladeNotFound = errors.New("balade not found")

// ErrReservationNotFound is returned when the referenced reservation
// does not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyCancelled is returned by Release when the reservation has
// already been cancelled.  Seats are never credited twice.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrInvalidTransition is returned when a status change is not allowed
// by the reservation state machine, such as accepting a cancelled
// reservation.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict is returned when the store reports a concurrent-write
// collision that persisted through the manager's bounded retries.
// Callers may retry the whole operation.
var ErrConflict = errors.New("conflict")
