package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/model"
	"github.com/maelig/balade-reservation/internal/queue"
	queue_publisher "github.com/maelig/balade-reservation/internal/service"
)

// fail writes the standard error envelope.  Every handler answers
// through ok/fail so clients can branch on the success flag alone.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// parseID extracts a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("identifiant invalide")
	}
	return id, nil
}

// inventoryError maps the manager's sentinel errors to HTTP answers.
// Seat shortage, double cancellation, bad status transitions and write
// collisions are all conflicts: the request was well formed but the
// current state refuses it.  A non-positive seat count is the caller's
// fault and answers 400.
func inventoryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidSeatCount):
		return fail(c, http.StatusBadRequest, "nombre de personnes invalide")
	case errors.Is(err, inventory.ErrBaladeNotFound):
		return fail(c, http.StatusNotFound, "balade introuvable")
	case errors.Is(err, inventory.ErrReservationNotFound):
		return fail(c, http.StatusNotFound, "reservation introuvable")
	case errors.Is(err, inventory.ErrInsufficientSeats):
		return fail(c, http.StatusConflict, "plus assez de places disponibles")
	case errors.Is(err, inventory.ErrAlreadyCancelled):
		return fail(c, http.StatusConflict, "reservation deja annulee")
	case errors.Is(err, inventory.ErrInvalidTransition):
		return fail(c, http.StatusConflict, "changement de statut impossible")
	case errors.Is(err, inventory.ErrConflict):
		return fail(c, http.StatusConflict, "conflit d'ecriture, veuillez reessayer")
	default:
		return fail(c, http.StatusInternalServerError, "erreur interne")
	}
}

// reservationEmail builds the outbound email event for a reservation
// lifecycle step.  The balade may be nil when the lookup failed; the
// mailer renders what it gets.
func reservationEmail(kind queue.EmailKind, r *model.Reservation, b *model.Balade) queue.EmailRequestedEvent {
	ev := queue.EmailRequestedEvent{
		Kind:            kind,
		To:              r.Email,
		Nom:             r.Nom,
		Prenom:          r.Prenom,
		NombrePersonnes: r.NombrePersonnes,
		Reference:       r.Reference,
	}
	if b != nil {
		ev.BaladeTheme = b.Theme
		ev.BaladeDate = b.Date.Format("02/01/2006")
		ev.BaladeHeure = b.Heure
		ev.BaladeLieu = b.Lieu
	}
	return ev
}

// enqueueEmail publishes the event from a detached goroutine.  The
// reservation is already committed when this runs; a broker outage is
// logged and the HTTP response is not affected.
func enqueueEmail(ev queue.EmailRequestedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishEmailRequested(ctx, ev); err != nil {
			log.Printf("[handler] email enqueue failed kind=%s to=%s: %v", ev.Kind, ev.To, err)
		}
	}()
}
