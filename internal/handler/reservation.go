package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/queue"
	"github.com/maelig/balade-reservation/internal/validate"
)

// ReservationHandler accepts public booking requests.  It is the only
// public write path into the seat inventory.
type ReservationHandler struct {
	Inv *inventory.Manager
}

func NewReservationHandler(inv *inventory.Manager) *ReservationHandler {
	if inv == nil {
		panic("nil manager passed to NewReservationHandler")
	}
	return &ReservationHandler{Inv: inv}
}

// Create handles POST /v1/reservations.  The payload is sanitized and
// validated first; the seat debit and the reservation row then commit
// in one transaction inside the manager.  The acknowledgement email is
// enqueued after the commit and never undoes it.
func (h *ReservationHandler) Create(c echo.Context) error {
	var in validate.ReservationInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "corps de requete invalide")
	}
	clean, res := validate.Reservation(in)
	if !res.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   "donnees invalides",
			"details": res.Errors,
		})
	}

	ctx := c.Request().Context()
	r, err := h.Inv.Reserve(ctx, inventory.ReserveRequest{
		BaladeID:        clean.BaladeID,
		Nom:             clean.Nom,
		Prenom:          clean.Prenom,
		Email:           clean.Email,
		NombrePersonnes: clean.NombrePersonnes,
		Message:         clean.Message,
	})
	if err != nil {
		return inventoryError(c, err)
	}

	b, err := h.Inv.Store().GetBalade(ctx, r.BaladeID)
	if err != nil {
		b = nil // email goes out without the balade details
	}
	enqueueEmail(reservationEmail(queue.EmailReservationRecue, r, b))

	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"reservation": r,
	})
}
