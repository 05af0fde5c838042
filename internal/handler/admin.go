package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/model"
	"github.com/maelig/balade-reservation/internal/queue"
)

// AdminHandler groups the back-office operations on reservations and
// balades.  JWT authentication and the ADMIN role gate run in
// middleware before any of these methods.
type AdminHandler struct {
	Inv *inventory.Manager
}

func NewAdminHandler(inv *inventory.Manager) *AdminHandler {
	if inv == nil {
		panic("nil manager passed to NewAdminHandler")
	}
	return &AdminHandler{Inv: inv}
}

// ListReservations handles GET /v1/admin/reservations.  Optional query
// parameters balade_id and statut narrow the list.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	var f inventory.ReservationFilter
	if raw := c.QueryParam("balade_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return fail(c, http.StatusBadRequest, "balade_id invalide")
		}
		f.BaladeID = id
	}
	if s := c.QueryParam("statut"); s != "" {
		switch s {
		case model.StatutEnAttente, model.StatutConfirmee, model.StatutAnnulee:
			f.Statut = s
		default:
			return fail(c, http.StatusBadRequest, "statut invalide")
		}
	}

	items, err := h.Inv.Store().ListReservations(c.Request().Context(), f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "erreur interne")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"reservations": items,
	})
}

// AcceptReservation handles POST /v1/admin/reservations/:id/accepter.
// It moves the reservation to confirmee and queues the confirmation
// email.  Accepting an already confirmed reservation is a no-op.
func (h *AdminHandler) AcceptReservation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	r, err := h.Inv.Accept(ctx, id)
	if err != nil {
		return inventoryError(c, err)
	}

	b, err := h.Inv.Store().GetBalade(ctx, r.BaladeID)
	if err != nil {
		b = nil
	}
	enqueueEmail(reservationEmail(queue.EmailReservationConfirmee, r, b))

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"reservation": r,
	})
}

// CancelReservation handles DELETE /v1/admin/reservations/:id.  The
// seats go back to the balade and the visitor is notified.  Cancelling
// twice answers 409 without crediting seats again.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	r, err := h.Inv.Release(ctx, id)
	if err != nil {
		return inventoryError(c, err)
	}

	b, err := h.Inv.Store().GetBalade(ctx, r.BaladeID)
	if err != nil {
		b = nil
	}
	enqueueEmail(reservationEmail(queue.EmailReservationAnnulee, r, b))

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"reservation": r,
	})
}

type presenceReq struct {
	Present *bool `json:"present"`
}

// SetPresence handles PATCH /v1/admin/reservations/:id/presence.  It
// records whether the group showed up on the day of the walk.  The
// flag never touches seat counts.
func (h *AdminHandler) SetPresence(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req presenceReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "corps de requete invalide")
	}
	if req.Present == nil {
		return fail(c, http.StatusBadRequest, "present est requis")
	}

	if err := h.Inv.MarkPresence(c.Request().Context(), id, *req.Present); err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"present": *req.Present,
	})
}

type recountReq struct {
	BaladeID uint64 `json:"balade_id"` // 0 means every balade
}

// RecountSeats handles POST /v1/admin/balades/corriger-places.  It
// recomputes places_disponibles from the active reservations for one
// balade, or all of them, and reports what changed.
func (h *AdminHandler) RecountSeats(c echo.Context) error {
	var req recountReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "corps de requete invalide")
	}

	results, err := h.Inv.Recount(c.Request().Context(), req.BaladeID)
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"corrections": results,
	})
}
