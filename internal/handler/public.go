package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/model"
)

// defaultProchaines is how many upcoming balades the landing page
// shows when the caller does not ask for a specific count.
const defaultProchaines = 3

// PublicHandler serves the read-only balade catalogue.  No
// authentication: this is what visitors browse before booking.
type PublicHandler struct {
	Inv *inventory.Manager
}

func NewPublicHandler(inv *inventory.Manager) *PublicHandler {
	if inv == nil {
		panic("nil manager passed to NewPublicHandler")
	}
	return &PublicHandler{Inv: inv}
}

// ListBalades handles GET /v1/balades.  It returns every scheduled
// balade ordered by date then start time, each with its live seat
// count and a "complet" flag.
func (h *PublicHandler) ListBalades(c echo.Context) error {
	balades, err := h.Inv.Store().ListBalades(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "erreur interne")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"balades": baladeViews(balades),
	})
}

// GetBalade handles GET /v1/balades/:id.
func (h *PublicHandler) GetBalade(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	b, err := h.Inv.Store().GetBalade(c.Request().Context(), id)
	if err != nil {
		return inventoryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"balade":  baladeView(*b),
	})
}

// ProchainesBalades handles GET /v1/balades/prochaines.  It keeps only
// balades that are today or later and still have seats, orders them
// chronologically and returns the first N (query parameter "limite",
// default 3).
func (h *PublicHandler) ProchainesBalades(c echo.Context) error {
	limit := defaultProchaines
	if raw := c.QueryParam("limite"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fail(c, http.StatusBadRequest, "limite invalide")
		}
		limit = n
	}

	balades, err := h.Inv.Store().ListBalades(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "erreur interne")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	upcoming := make([]model.Balade, 0, len(balades))
	for _, b := range balades {
		if b.Date.Before(today) || b.Complete() {
			continue
		}
		upcoming = append(upcoming, b)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		if !upcoming[i].Date.Equal(upcoming[j].Date) {
			return upcoming[i].Date.Before(upcoming[j].Date)
		}
		return upcoming[i].Heure < upcoming[j].Heure
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"balades": baladeViews(upcoming),
	})
}

// baladePublic is the catalogue shape sent to visitors.  It embeds the
// model and adds the derived "complet" flag so the front end never
// recomputes it.
type baladePublic struct {
	model.Balade
	Complet bool `json:"complet"`
}

func baladeView(b model.Balade) baladePublic {
	return baladePublic{Balade: b, Complet: b.Complete()}
}

func baladeViews(bs []model.Balade) []baladePublic {
	out := make([]baladePublic, 0, len(bs))
	for _, b := range bs {
		out = append(out, baladeView(b))
	}
	return out
}
