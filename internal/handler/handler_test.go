package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelig/balade-reservation/internal/inventory"
	"github.com/maelig/balade-reservation/internal/model"
)

type testEnv struct {
	e     *echo.Echo
	store *inventory.MemoryStore
	inv   *inventory.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := inventory.NewMemoryStore()
	return &testEnv{
		e:     echo.New(),
		store: store,
		inv:   inventory.New(store),
	}
}

func (env *testEnv) addBalade(places int, date time.Time) uint64 {
	return env.store.AddBalade(model.Balade{
		Theme:             "Les lavoirs du vieux bourg",
		Date:              date,
		Heure:             "14:30",
		Lieu:              "Place de l'eglise",
		PlacesInitiales:   places,
		PlacesDisponibles: places,
	})
}

func (env *testEnv) jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestReservationHandler_Create(t *testing.T) {
	tomorrow := time.Now().UTC().Add(24 * time.Hour)

	t.Run("books seats and answers 201", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(8, tomorrow)
		h := NewReservationHandler(env.inv)

		body := `{"balade_id":` + strconv.FormatUint(id, 10) + `,"nom":"Durand","prenom":"Claire","email":"claire@example.fr","nombre_personnes":3}`
		c, rec := env.jsonRequest(http.MethodPost, "/v1/reservations", body)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		got := decodeBody(t, rec)
		assert.Equal(t, true, got["success"])
		r := got["reservation"].(map[string]any)
		assert.Equal(t, model.StatutEnAttente, r["statut"])
		assert.NotEmpty(t, r["reference"])

		b, err := env.store.GetBalade(c.Request().Context(), id)
		require.NoError(t, err)
		assert.Equal(t, 5, b.PlacesDisponibles)
	})

	t.Run("rejects invalid payload with details", func(t *testing.T) {
		env := newTestEnv(t)
		env.addBalade(8, tomorrow)
		h := NewReservationHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodPost, "/v1/reservations", `{"balade_id":1,"nom":"","prenom":"Claire","email":"pas-un-email","nombre_personnes":0}`)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		got := decodeBody(t, rec)
		assert.Equal(t, false, got["success"])
		assert.NotEmpty(t, got["details"])
	})

	t.Run("answers 409 when not enough seats", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(2, tomorrow)
		h := NewReservationHandler(env.inv)

		body := `{"balade_id":` + strconv.FormatUint(id, 10) + `,"nom":"Durand","prenom":"Claire","email":"claire@example.fr","nombre_personnes":3}`
		c, rec := env.jsonRequest(http.MethodPost, "/v1/reservations", body)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusConflict, rec.Code)

		b, err := env.store.GetBalade(c.Request().Context(), id)
		require.NoError(t, err)
		assert.Equal(t, 2, b.PlacesDisponibles, "failed booking must not touch the count")
	})

	t.Run("answers 404 for unknown balade", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewReservationHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodPost, "/v1/reservations", `{"balade_id":42,"nom":"Durand","prenom":"Claire","email":"claire@example.fr","nombre_personnes":1}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPublicHandler_Balades(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour)

	t.Run("lists balades with complet flag", func(t *testing.T) {
		env := newTestEnv(t)
		env.addBalade(0, future)
		env.addBalade(5, future)
		h := NewPublicHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/balades", "")
		require.NoError(t, h.ListBalades(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody(t, rec)
		items := got["balades"].([]any)
		require.Len(t, items, 2)
		full := items[0].(map[string]any)
		assert.Equal(t, true, full["complet"])
	})

	t.Run("get by id answers 404 when missing", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewPublicHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/balades/7", "")
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.GetBalade(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("prochaines drops past and full balades", func(t *testing.T) {
		env := newTestEnv(t)
		env.addBalade(5, time.Now().UTC().Add(-48*time.Hour)) // past
		env.addBalade(0, future)                              // full
		wantID := env.addBalade(5, future)
		h := NewPublicHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/balades/prochaines", "")
		require.NoError(t, h.ProchainesBalades(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody(t, rec)
		items := got["balades"].([]any)
		require.Len(t, items, 1)
		only := items[0].(map[string]any)
		assert.Equal(t, float64(wantID), only["id"])
	})

	t.Run("prochaines honours the limite parameter", func(t *testing.T) {
		env := newTestEnv(t)
		for i := 0; i < 5; i++ {
			env.addBalade(5, future.Add(time.Duration(i)*24*time.Hour))
		}
		h := NewPublicHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/balades/prochaines?limite=2", "")
		require.NoError(t, h.ProchainesBalades(c))

		got := decodeBody(t, rec)
		assert.Len(t, got["balades"].([]any), 2)
	})

	t.Run("prochaines rejects a bad limite", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewPublicHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/balades/prochaines?limite=zero", "")
		require.NoError(t, h.ProchainesBalades(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQuestionHandler_Create(t *testing.T) {
	t.Setenv("CONTACT_EMAIL", "bureau@example.fr")

	t.Run("accepts a valid question", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewQuestionHandler()

		c, rec := env.jsonRequest(http.MethodPost, "/v1/questions", `{"nom":"Martin","email":"martin@example.fr","message":"Le depart est-il accessible en poussette ?"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("rejects an empty message", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewQuestionHandler()

		c, rec := env.jsonRequest(http.MethodPost, "/v1/questions", `{"nom":"Martin","email":"martin@example.fr","message":""}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// reserve books through the manager directly so admin tests start from
// a committed reservation.
func (env *testEnv) reserve(t *testing.T, baladeID uint64, persons int) *model.Reservation {
	t.Helper()
	r, err := env.inv.Reserve(t.Context(), inventory.ReserveRequest{
		BaladeID:        baladeID,
		Nom:             "Durand",
		Prenom:          "Claire",
		Email:           "claire@example.fr",
		NombrePersonnes: persons,
	})
	require.NoError(t, err)
	return r
}

func TestAdminHandler_Reservations(t *testing.T) {
	tomorrow := time.Now().UTC().Add(24 * time.Hour)

	t.Run("accept confirms and keeps the seats", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(6, tomorrow)
		r := env.reserve(t, id, 4)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodPost, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(r.ID, 10))
		require.NoError(t, h.AcceptReservation(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody(t, rec)
		assert.Equal(t, model.StatutConfirmee, got["reservation"].(map[string]any)["statut"])

		b, err := env.store.GetBalade(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, 2, b.PlacesDisponibles)
	})

	t.Run("cancel credits the seats back", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(6, tomorrow)
		r := env.reserve(t, id, 4)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodDelete, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(r.ID, 10))
		require.NoError(t, h.CancelReservation(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		b, err := env.store.GetBalade(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, 6, b.PlacesDisponibles)

		// a second cancellation must not credit again
		c2, rec2 := env.jsonRequest(http.MethodDelete, "/", "")
		c2.SetParamNames("id")
		c2.SetParamValues(strconv.FormatUint(r.ID, 10))
		require.NoError(t, h.CancelReservation(c2))
		assert.Equal(t, http.StatusConflict, rec2.Code)

		b, err = env.store.GetBalade(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, 6, b.PlacesDisponibles)
	})

	t.Run("accept after cancel answers 409", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(6, tomorrow)
		r := env.reserve(t, id, 2)
		_, err := env.inv.Release(t.Context(), r.ID)
		require.NoError(t, err)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodPost, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(r.ID, 10))
		require.NoError(t, h.AcceptReservation(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("presence flag round-trip", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(6, tomorrow)
		r := env.reserve(t, id, 2)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodPatch, "/", `{"present":true}`)
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(r.ID, 10))
		require.NoError(t, h.SetPresence(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		stored, err := env.store.GetReservation(t.Context(), r.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Present)
		assert.True(t, *stored.Present)
	})

	t.Run("presence requires the flag", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(6, tomorrow)
		r := env.reserve(t, id, 2)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodPatch, "/", `{}`)
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(r.ID, 10))
		require.NoError(t, h.SetPresence(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list filters by statut", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.addBalade(10, tomorrow)
		env.reserve(t, id, 1)
		r2 := env.reserve(t, id, 2)
		_, err := env.inv.Accept(t.Context(), r2.ID)
		require.NoError(t, err)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/admin/reservations?statut=confirmee", "")
		require.NoError(t, h.ListReservations(c))

		got := decodeBody(t, rec)
		items := got["reservations"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, float64(r2.ID), items[0].(map[string]any)["id"])
	})

	t.Run("list rejects an unknown statut", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewAdminHandler(env.inv)

		c, rec := env.jsonRequest(http.MethodGet, "/v1/admin/reservations?statut=paye", "")
		require.NoError(t, h.ListReservations(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandler_RecountSeats(t *testing.T) {
	env := newTestEnv(t)
	id := env.addBalade(6, time.Now().UTC().Add(24*time.Hour))
	env.reserve(t, id, 4)
	env.store.CorruptSeats(id, -3)
	h := NewAdminHandler(env.inv)

	c, rec := env.jsonRequest(http.MethodPost, "/v1/admin/balades/corriger-places", `{"balade_id":`+strconv.FormatUint(id, 10)+`}`)
	require.NoError(t, h.RecountSeats(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	corrections := got["corrections"].([]any)
	require.Len(t, corrections, 1)
	fix := corrections[0].(map[string]any)
	assert.Equal(t, true, fix["corrige"])
	assert.Equal(t, float64(-3), fix["places_avant"])
	assert.Equal(t, float64(2), fix["places_apres"])

	b, err := env.store.GetBalade(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, b.PlacesDisponibles)
}
