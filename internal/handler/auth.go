package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/config"
	"github.com/maelig/balade-reservation/internal/repository"
	"github.com/maelig/balade-reservation/internal/utils"
)

// AuthHandler bundles dependencies for the admin login endpoint.
type AuthHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
}

func NewAuthHandler(cfg config.Config, admins *repository.AdminRepo) *AuthHandler {
	if admins == nil {
		panic("nil admin repo passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Admins: admins}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /v1/auth/login.  It verifies the admin's
// credentials and returns a short-lived access token.  Unknown email
// and wrong password answer with the same message so accounts cannot
// be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "corps de requete invalide")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email et mot de passe requis")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	admin, err := h.Admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrAdminNotFound {
			return fail(c, http.StatusUnauthorized, "identifiants invalides")
		}
		return fail(c, http.StatusInternalServerError, "erreur interne")
	}
	if !utils.VerifyPassword(admin.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "identifiants invalides")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, admin.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "erreur interne")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   access.Token,
		"expires": access.Exp,
	})
}
