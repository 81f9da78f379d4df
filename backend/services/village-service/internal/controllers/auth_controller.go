package controllers

import (
	"net/http"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-middleware"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// POST /api/v1/auth/register
func (c *AuthController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "RegisterHandler")

	var req dtos.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.authService.Register(r.Context(), req)
	if err != nil {
		logger.WithError(err).Warn("Registration failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("userID", user.ID).Info("Resident registered, awaiting approval")
	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegisterResponse{
		Message: "Registration received. The village office will review it shortly.",
		User:    *user,
	})
}

// POST /api/v1/auth/login
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := c.authService.Login(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   int(resp.ExpiresIn),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/logout clears the web session cookie. Bearer tokens
// simply expire.
func (c *AuthController) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Logged out"})
}

// GET /api/v1/auth/me
func (c *AuthController) MeHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	user, err := c.authService.Me(r.Context(), a.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// PUT /api/v1/auth/password
func (c *AuthController) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	a, err := actorFrom(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := c.authService.ChangePassword(r.Context(), a.UserID, req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConfirmationResponse{Message: "Password changed"})
}
