package handler

import (
	"encoding/json"
	"net/http"

	"github.com/madac4/doCreate-server/internal/config"
	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/middleware"
	"github.com/madac4/doCreate-server/internal/service"
)

// AuthHandler обрабатывает эндпоинты аутентификации
type AuthHandler struct {
	authService *service.AuthService
	jwt         config.JWTConfig
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService, jwt config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwt:         jwt,
	}
}

// LoginRequest представляет тело запроса на логин
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет тело ответа на логин
type LoginResponse struct {
	Success     bool         `json:"success"`
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// Login обрабатывает POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		RespondWithError(w, r, http.StatusBadRequest, "please enter email and password")
		return
	}

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Success:     true,
		User:        user,
		AccessToken: pair.AccessToken,
	})
}

// MessageResponse представляет ответ, состоящий только из сообщения
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Logout обрабатывает GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		RespondWithError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID.Hex()); err != nil {
		HandleError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Logged out",
	})
}

// RefreshResponse представляет ответ на обновление access токена
type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
}

// Refresh обрабатывает GET /refresh: проверяет refresh cookie и
// перевыпускает обе cookie
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		RespondWithError(w, r, http.StatusBadRequest, domain.ErrRefreshSession.Error())
		return
	}

	_, pair, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	RespondWithJSON(w, r, http.StatusOK, RefreshResponse{
		Success:     true,
		AccessToken: pair.AccessToken,
	})
}

// setSessionCookies выставляет обе сессионные cookie с фиксированными
// сроками жизни
func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.jwt.AccessExpiry().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.jwt.RefreshExpiry().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies немедленно гасит обе сессионные cookie
func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
