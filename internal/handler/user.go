package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/middleware"
	"github.com/madac4/doCreate-server/internal/service"
)

// UserHandler обрабатывает эндпоинты регистрации и профиля
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRequest представляет тело запроса на регистрацию
type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	TeamToken string `json:"teamToken,omitempty"`
}

// RegisterResponse представляет ответ на регистрацию: подписанный токен
// возвращается клиенту, код активации уходит по почте
type RegisterResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ActivationToken string `json:"activationToken"`
}

// Register обрабатывает POST /registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		RespondWithError(w, r, http.StatusBadRequest, "name, email and password are required")
		return
	}

	activationToken, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password, req.TeamToken)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, RegisterResponse{
		Success:         true,
		Message:         fmt.Sprintf("Please check your email: %s to activate your account", req.Email),
		ActivationToken: activationToken,
	})
}

// ActivateRequest представляет тело запроса на активацию
type ActivateRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

// UserResponse представляет ответ с профилем пользователя
type UserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

// Activate обрабатывает POST /activate-user
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ActivationToken == "" || req.ActivationCode == "" {
		RespondWithError(w, r, http.StatusBadRequest, "activation token and code are required")
		return
	}

	user, err := h.userService.Activate(r.Context(), req.ActivationToken, req.ActivationCode)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{
		Success: true,
		Message: "User activated successfully",
		User:    user,
	})
}

// Me обрабатывает GET /me: возвращает пользователя из кеша сессий
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		RespondWithError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{
		Success: true,
		User:    user,
	})
}

// UpdateInfoRequest представляет тело запроса на обновление профиля
type UpdateInfoRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UpdateInfo обрабатывает PUT /update-user
func (h *UserHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		RespondWithError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	var req UpdateInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateInfo(r.Context(), user.ID, req.Name, req.Email)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{
		Success: true,
		Message: "User updated successfully",
		User:    updated,
	})
}

// UpdatePasswordRequest представляет тело запроса на смену пароля
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdatePassword обрабатывает PUT /update-password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		RespondWithError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		RespondWithError(w, r, http.StatusBadRequest, "please enter old and new password")
		return
	}

	updated, err := h.userService.UpdatePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{
		Success: true,
		Message: "Password updated successfully",
		User:    updated,
	})
}

// UpdateAvatarRequest представляет тело запроса на смену аватара:
// изображение приходит как data URI
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

// UpdateAvatar обрабатывает PUT /update-avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		RespondWithError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	var req UpdateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateAvatar(r.Context(), user.ID, req.Avatar)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{
		Success: true,
		User:    updated,
	})
}

// ForgotPasswordRequest представляет тело запроса на восстановление пароля
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword обрабатывает POST /forgot-password
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" {
		RespondWithError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.userService.ForgotPassword(r.Context(), req.Email); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Reset password link sent to your email",
	})
}

// ResetPasswordRequest представляет тело запроса на сброс пароля
type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword обрабатывает PUT /reset-password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ResetToken == "" || req.NewPassword == "" {
		RespondWithError(w, r, http.StatusBadRequest, "reset token and new password are required")
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}
