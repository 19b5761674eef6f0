package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/middleware"
	"github.com/madac4/doCreate-server/internal/service"
)

// TeamHandler обрабатывает эндпоинты команд
type TeamHandler struct {
	teamService *service.TeamService
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// TeamNameRequest представляет тело запроса с названием команды
type TeamNameRequest struct {
	Name string `json:"name"`
}

// TeamResponse представляет ответ с командой
type TeamResponse struct {
	Success bool         `json:"success"`
	Team    *domain.Team `json:"team"`
}

// Create обрабатывает POST /create-team
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		RespondWithError(w, r, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	var req TeamNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, "team name is required")
		return
	}

	team, err := h.teamService.Create(r.Context(), user, req.Name)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{
		Success: true,
		Team:    team,
	})
}

// Edit обрабатывает PUT /edit-team/{id} (только админ)
func (h *TeamHandler) Edit(w http.ResponseWriter, r *http.Request) {
	team := middleware.TeamFromContext(r.Context())
	if team == nil {
		RespondWithError(w, r, http.StatusNotFound, domain.ErrTeamNotFound.Error())
		return
	}

	var req TeamNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, "enter new team name")
		return
	}

	if err := h.teamService.Rename(r.Context(), team.ID, req.Name); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Team updated successfully",
	})
}

// Delete обрабатывает DELETE /delete-team/{id} (только админ).
// Название команды в теле запроса служит подтверждением удаления.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	team := middleware.TeamFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	if team == nil || user == nil {
		RespondWithError(w, r, http.StatusNotFound, domain.ErrTeamNotFound.Error())
		return
	}

	var req TeamNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.teamService.Delete(r.Context(), team, user, req.Name); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Team deleted successfully",
	})
}

// InviteRequest представляет тело запроса на приглашение участника
type InviteRequest struct {
	Email string `json:"email"`
}

// Invite обрабатывает POST /invite-member/{id} (только админ)
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	team := middleware.TeamFromContext(r.Context())
	if team == nil {
		RespondWithError(w, r, http.StatusNotFound, domain.ErrTeamNotFound.Error())
		return
	}

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" {
		RespondWithError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	added, err := h.teamService.Invite(r.Context(), team, req.Email)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	message := fmt.Sprintf("Invitation sent to %s", req.Email)
	if added {
		message = "Member added successfully"
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: message,
	})
}

// RemoveMemberRequest представляет тело запроса на удаление участника
type RemoveMemberRequest struct {
	UserID string `json:"userId"`
}

// RemoveMember обрабатывает PUT /remove-member/{id} (только админ)
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	team := middleware.TeamFromContext(r.Context())
	if team == nil {
		RespondWithError(w, r, http.StatusNotFound, domain.ErrTeamNotFound.Error())
		return
	}

	var req RemoveMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.ErrInvalidID.Error())
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), team, userID); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Member removed successfully",
	})
}

// MembersResponse представляет ответ со списком участников команды
type MembersResponse struct {
	Success bool           `json:"success"`
	Members []*domain.User `json:"members"`
}

// Members обрабатывает GET /get-members/{id} (любой участник)
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	team := middleware.TeamFromContext(r.Context())
	if team == nil {
		RespondWithError(w, r, http.StatusNotFound, domain.ErrTeamNotFound.Error())
		return
	}

	members, err := h.teamService.Members(r.Context(), team)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MembersResponse{
		Success: true,
		Members: members,
	})
}
