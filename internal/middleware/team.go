package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/repository"
)

// RequireTeamAdmin создает гейт, пропускающий только администратора команды
// из параметра маршрута. Загруженная команда кладется в контекст.
func RequireTeamAdmin(teams repository.TeamRepository) func(http.Handler) http.Handler {
	return requireTeamRole(teams, func(team *domain.Team, user *domain.User) bool {
		return team.Admin == user.ID
	})
}

// RequireTeamMember создает гейт, пропускающий любого участника команды
func RequireTeamMember(teams repository.TeamRepository) func(http.Handler) http.Handler {
	return requireTeamRole(teams, func(team *domain.Team, user *domain.User) bool {
		return team.HasMember(user.ID)
	})
}

func requireTeamRole(teams repository.TeamRepository, allowed func(*domain.Team, *domain.User) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Гейт ролей всегда стоит после гейта аутентификации
			user := UserFromContext(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
				return
			}

			teamID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
			if err != nil {
				respondError(w, http.StatusBadRequest, domain.ErrInvalidID.Error())
				return
			}

			team, err := teams.GetByID(r.Context(), teamID)
			if err != nil {
				respondError(w, domain.StatusCode(err), err.Error())
				return
			}

			if !allowed(team, user) {
				respondError(w, http.StatusForbidden, domain.ErrForbidden.Error())
				return
			}

			ctx := context.WithValue(r.Context(), TeamKey, team)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
