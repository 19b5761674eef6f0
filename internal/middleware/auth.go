package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

const (
	// UserKey ключ контекста для аутентифицированного пользователя
	UserKey ContextKey = "user"
	// TeamKey ключ контекста для команды, загруженной гейтом ролей
	TeamKey ContextKey = "team"
)

// AccessTokenCookie и RefreshTokenCookie это имена сессионных cookie
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Authenticate создает гейт аутентификации: валидный access cookie
// обменивается на пользователя из кеша сессий, который кладется в контекст.
func Authenticate(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				respondError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
				return
			}

			user, err := authService.Session(r.Context(), cookie.Value)
			if err != nil {
				respondError(w, domain.StatusCode(err), err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext извлекает аутентифицированного пользователя из контекста
func UserFromContext(ctx context.Context) *domain.User {
	user, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// TeamFromContext извлекает загруженную команду из контекста
func TeamFromContext(ctx context.Context) *domain.Team {
	team, ok := ctx.Value(TeamKey).(*domain.Team)
	if !ok {
		return nil
	}
	return team
}

// respondError пишет ошибку в едином формате {success:false, message}
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
