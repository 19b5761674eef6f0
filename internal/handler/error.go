package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/madac4/doCreate-server/internal/domain"
)

// ErrorResponse представляет единый формат ответа с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Success: false,
		Message: message,
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы. Статус берется из
// domain.StatusCode, текст ошибки уходит клиенту без изменений — в том числе
// для нераспознанных ошибок, которые считаются внутренними (500).
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithError(w, r, domain.StatusCode(err), err.Error())
}
