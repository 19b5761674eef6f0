package domain

import (
	"errors"
	"net/http"
)

// Доменные ошибки. Каждая маппится в HTTP статус через StatusCode,
// текст ошибки уходит клиенту как есть в поле message.
var (
	// ErrEmailExists возвращается при регистрации на занятый email
	ErrEmailExists = errors.New("email already exists")

	// ErrUserExists возвращается когда активация проиграла гонку за email
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound возвращается когда пользователь или его сессия не найдены
	ErrUserNotFound = errors.New("user not found")

	// ErrTeamNotFound возвращается когда команда не найдена
	ErrTeamNotFound = errors.New("team not found")

	// ErrInvalidCredentials намеренно не различает неизвестный email и
	// неверный пароль, чтобы не раскрывать существование аккаунта
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidEmail возвращается при невалидном формате email
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidActivationCode возвращается когда код не совпал с кодом в токене
	ErrInvalidActivationCode = errors.New("invalid activation code")

	// ErrInvalidToken возвращается когда подпись токена не прошла проверку
	ErrInvalidToken = errors.New("token is invalid, try again")

	// ErrTokenExpired возвращается когда срок действия токена истек
	ErrTokenExpired = errors.New("token is expired, try again")

	// ErrUnauthorized возвращается когда access cookie отсутствует или невалиден
	ErrUnauthorized = errors.New("login first to access this resource")

	// ErrRefreshSession возвращается когда refresh токен валиден,
	// но сессии в кеше уже нет (например после logout)
	ErrRefreshSession = errors.New("could not update access token")

	// ErrForbidden возвращается когда пользователь не админ/участник команды
	ErrForbidden = errors.New("you are not allowed to access this team")

	// ErrTeamExists возвращается при создании дубликата (admin, name)
	ErrTeamExists = errors.New("team already exists")

	// ErrAlreadyMember возвращается при приглашении действующего участника
	ErrAlreadyMember = errors.New("user is already a member of this team")

	// ErrAdminRemoval возвращается при попытке удалить администратора из команды
	ErrAdminRemoval = errors.New("team admin cannot be removed")

	// ErrTeamNameMismatch возвращается когда подтверждение удаления не совпало
	ErrTeamNameMismatch = errors.New("incorrect team name")

	// ErrPasswordNotSet возвращается когда у пользователя неожиданно нет пароля
	ErrPasswordNotSet = errors.New("invalid user")

	// ErrOldPasswordMismatch возвращается когда старый пароль не подошел
	ErrOldPasswordMismatch = errors.New("old password is incorrect")

	// ErrInvalidID возвращается когда параметр маршрута не является валидным id
	ErrInvalidID = errors.New("resource not found, invalid id")

	// ErrMailDelivery возвращается когда письмо не удалось отправить
	ErrMailDelivery = errors.New("could not send email, try again later")
)

// StatusCode преобразует доменную ошибку в HTTP статус.
// Неизвестные ошибки считаются внутренними (500), их текст уходит клиенту
// без изменений.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrEmailExists), errors.Is(err, ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTeamNotFound),
		errors.Is(err, ErrTeamNameMismatch), errors.Is(err, ErrPasswordNotSet):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidActivationCode), errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired), errors.Is(err, ErrRefreshSession),
		errors.Is(err, ErrTeamExists), errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrAdminRemoval), errors.Is(err, ErrOldPasswordMismatch),
		errors.Is(err, ErrInvalidID), errors.Is(err, ErrMailDelivery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
