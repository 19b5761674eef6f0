// Package token подписывает и проверяет все пять видов токенов сервиса:
// активационный, access, refresh, сброса пароля и приглашения в команду.
// Все токены это HS256 JWT, каждый вид со своим секретом и сроком жизни.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/config"
	"github.com/madac4/doCreate-server/internal/domain"
)

// SessionClaims это полезная нагрузка access и refresh токенов
type SessionClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// ActivationClaims несет кандидата на регистрацию и одноразовый код
type ActivationClaims struct {
	User           domain.PendingUser `json:"user"`
	ActivationCode string             `json:"activationCode"`
	jwt.RegisteredClaims
}

// ResetClaims это полезная нагрузка токена сброса пароля
type ResetClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// InvitationClaims несет снапшот команды, в которую приглашен email
type InvitationClaims struct {
	Team domain.Team `json:"team"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет токены согласно конфигурации
type Manager struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewManager создает новый Manager
func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// SignAccessToken выпускает access токен для пользователя
func (m *Manager) SignAccessToken(userID primitive.ObjectID) (string, error) {
	return m.signSession(userID, m.cfg.AccessSecret, m.cfg.AccessExpiry())
}

// SignRefreshToken выпускает refresh токен для пользователя
func (m *Manager) SignRefreshToken(userID primitive.ObjectID) (string, error) {
	return m.signSession(userID, m.cfg.RefreshSecret, m.cfg.RefreshExpiry())
}

func (m *Manager) signSession(userID primitive.ObjectID, secret string, expiry time.Duration) (string, error) {
	claims := &SessionClaims{
		ID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(m.now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyAccessToken проверяет access токен и возвращает id пользователя
func (m *Manager) VerifyAccessToken(tokenString string) (string, error) {
	return m.verifySession(tokenString, m.cfg.AccessSecret)
}

// VerifyRefreshToken проверяет refresh токен и возвращает id пользователя
func (m *Manager) VerifyRefreshToken(tokenString string) (string, error) {
	return m.verifySession(tokenString, m.cfg.RefreshSecret)
}

func (m *Manager) verifySession(tokenString, secret string) (string, error) {
	claims := &SessionClaims{}
	if err := m.parse(tokenString, secret, claims); err != nil {
		return "", err
	}
	return claims.ID, nil
}

// NewActivationToken генерирует шестизначный код и подписывает токен,
// несущий кандидата на регистрацию вместе с этим кодом. Код отправляется
// по почте, токен возвращается клиенту: активация требует оба.
func (m *Manager) NewActivationToken(user domain.PendingUser) (token, code string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate activation code: %w", err)
	}
	code = fmt.Sprintf("%d", n.Int64()+100000)

	claims := &ActivationClaims{
		User:           user,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.cfg.ActivationExpiry())),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.ActivationSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign activation token: %w", err)
	}

	return token, code, nil
}

// VerifyActivationToken проверяет активационный токен
func (m *Manager) VerifyActivationToken(tokenString string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := m.parse(tokenString, m.cfg.ActivationSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SignResetToken выпускает токен сброса пароля
func (m *Manager) SignResetToken(userID primitive.ObjectID) (string, error) {
	claims := &ResetClaims{
		ID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.cfg.ResetExpiry())),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.ResetSecret))
}

// VerifyResetToken проверяет токен сброса пароля и возвращает id пользователя
func (m *Manager) VerifyResetToken(tokenString string) (string, error) {
	claims := &ResetClaims{}
	if err := m.parse(tokenString, m.cfg.ResetSecret, claims); err != nil {
		return "", err
	}
	return claims.ID, nil
}

// SignInvitationToken выпускает токен приглашения со снапшотом команды
func (m *Manager) SignInvitationToken(team domain.Team) (string, error) {
	claims := &InvitationClaims{
		Team: team,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.cfg.InvitationExpiry())),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.InvitationSecret))
}

// VerifyInvitationToken проверяет токен приглашения
func (m *Manager) VerifyInvitationToken(tokenString string) (*InvitationClaims, error) {
	claims := &InvitationClaims{}
	if err := m.parse(tokenString, m.cfg.InvitationSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// parse разбирает токен и нормализует ошибки jwt в доменные
func (m *Manager) parse(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return domain.ErrInvalidToken
	}

	if !token.Valid {
		return domain.ErrInvalidToken
	}

	return nil
}
