package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server     ServerConfig     // Настройки HTTP сервера
	Mongo      MongoConfig      // Настройки подключения к MongoDB
	Redis      RedisConfig      // Настройки кеша сессий
	JWT        JWTConfig        // Секреты и сроки жизни токенов
	SMTP       SMTPConfig       // Настройки отправки почты
	Cloudinary CloudinaryConfig // Настройки хранилища аватаров
	Origin     string           `envconfig:"ORIGIN" default:"http://localhost:3000"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
}

// MongoConfig содержит настройки подключения к MongoDB
type MongoConfig struct {
	URI      string `envconfig:"MONGO_URL" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGO_DB" default:"doCreate"`
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	URL string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
}

// JWTConfig содержит секреты для каждого вида токена и их сроки жизни.
// Секреты разные, чтобы токен одного назначения нельзя было подсунуть другому.
type JWTConfig struct {
	AccessSecret     string `envconfig:"ACCESS_TOKEN" required:"true"`
	RefreshSecret    string `envconfig:"REFRESH_TOKEN" required:"true"`
	ActivationSecret string `envconfig:"ACTIVATION_TOKEN_SECRET" required:"true"`
	ResetSecret      string `envconfig:"RESET_PASSWORD_TOKEN_SECRET" required:"true"`
	InvitationSecret string `envconfig:"INVITATION_TOKEN" required:"true"`

	AccessExpiryMinutes     int `envconfig:"ACCESS_TOKEN_EXPIRE" default:"5"`
	RefreshExpiryDays       int `envconfig:"REFRESH_TOKEN_EXPIRE" default:"7"`
	ActivationExpiryMinutes int `envconfig:"ACTIVATION_TOKEN_EXPIRE" default:"30"`
	ResetExpiryMinutes      int `envconfig:"RESET_TOKEN_EXPIRE" default:"15"`
	InvitationExpiryHours   int `envconfig:"INVITATION_TOKEN_EXPIRE" default:"24"`
}

// SMTPConfig содержит настройки SMTP сервера для исходящей почты
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	User     string `envconfig:"SMTP_USER" default:""`
	Password string `envconfig:"SMTP_PASSWORD" default:""`
	From     string `envconfig:"SMTP_FROM" default:"doCreate <no-reply@docreate.app>"`
}

// CloudinaryConfig содержит настройки облачного хранилища аватаров
type CloudinaryConfig struct {
	URL    string `envconfig:"CLOUDINARY_URL" default:""`
	Folder string `envconfig:"CLOUDINARY_FOLDER" default:"doCreate/avatars"`
}

// AccessExpiry возвращает срок действия access токена как time.Duration
func (j JWTConfig) AccessExpiry() time.Duration {
	return time.Duration(j.AccessExpiryMinutes) * time.Minute
}

// RefreshExpiry возвращает срок действия refresh токена как time.Duration
func (j JWTConfig) RefreshExpiry() time.Duration {
	return time.Duration(j.RefreshExpiryDays) * 24 * time.Hour
}

// ActivationExpiry возвращает срок действия активационного токена
func (j JWTConfig) ActivationExpiry() time.Duration {
	return time.Duration(j.ActivationExpiryMinutes) * time.Minute
}

// ResetExpiry возвращает срок действия токена сброса пароля
func (j JWTConfig) ResetExpiry() time.Duration {
	return time.Duration(j.ResetExpiryMinutes) * time.Minute
}

// InvitationExpiry возвращает срок действия токена приглашения в команду
func (j JWTConfig) InvitationExpiry() time.Duration {
	return time.Duration(j.InvitationExpiryHours) * time.Hour
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
