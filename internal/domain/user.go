package domain

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// emailRegex повторяет валидацию email из схемы пользователя
var emailRegex = regexp.MustCompile(`^[\w-\.]+@([\w-]+\.)+[\w-]{2,4}$`)

// Avatar хранит ссылку на загруженное изображение профиля во внешнем хранилище
type Avatar struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

// User представляет зарегистрированного пользователя.
// Пароль хранится только в виде bcrypt-хеша и никогда не сериализуется в ответ.
type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name       string               `bson:"name" json:"name"`
	Email      string               `bson:"email" json:"email"`
	Password   string               `bson:"password" json:"-"`
	IsVerified bool                 `bson:"isVerified" json:"isVerified"`
	Teams      []primitive.ObjectID `bson:"teams" json:"teams"`
	Avatar     Avatar               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PendingUser это кандидат на регистрацию, живущий только внутри
// подписанного активационного токена. Password уже захеширован.
type PendingUser struct {
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Password string               `json:"password"`
	Teams    []primitive.ObjectID `json:"teams,omitempty"`
}

// IsValidEmail проверяет формат email адреса
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// InTeam сообщает, числится ли команда в списке пользователя
func (u *User) InTeam(teamID primitive.ObjectID) bool {
	for _, id := range u.Teams {
		if id == teamID {
			return true
		}
	}
	return false
}
