package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Статусы приглашения
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Invitation связывает email без аккаунта с командой. Создается при
// приглашении незарегистрированного адреса и переходит в accepted когда
// этот email завершает регистрацию по токену приглашения.
type Invitation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	TeamID    primitive.ObjectID `bson:"teamId" json:"teamId"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
