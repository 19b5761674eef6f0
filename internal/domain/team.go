package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamDocument описывает файл, загруженный в команду
type TeamDocument struct {
	Filename     string `bson:"filename" json:"filename"`
	OriginalName string `bson:"originalName" json:"originalName"`
	Size         int64  `bson:"size" json:"size"`
	Mimetype     string `bson:"mimetype" json:"mimetype"`
}

// Team представляет команду. Admin всегда входит в Members при создании,
// название уникально в пределах одного администратора.
type Team struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	Admin     primitive.ObjectID   `bson:"admin" json:"admin"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	Documents []TeamDocument       `bson:"documents,omitempty" json:"documents,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember проверяет членство пользователя в команде
func (t *Team) HasMember(userID primitive.ObjectID) bool {
	for _, id := range t.Members {
		if id == userID {
			return true
		}
	}
	return false
}
