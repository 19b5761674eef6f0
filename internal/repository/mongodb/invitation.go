package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/madac4/doCreate-server/internal/domain"
)

// InvitationRepository реализует repository.InvitationRepository для MongoDB
type InvitationRepository struct {
	col *mongo.Collection
}

// NewInvitationRepository создает новый экземпляр InvitationRepository
func NewInvitationRepository(db *mongo.Database) *InvitationRepository {
	return &InvitationRepository{col: db.Collection("invitations")}
}

// Create сохраняет новое приглашение
func (r *InvitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	invitation.CreatedAt = time.Now().UTC()
	if invitation.Status == "" {
		invitation.Status = domain.InvitationPending
	}

	res, err := r.col.InsertOne(ctx, invitation)
	if err != nil {
		return err
	}

	invitation.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByEmail возвращает последнее приглашение для email
func (r *InvitationRepository) GetByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})

	var invitation domain.Invitation
	err := r.col.FindOne(ctx, bson.M{"email": email}, opts).Decode(&invitation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return &invitation, nil
}

// Accept переводит ожидающие приглашения email в указанные команды в статус
// accepted. Фильтр по teamId не дает задеть приглашения в другие команды.
func (r *InvitationRepository) Accept(ctx context.Context, email string, teamIDs []primitive.ObjectID) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{
			"email":  email,
			"teamId": bson.M{"$in": teamIDs},
			"status": domain.InvitationPending,
		},
		bson.M{"$set": bson.M{"status": domain.InvitationAccepted}},
	)
	return err
}
