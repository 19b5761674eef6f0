package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/madac4/doCreate-server/internal/domain"
)

// TeamRepository реализует repository.TeamRepository для MongoDB
type TeamRepository struct {
	col *mongo.Collection
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db *mongo.Database) *TeamRepository {
	return &TeamRepository{col: db.Collection("teams")}
}

// Create сохраняет новую команду и возвращает ее с заполненным id
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	if team.Members == nil {
		team.Members = []primitive.ObjectID{}
	}

	res, err := r.col.InsertOne(ctx, team)
	if err != nil {
		// Составной уникальный индекс (admin, name)
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTeamExists
		}
		return nil, err
	}

	team.ID = res.InsertedID.(primitive.ObjectID)
	return team, nil
}

// GetByID получает команду по id
func (r *TeamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	var team domain.Team
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}

	return &team, nil
}

// ExistsByAdminAndName проверяет, есть ли у администратора команда с таким именем
func (r *TeamRepository) ExistsByAdminAndName(ctx context.Context, admin primitive.ObjectID, name string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"admin": admin, "name": name})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateName переименовывает команду
func (r *TeamRepository) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTeamExists
		}
		return err
	}

	if res.MatchedCount == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}

// Delete удаляет команду
func (r *TeamRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}

// AddMember добавляет пользователя в состав команды
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": teamID},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}

// RemoveMember убирает пользователя из состава команды
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": teamID},
		bson.M{
			"$pull": bson.M{"members": userID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}
