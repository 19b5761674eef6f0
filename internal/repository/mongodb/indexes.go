package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes создает индексы коллекций при старте приложения.
// Уникальность email и пары (admin, name) обеспечивается на уровне БД,
// проверки в сервисах только дают более понятные сообщения об ошибках.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}

	_, err = db.Collection("teams").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "admin", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create teams indexes: %w", err)
	}

	_, err = db.Collection("invitations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create invitations indexes: %w", err)
	}

	return nil
}
