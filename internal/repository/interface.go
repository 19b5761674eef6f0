package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/domain"
)

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	// Create сохраняет нового пользователя и возвращает его с заполненным id
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByID получает пользователя по id
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDs возвращает пользователей по списку id
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error)

	// ExistsByEmail проверяет занятость email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update сохраняет измененный профиль пользователя
	Update(ctx context.Context, user *domain.User) error

	// AddTeam добавляет команду в список членства пользователя
	AddTeam(ctx context.Context, userID, teamID primitive.ObjectID) error

	// RemoveTeam убирает команду из списка членства пользователя
	RemoveTeam(ctx context.Context, userID, teamID primitive.ObjectID) error
}

// TeamRepository определяет методы для работы с данными команд
type TeamRepository interface {
	// Create сохраняет новую команду и возвращает ее с заполненным id
	Create(ctx context.Context, team *domain.Team) (*domain.Team, error)

	// GetByID получает команду по id
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error)

	// ExistsByAdminAndName проверяет, есть ли у администратора команда с таким именем
	ExistsByAdminAndName(ctx context.Context, admin primitive.ObjectID, name string) (bool, error)

	// UpdateName переименовывает команду
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error

	// Delete удаляет команду
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddMember добавляет пользователя в состав команды
	AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error

	// RemoveMember убирает пользователя из состава команды
	RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error
}

// InvitationRepository определяет методы для работы с приглашениями
type InvitationRepository interface {
	// Create сохраняет новое приглашение
	Create(ctx context.Context, invitation *domain.Invitation) error

	// GetByEmail возвращает последнее приглашение для email
	GetByEmail(ctx context.Context, email string) (*domain.Invitation, error)

	// Accept переводит ожидающие приглашения email в указанные команды
	// в статус accepted. Приглашения в другие команды не трогаются.
	Accept(ctx context.Context, email string, teamIDs []primitive.ObjectID) error
}
