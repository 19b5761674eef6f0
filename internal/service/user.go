package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/cache"
	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/mail"
	"github.com/madac4/doCreate-server/internal/repository"
	"github.com/madac4/doCreate-server/internal/storage"
	"github.com/madac4/doCreate-server/internal/token"
)

// UserService handles registration, activation and profile management
type UserService struct {
	users       repository.UserRepository
	teams       repository.TeamRepository
	invitations repository.InvitationRepository
	sessions    cache.SessionStore
	tokens      *token.Manager
	mailer      mail.Dispatcher
	avatars     storage.AvatarStore
	origin      string
}

// NewUserService creates a new UserService
func NewUserService(
	users repository.UserRepository,
	teams repository.TeamRepository,
	invitations repository.InvitationRepository,
	sessions cache.SessionStore,
	tokens *token.Manager,
	mailer mail.Dispatcher,
	avatars storage.AvatarStore,
	origin string,
) *UserService {
	return &UserService{
		users:       users,
		teams:       teams,
		invitations: invitations,
		sessions:    sessions,
		tokens:      tokens,
		mailer:      mailer,
		avatars:     avatars,
		origin:      origin,
	}
}

// Register produces an activation token and mails the activation code.
// No user record is created yet: the record appears on activation.
// An optional team invitation token attaches the team to the pending user
// so that activation auto-joins it.
func (s *UserService) Register(ctx context.Context, name, email, password, teamToken string) (string, error) {
	if !domain.IsValidEmail(email) {
		return "", domain.ErrInvalidEmail
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.ErrEmailExists
	}

	// Hash here so the signed (but readable) activation token never
	// carries the plaintext password.
	hash, err := token.HashPassword(password)
	if err != nil {
		return "", err
	}

	pending := domain.PendingUser{
		Name:     name,
		Email:    email,
		Password: hash,
	}

	if teamToken != "" {
		claims, err := s.tokens.VerifyInvitationToken(teamToken)
		if err != nil {
			return "", err
		}
		pending.Teams = []primitive.ObjectID{claims.Team.ID}
	}

	activationToken, code, err := s.tokens.NewActivationToken(pending)
	if err != nil {
		return "", err
	}

	err = s.mailer.Send(mail.Message{
		To:       email,
		Subject:  "Activate your account on doCreate",
		Template: mail.ActivationTemplate,
		Data:     map[string]string{"Name": name, "ActivationCode": code},
	})
	if err != nil {
		return "", domain.ErrMailDelivery
	}

	return activationToken, nil
}

// Activate verifies the activation token and code, creates the user record
// and joins any teams embedded by a registration-time invitation token.
func (s *UserService) Activate(ctx context.Context, activationToken, code string) (*domain.User, error) {
	claims, err := s.tokens.VerifyActivationToken(activationToken)
	if err != nil {
		return nil, err
	}

	if claims.ActivationCode != code {
		return nil, domain.ErrInvalidActivationCode
	}

	exists, err := s.users.ExistsByEmail(ctx, claims.User.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	user := &domain.User{
		Name:       claims.User.Name,
		Email:      claims.User.Email,
		Password:   claims.User.Password,
		IsVerified: true,
		Teams:      claims.User.Teams,
	}

	user, err = s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	// Команду могли удалить между приглашением и активацией:
	// пропавшая команда не должна блокировать уже созданный аккаунт
	var joined []primitive.ObjectID
	for _, teamID := range claims.User.Teams {
		err := s.teams.AddMember(ctx, teamID, user.ID)
		if err != nil {
			if errors.Is(err, domain.ErrTeamNotFound) {
				continue
			}
			return nil, err
		}
		joined = append(joined, teamID)
	}

	if len(joined) > 0 {
		if err := s.invitations.Accept(ctx, user.Email, joined); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateInfo mutates name and/or email, then refreshes the session cache
func (s *UserService) UpdateInfo(ctx context.Context, userID primitive.ObjectID, name, email string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != "" && email != user.Email {
		if !domain.IsValidEmail(email) {
			return nil, domain.ErrInvalidEmail
		}

		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailExists
		}

		user.Email = email
	}

	if name != "" {
		user.Name = name
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdatePassword re-hashes and persists the new password after checking the old one
func (s *UserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Password == "" {
		return nil, domain.ErrPasswordNotSet
	}

	if !token.ComparePassword(user.Password, oldPassword) {
		return nil, domain.ErrOldPasswordMismatch
	}

	hash, err := token.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateAvatar replaces the stored avatar: the previous asset is destroyed
// before the resized replacement is uploaded.
func (s *UserService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, image string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if image != "" {
		if user.Avatar.PublicID != "" {
			if err := s.avatars.Destroy(ctx, user.Avatar.PublicID); err != nil {
				return nil, err
			}
		}

		avatar, err := s.avatars.Upload(ctx, image)
		if err != nil {
			return nil, err
		}
		user.Avatar = avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ForgotPassword mails a short-lived reset link to an existing user
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.tokens.SignResetToken(user.ID)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s", s.origin, resetToken)

	err = s.mailer.Send(mail.Message{
		To:       email,
		Subject:  "Reset Password",
		Template: mail.ResetTemplate,
		Data:     map[string]string{"Name": user.Name, "ResetURL": resetURL},
	})
	if err != nil {
		return domain.ErrMailDelivery
	}

	return nil
}

// ResetPassword verifies the reset token and overwrites the password
func (s *UserService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.tokens.VerifyResetToken(resetToken)
	if err != nil {
		return err
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrInvalidID
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := token.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	return s.sessions.Set(ctx, user)
}
