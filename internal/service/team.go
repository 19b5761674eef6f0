package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/cache"
	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/mail"
	"github.com/madac4/doCreate-server/internal/repository"
	"github.com/madac4/doCreate-server/internal/token"
)

// TeamService handles team lifecycle and membership management
type TeamService struct {
	teams       repository.TeamRepository
	users       repository.UserRepository
	invitations repository.InvitationRepository
	sessions    cache.SessionStore
	tokens      *token.Manager
	mailer      mail.Dispatcher
}

// NewTeamService creates a new TeamService
func NewTeamService(
	teams repository.TeamRepository,
	users repository.UserRepository,
	invitations repository.InvitationRepository,
	sessions cache.SessionStore,
	tokens *token.Manager,
	mailer mail.Dispatcher,
) *TeamService {
	return &TeamService{
		teams:       teams,
		users:       users,
		invitations: invitations,
		sessions:    sessions,
		tokens:      tokens,
		mailer:      mailer,
	}
}

// Create makes a new team with the caller as sole admin and member,
// and appends the team to the caller's membership list.
// Team names are unique per admin.
func (s *TeamService) Create(ctx context.Context, admin *domain.User, name string) (*domain.Team, error) {
	exists, err := s.teams.ExistsByAdminAndName(ctx, admin.ID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrTeamExists
	}

	team, err := s.teams.Create(ctx, &domain.Team{
		Name:    name,
		Admin:   admin.ID,
		Members: []primitive.ObjectID{admin.ID},
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.AddTeam(ctx, admin.ID, team.ID); err != nil {
		return nil, err
	}

	if err := s.refreshSession(ctx, admin.ID); err != nil {
		return nil, err
	}

	return team, nil
}

// Rename changes the team name. Admin-only, enforced by the team-admin gate.
func (s *TeamService) Rename(ctx context.Context, teamID primitive.ObjectID, name string) error {
	return s.teams.UpdateName(ctx, teamID, name)
}

// Delete removes the team after the caller re-typed its exact name.
// Any mismatch, including case, leaves the team untouched.
func (s *TeamService) Delete(ctx context.Context, team *domain.Team, caller *domain.User, confirmName string) error {
	if team.Name != confirmName {
		return domain.ErrTeamNameMismatch
	}

	if err := s.teams.Delete(ctx, team.ID); err != nil {
		return err
	}

	if err := s.users.RemoveTeam(ctx, caller.ID, team.ID); err != nil {
		return err
	}

	return s.refreshSession(ctx, caller.ID)
}

// Invite adds an existing user to the team directly, or records a pending
// invitation and mails a signed team token to an address with no account yet.
// The returned flag reports whether the user was added directly.
func (s *TeamService) Invite(ctx context.Context, team *domain.Team, email string) (bool, error) {
	if !domain.IsValidEmail(email) {
		return false, domain.ErrInvalidEmail
	}

	invitee, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	if invitee != nil {
		if team.HasMember(invitee.ID) {
			return false, domain.ErrAlreadyMember
		}

		if err := s.teams.AddMember(ctx, team.ID, invitee.ID); err != nil {
			return false, err
		}
		return true, s.users.AddTeam(ctx, invitee.ID, team.ID)
	}

	invitationToken, err := s.tokens.SignInvitationToken(*team)
	if err != nil {
		return false, err
	}

	err = s.invitations.Create(ctx, &domain.Invitation{
		Email:  email,
		TeamID: team.ID,
		Status: domain.InvitationPending,
	})
	if err != nil {
		return false, err
	}

	err = s.mailer.Send(mail.Message{
		To:       email,
		Subject:  "You have been invited to join " + team.Name + " on doCreate",
		Template: mail.InvitationTemplate,
		Data:     map[string]string{"TeamName": team.Name, "Token": invitationToken},
	})
	if err != nil {
		return false, domain.ErrMailDelivery
	}

	return false, nil
}

// RemoveMember pulls the user from the team and the team from the user.
// The admin cannot be removed from their own team.
func (s *TeamService) RemoveMember(ctx context.Context, team *domain.Team, userID primitive.ObjectID) error {
	if userID == team.Admin {
		return domain.ErrAdminRemoval
	}

	if err := s.teams.RemoveMember(ctx, team.ID, userID); err != nil {
		return err
	}

	return s.users.RemoveTeam(ctx, userID, team.ID)
}

// Members returns the team's member list with profile fields populated
func (s *TeamService) Members(ctx context.Context, team *domain.Team) ([]*domain.User, error) {
	return s.users.GetByIDs(ctx, team.Members)
}

// refreshSession re-reads the user and rewrites the session cache entry.
// The cache is best-effort: the directory stays authoritative.
func (s *TeamService) refreshSession(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.sessions.Set(ctx, user)
}
