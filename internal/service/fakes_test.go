package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/config"
	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/mail"
	"github.com/madac4/doCreate-server/internal/token"
)

// In-memory фейки репозиториев и внешних зависимостей для юнит тестов сервисов.

func newTestTokens() *token.Manager {
	return token.NewManager(config.JWTConfig{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationSecret: "activation-secret",
		ResetSecret:      "reset-secret",
		InvitationSecret: "invitation-secret",

		AccessExpiryMinutes:     5,
		RefreshExpiryDays:       7,
		ActivationExpiryMinutes: 30,
		ResetExpiryMinutes:      15,
		InvitationExpiryHours:   24,
	})
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Teams == nil {
		user.Teams = []primitive.ObjectID{}
	}
	clone := *user
	r.users[user.ID] = &clone
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*domain.User, error) {
	var users []*domain.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			clone := *user
			users = append(users, &clone)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) AddTeam(_ context.Context, userID, teamID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !user.InTeam(teamID) {
		user.Teams = append(user.Teams, teamID)
	}
	return nil
}

func (r *fakeUserRepo) RemoveTeam(_ context.Context, userID, teamID primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	teams := user.Teams[:0]
	for _, id := range user.Teams {
		if id != teamID {
			teams = append(teams, id)
		}
	}
	user.Teams = teams
	return nil
}

type fakeTeamRepo struct {
	teams map[primitive.ObjectID]*domain.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[primitive.ObjectID]*domain.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) (*domain.Team, error) {
	for _, t := range r.teams {
		if t.Admin == team.Admin && t.Name == team.Name {
			return nil, domain.ErrTeamExists
		}
	}
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	clone := *team
	r.teams[team.ID] = &clone
	return team, nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	clone := *team
	return &clone, nil
}

func (r *fakeTeamRepo) ExistsByAdminAndName(_ context.Context, admin primitive.ObjectID, name string) (bool, error) {
	for _, team := range r.teams {
		if team.Admin == admin && team.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamRepo) UpdateName(_ context.Context, id primitive.ObjectID, name string) error {
	team, ok := r.teams[id]
	if !ok {
		return domain.ErrTeamNotFound
	}
	team.Name = name
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.teams[id]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, teamID, userID primitive.ObjectID) error {
	team, ok := r.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if !team.HasMember(userID) {
		team.Members = append(team.Members, userID)
	}
	return nil
}

func (r *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID primitive.ObjectID) error {
	team, ok := r.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	members := team.Members[:0]
	for _, id := range team.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	team.Members = members
	return nil
}

type fakeInvitationRepo struct {
	invitations []*domain.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{}
}

func (r *fakeInvitationRepo) Create(_ context.Context, invitation *domain.Invitation) error {
	if invitation.ID.IsZero() {
		invitation.ID = primitive.NewObjectID()
	}
	if invitation.Status == "" {
		invitation.Status = domain.InvitationPending
	}
	clone := *invitation
	r.invitations = append(r.invitations, &clone)
	return nil
}

func (r *fakeInvitationRepo) GetByEmail(_ context.Context, email string) (*domain.Invitation, error) {
	for i := len(r.invitations) - 1; i >= 0; i-- {
		if r.invitations[i].Email == email {
			clone := *r.invitations[i]
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeInvitationRepo) Accept(_ context.Context, email string, teamIDs []primitive.ObjectID) error {
	for _, invitation := range r.invitations {
		if invitation.Email != email || invitation.Status != domain.InvitationPending {
			continue
		}
		for _, teamID := range teamIDs {
			if invitation.TeamID == teamID {
				invitation.Status = domain.InvitationAccepted
			}
		}
	}
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*domain.User
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*domain.User)}
}

func (s *fakeSessionStore) Get(_ context.Context, userID string) (*domain.User, error) {
	user, ok := s.sessions[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *fakeSessionStore) Set(_ context.Context, user *domain.User) error {
	clone := *user
	s.sessions[user.ID.Hex()] = &clone
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, userID string) error {
	delete(s.sessions, userID)
	return nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{}
}

func (m *fakeMailer) Send(msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeAvatarStore struct {
	uploads   int
	destroyed []string
}

func newFakeAvatarStore() *fakeAvatarStore {
	return &fakeAvatarStore{}
}

func (s *fakeAvatarStore) Upload(_ context.Context, image string) (domain.Avatar, error) {
	s.uploads++
	return domain.Avatar{
		PublicID: primitive.NewObjectID().Hex(),
		URL:      "https://cdn.example.com/" + image,
	}, nil
}

func (s *fakeAvatarStore) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}
