package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/mail"
	"github.com/madac4/doCreate-server/internal/token"
)

type userFixture struct {
	svc         *UserService
	users       *fakeUserRepo
	teams       *fakeTeamRepo
	invitations *fakeInvitationRepo
	sessions    *fakeSessionStore
	mailer      *fakeMailer
	avatars     *fakeAvatarStore
	tokens      *token.Manager
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	f := &userFixture{
		users:       newFakeUserRepo(),
		teams:       newFakeTeamRepo(),
		invitations: newFakeInvitationRepo(),
		sessions:    newFakeSessionStore(),
		mailer:      newFakeMailer(),
		avatars:     newFakeAvatarStore(),
		tokens:      newTestTokens(),
	}
	f.svc = NewUserService(
		f.users,
		f.teams,
		f.invitations,
		f.sessions,
		f.tokens,
		f.mailer,
		f.avatars,
		"https://docreate.example.com",
	)
	return f
}

// mailData достает данные шаблона последнего отправленного письма
func mailData(t *testing.T, m *fakeMailer) map[string]string {
	t.Helper()

	require.NotEmpty(t, m.sent)
	data, ok := m.sent[len(m.sent)-1].Data.(map[string]string)
	require.True(t, ok)
	return data
}

func TestRegister_SendsActivationCode(t *testing.T) {
	f := newUserFixture(t)

	activationToken, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	require.NoError(t, err)
	require.NotEmpty(t, activationToken)

	// Пользователь еще не создан, запись появится только после активации
	exists, err := f.users.ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].To)
	assert.Equal(t, mail.ActivationTemplate, f.mailer.sent[0].Template)
	assert.Len(t, mailData(t, f.mailer)["ActivationCode"], 6)
}

func TestRegister_InvalidEmail(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Register(context.Background(), "Alice", "not-an-email", "s3cret", "")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	assert.Empty(t, f.mailer.sent)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	seedUser(t, f.users, "alice@example.com", "s3cret")

	_, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestRegister_DuplicateEmailWithTeamToken(t *testing.T) {
	f := newUserFixture(t)
	seedUser(t, f.users, "alice@example.com", "s3cret")

	teamToken, err := f.tokens.SignInvitationToken(domain.Team{
		ID:   primitive.NewObjectID(),
		Name: "Acme",
	})
	require.NoError(t, err)

	// Токен приглашения не обходит проверку занятого email
	_, err = f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", teamToken)
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestRegister_PasswordIsNeverEmbeddedInPlaintext(t *testing.T) {
	f := newUserFixture(t)

	activationToken, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	require.NoError(t, err)

	claims, err := f.tokens.VerifyActivationToken(activationToken)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", claims.User.Password)
	assert.True(t, token.ComparePassword(claims.User.Password, "s3cret"))
}

func TestActivate_CreatesVerifiedUser(t *testing.T) {
	f := newUserFixture(t)

	activationToken, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	require.NoError(t, err)
	code := mailData(t, f.mailer)["ActivationCode"]

	user, err := f.svc.Activate(context.Background(), activationToken, code)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Equal(t, "alice@example.com", user.Email)

	// Активация открывает сессию сразу, без отдельного логина
	_, err = f.sessions.Get(context.Background(), user.ID.Hex())
	assert.NoError(t, err)
}

func TestActivate_WrongCode(t *testing.T) {
	f := newUserFixture(t)

	activationToken, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	require.NoError(t, err)

	_, err = f.svc.Activate(context.Background(), activationToken, "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidActivationCode)
}

func TestActivate_JoinsTeamAndAcceptsInvitation(t *testing.T) {
	f := newUserFixture(t)

	team, err := f.teams.Create(context.Background(), &domain.Team{
		Name:    "Acme",
		Admin:   primitive.NewObjectID(),
		Members: []primitive.ObjectID{},
	})
	require.NoError(t, err)

	teamToken, err := f.tokens.SignInvitationToken(*team)
	require.NoError(t, err)

	require.NoError(t, f.invitations.Create(context.Background(), &domain.Invitation{
		Email:  "bob@example.com",
		TeamID: team.ID,
		Status: domain.InvitationPending,
	}))

	activationToken, err := f.svc.Register(context.Background(), "Bob", "bob@example.com", "s3cret", teamToken)
	require.NoError(t, err)
	code := mailData(t, f.mailer)["ActivationCode"]

	user, err := f.svc.Activate(context.Background(), activationToken, code)
	require.NoError(t, err)
	assert.True(t, user.InTeam(team.ID))

	got, err := f.teams.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	assert.True(t, got.HasMember(user.ID))

	invitation, err := f.invitations.GetByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, invitation.Status)
}

func TestActivate_LostRaceForEmail(t *testing.T) {
	f := newUserFixture(t)

	activationToken, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	require.NoError(t, err)
	code := mailData(t, f.mailer)["ActivationCode"]

	// Кто-то успел занять email между регистрацией и активацией
	seedUser(t, f.users, "alice@example.com", "other")

	_, err = f.svc.Activate(context.Background(), activationToken, code)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestActivate_SurvivesDeletedTeam(t *testing.T) {
	f := newUserFixture(t)

	team, err := f.teams.Create(context.Background(), &domain.Team{
		Name:    "Acme",
		Admin:   primitive.NewObjectID(),
		Members: []primitive.ObjectID{},
	})
	require.NoError(t, err)

	teamToken, err := f.tokens.SignInvitationToken(*team)
	require.NoError(t, err)

	activationToken, err := f.svc.Register(context.Background(), "Bob", "bob@example.com", "s3cret", teamToken)
	require.NoError(t, err)
	code := mailData(t, f.mailer)["ActivationCode"]

	// Команда удалена между приглашением и активацией
	require.NoError(t, f.teams.Delete(context.Background(), team.ID))

	user, err := f.svc.Activate(context.Background(), activationToken, code)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	// Аккаунт живой: сессия открыта, повторная активация не нужна
	_, err = f.sessions.Get(context.Background(), user.ID.Hex())
	assert.NoError(t, err)
}

func TestActivate_AcceptsOnlyJoinedInvitations(t *testing.T) {
	f := newUserFixture(t)

	first, err := f.teams.Create(context.Background(), &domain.Team{
		Name:    "Acme",
		Admin:   primitive.NewObjectID(),
		Members: []primitive.ObjectID{},
	})
	require.NoError(t, err)

	second, err := f.teams.Create(context.Background(), &domain.Team{
		Name:    "Globex",
		Admin:   primitive.NewObjectID(),
		Members: []primitive.ObjectID{},
	})
	require.NoError(t, err)

	for _, team := range []*domain.Team{first, second} {
		require.NoError(t, f.invitations.Create(context.Background(), &domain.Invitation{
			Email:  "bob@example.com",
			TeamID: team.ID,
			Status: domain.InvitationPending,
		}))
	}

	// Регистрация по токену первой команды
	teamToken, err := f.tokens.SignInvitationToken(*first)
	require.NoError(t, err)

	activationToken, err := f.svc.Register(context.Background(), "Bob", "bob@example.com", "s3cret", teamToken)
	require.NoError(t, err)
	code := mailData(t, f.mailer)["ActivationCode"]

	_, err = f.svc.Activate(context.Background(), activationToken, code)
	require.NoError(t, err)

	// Принято только приглашение фактически присоединенной команды
	statuses := map[primitive.ObjectID]string{}
	for _, invitation := range f.invitations.invitations {
		statuses[invitation.TeamID] = invitation.Status
	}
	assert.Equal(t, domain.InvitationAccepted, statuses[first.ID])
	assert.Equal(t, domain.InvitationPending, statuses[second.ID])
}

func TestRegister_MailFailure(t *testing.T) {
	f := newUserFixture(t)
	f.mailer.err = errors.New("smtp unreachable")

	_, err := f.svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", "")
	assert.ErrorIs(t, err, domain.ErrMailDelivery)
}

func TestForgotPassword_MailFailure(t *testing.T) {
	f := newUserFixture(t)
	seedUser(t, f.users, "alice@example.com", "s3cret")
	f.mailer.err = errors.New("smtp unreachable")

	err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrMailDelivery)
}

func TestUpdateInfo_EmailConflict(t *testing.T) {
	f := newUserFixture(t)
	alice := seedUser(t, f.users, "alice@example.com", "s3cret")

	bob, err := f.users.Create(context.Background(), &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Bob",
		Email: "bob@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateInfo(context.Background(), alice.ID, "", bob.Email)
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestUpdateInfo_RefreshesSession(t *testing.T) {
	f := newUserFixture(t)
	alice := seedUser(t, f.users, "alice@example.com", "s3cret")

	updated, err := f.svc.UpdateInfo(context.Background(), alice.ID, "Alicia", "alicia@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alicia@example.com", updated.Email)

	cached, err := f.sessions.Get(context.Background(), alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alicia@example.com", cached.Email)
}

func TestUpdatePassword_OldPasswordMismatch(t *testing.T) {
	f := newUserFixture(t)
	alice := seedUser(t, f.users, "alice@example.com", "s3cret")

	_, err := f.svc.UpdatePassword(context.Background(), alice.ID, "wrong", "n3w-secret")
	assert.ErrorIs(t, err, domain.ErrOldPasswordMismatch)
}

func TestUpdatePassword_Success(t *testing.T) {
	f := newUserFixture(t)
	alice := seedUser(t, f.users, "alice@example.com", "s3cret")

	updated, err := f.svc.UpdatePassword(context.Background(), alice.ID, "s3cret", "n3w-secret")
	require.NoError(t, err)
	assert.True(t, token.ComparePassword(updated.Password, "n3w-secret"))
}

func TestUpdateAvatar_DestroysPreviousAsset(t *testing.T) {
	f := newUserFixture(t)
	alice := seedUser(t, f.users, "alice@example.com", "s3cret")

	first, err := f.svc.UpdateAvatar(context.Background(), alice.ID, "selfie-1.png")
	require.NoError(t, err)
	require.NotEmpty(t, first.Avatar.PublicID)
	assert.Empty(t, f.avatars.destroyed)

	second, err := f.svc.UpdateAvatar(context.Background(), alice.ID, "selfie-2.png")
	require.NoError(t, err)
	assert.NotEqual(t, first.Avatar.PublicID, second.Avatar.PublicID)
	assert.Equal(t, []string{first.Avatar.PublicID}, f.avatars.destroyed)
	assert.Equal(t, 2, f.avatars.uploads)
}

func TestForgotPassword_MailsResetLink(t *testing.T) {
	f := newUserFixture(t)
	seedUser(t, f.users, "alice@example.com", "s3cret")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "alice@example.com"))

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, mail.ResetTemplate, f.mailer.sent[0].Template)
	assert.Contains(t, mailData(t, f.mailer)["ResetURL"], "https://docreate.example.com/password/reset/")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, f.mailer.sent)
}

func TestResetPassword_RoundTrip(t *testing.T) {
	f := newUserFixture(t)
	alice := seedUser(t, f.users, "alice@example.com", "s3cret")

	resetToken, err := f.tokens.SignResetToken(alice.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetPassword(context.Background(), resetToken, "n3w-secret"))

	stored, err := f.users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, token.ComparePassword(stored.Password, "n3w-secret"))
	assert.False(t, token.ComparePassword(stored.Password, "s3cret"))
}

func TestResetPassword_InvalidToken(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.ResetPassword(context.Background(), "garbage", "n3w-secret")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
