package application_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifetrack-api/internal/application"
	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/domain/repository"
	"lifetrack-api/internal/infrastructure/oauth"
	"lifetrack-api/pkg/helpers"
)

// mockUserRepo implements repository.UserRepository in memory with the same
// semantics the Mongo store provides: normalized unique emails and atomic
// version bumps.
type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	err   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*entity.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	email := entity.NormalizeEmail(u.Email)
	for _, existing := range m.users {
		if existing.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID.Hex()] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	email = entity.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByProviderID(_ context.Context, providerID string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[u.ID.Hex()]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	m.users[u.ID.Hex()] = &cp
	return nil
}

func (m *mockUserRepo) LinkProvider(_ context.Context, id, provider, providerID string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Provider = provider
	u.ProviderID = providerID
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) BumpTokenVersion(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.TokenVersion++
	return u.TokenVersion, nil
}

func (m *mockUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAuthService(repo repository.UserRepository) *application.AuthService {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	return application.NewAuthService(repo, jwt, testLogger())
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newAuthService(newMockUserRepo())
	ctx := context.Background()

	u, pair, err := svc.Register(ctx, application.RegisterInput{
		Name: " A ", Email: "A@B.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, entity.ProviderLocal, u.Provider)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)

	// Login with a case variant of the registered email.
	_, loginPair, err := svc.Login(ctx, "a@B.COM", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, loginPair.AccessToken)
	assert.NotEqual(t, pair.AccessToken, loginPair.AccessToken)
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "user@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, application.RegisterInput{Name: "B", Email: "User@X.com", Password: "secret2"})
	assert.ErrorIs(t, err, application.ErrEmailTaken)
	assert.Equal(t, 1, repo.count())
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc := newAuthService(newMockUserRepo())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, wrongPwd := svc.Login(ctx, "a@b.com", "wrong")
	_, _, unknownEmail := svc.Login(ctx, "nobody@b.com", "secret1")

	assert.ErrorIs(t, wrongPwd, application.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, application.ErrInvalidCredentials)
	assert.Equal(t, wrongPwd.Error(), unknownEmail.Error())
}

func TestLoginRejectsFederatedOnlyAccount(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	_, err := svc.ResolveFederated(ctx, &oauth.Profile{
		ProviderID: "g-1", Email: "fed@b.com", Name: "Fed",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "fed@b.com", "anything")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestRefreshHonorsTokenVersion(t *testing.T) {
	svc := newAuthService(newMockUserRepo())
	ctx := context.Background()

	u, pair, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)

	require.NoError(t, svc.LogoutAll(ctx, u.ID.Hex()))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newAuthService(newMockUserRepo())
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestResolveFederated(t *testing.T) {
	ctx := context.Background()

	t.Run("new email creates federated user without password", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newAuthService(repo)

		u, err := svc.ResolveFederated(ctx, &oauth.Profile{
			ProviderID: "g-1", Email: "New@B.com", Name: "New User", AvatarURL: "https://img/x.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@b.com", u.Email)
		assert.Equal(t, entity.ProviderGoogle, u.Provider)
		assert.Equal(t, "g-1", u.ProviderID)
		assert.False(t, u.HasPassword())
		assert.Equal(t, 1, repo.count())
	})

	t.Run("known provider id resolves to same user", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newAuthService(repo)

		first, err := svc.ResolveFederated(ctx, &oauth.Profile{ProviderID: "g-1", Email: "a@b.com", Name: "A"})
		require.NoError(t, err)
		second, err := svc.ResolveFederated(ctx, &oauth.Profile{ProviderID: "g-1", Email: "a@b.com", Name: "A"})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("email bound to local account conflicts", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newAuthService(repo)

		_, _, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1"})
		require.NoError(t, err)

		_, err = svc.ResolveFederated(ctx, &oauth.Profile{ProviderID: "g-1", Email: "a@b.com", Name: "A"})
		assert.ErrorIs(t, err, application.ErrProviderConflict)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("google account without provider id gets linked", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newAuthService(repo)

		legacy := &entity.User{Name: "A", Email: "a@b.com", Provider: entity.ProviderGoogle}
		require.NoError(t, repo.Create(ctx, legacy))

		u, err := svc.ResolveFederated(ctx, &oauth.Profile{ProviderID: "g-1", Email: "a@b.com", Name: "A"})
		require.NoError(t, err)
		assert.Equal(t, legacy.ID, u.ID)
		assert.Equal(t, "g-1", u.ProviderID)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("same email different google identity conflicts", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newAuthService(repo)

		_, err := svc.ResolveFederated(ctx, &oauth.Profile{ProviderID: "g-1", Email: "a@b.com", Name: "A"})
		require.NoError(t, err)

		_, err = svc.ResolveFederated(ctx, &oauth.Profile{ProviderID: "g-2", Email: "a@b.com", Name: "A"})
		assert.ErrorIs(t, err, application.ErrProviderConflict)
		assert.Equal(t, 1, repo.count())
	})
}

func TestLogoutAllOnlyIncreasesVersion(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, u.ID.Hex()))
	require.NoError(t, svc.LogoutAll(ctx, u.ID.Hex()))

	got, err := svc.GetProfile(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, got.TokenVersion)
}
