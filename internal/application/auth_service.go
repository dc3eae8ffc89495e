package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/domain/repository"
	"lifetrack-api/internal/infrastructure/oauth"
	"lifetrack-api/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProviderConflict   = errors.New("email already registered with another provider")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService implements the local and federated authentication flows.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a local account and issues its first token pair. The
// email is normalized before the duplicate check and the insert, and the
// store's unique index backs the check, so racing registrations for the same
// address still resolve to one account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	email := entity.NormalizeEmail(in.Email)

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, fmt.Errorf("lookup email: %w", err)
	}

	// Hashing failure aborts registration; a user must never be persisted
	// with an unhashed password.
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Provider: entity.ProviderLocal,
		Settings: entity.DefaultSettings(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.IssueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID.Hex(), "provider": u.Provider}).Info("user registered")
	return u, pair, nil
}

// Login verifies a local credential. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.HasPassword() || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.IssueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh redeems a refresh token for a new pair. The token's embedded
// version must match the user's current tokenVersion; a bump since issuance
// makes every older refresh token stale.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if claims.TokenVersion != u.TokenVersion {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.IssueTokens(u)
}

// ResolveFederated exchanges a verified provider assertion for a local user
// record, creating or linking one. It returns a plain result or error; the
// handler decides how to communicate either to the mid-navigation client.
func (s *AuthService) ResolveFederated(ctx context.Context, p *oauth.Profile) (*entity.User, error) {
	u, err := s.Users.GetByProviderID(ctx, p.ProviderID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup provider id: %w", err)
	}

	u, err = s.Users.GetByEmail(ctx, p.Email)
	if err == nil {
		return s.linkFederated(ctx, u, p)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	u = &entity.User{
		Name:       p.Name,
		Email:      entity.NormalizeEmail(p.Email),
		Avatar:     p.AvatarURL,
		Provider:   entity.ProviderGoogle,
		ProviderID: p.ProviderID,
		Settings:   entity.DefaultSettings(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost a race to another sign-in for the same address; resolve
			// against whatever won.
			if existing, lookupErr := s.Users.GetByEmail(ctx, p.Email); lookupErr == nil {
				return s.linkFederated(ctx, existing, p)
			}
		}
		return nil, fmt.Errorf("create federated user: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID.Hex(), "provider": u.Provider}).Info("federated user created")
	return u, nil
}

// linkFederated attaches the assertion to a user found by email. An account
// bound to a different provider is a provider conflict, never a silent merge.
func (s *AuthService) linkFederated(ctx context.Context, u *entity.User, p *oauth.Profile) (*entity.User, error) {
	if u.ProviderID == p.ProviderID {
		return u, nil
	}
	if u.Provider != entity.ProviderGoogle {
		return nil, ErrProviderConflict
	}
	if u.ProviderID != "" {
		// Same email, different Google identity.
		return nil, ErrProviderConflict
	}
	linked, err := s.Users.LinkProvider(ctx, u.ID.Hex(), entity.ProviderGoogle, p.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("link provider: %w", err)
	}
	s.Logger.WithField("user_id", linked.ID.Hex()).Info("federated identity linked")
	return linked, nil
}

// GetProfile loads a live user record by id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name     string
	Avatar   string
	Settings *entity.Settings
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = strings.TrimSpace(in.Name)
	}
	if in.Avatar != "" {
		u.Avatar = in.Avatar
	}
	if in.Settings != nil {
		u.Settings = *in.Settings
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LogoutAll bumps the user's tokenVersion, invalidating every refresh token
// issued so far.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	v, err := s.Users.BumpTokenVersion(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "token_version": v}).Info("all sessions revoked")
	return nil
}

// IssueTokens generates the access/refresh pair for a resolved user. The
// access token carries the identity claims; the refresh token carries the
// tokenVersion current at issuance.
func (s *AuthService) IssueTokens(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID.Hex(), u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID.Hex(), u.TokenVersion)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}
