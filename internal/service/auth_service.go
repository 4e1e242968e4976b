package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

type AuthService struct {
	repo          domain.AdminRepository
	tokens        domain.TokenStore
	jwt           *auth.JWTManager
	hasher        auth.PasswordHasher
	loginAttempts int
	loginWindow   time.Duration
	logger        *zerolog.Logger
}

func NewAuthService(
	repo domain.AdminRepository,
	tokens domain.TokenStore,
	jwtManager *auth.JWTManager,
	hasher auth.PasswordHasher,
	limits config.APIRateLimitConfig,
	logger *zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:          repo,
		tokens:        tokens,
		jwt:           jwtManager,
		hasher:        hasher,
		loginAttempts: limits.LoginAttempts,
		loginWindow:   limits.LoginWindow,
		logger:        logger,
	}
}

// Login checks the credentials and issues a capability token. Attempts are
// throttled per clientKey.
func (s *AuthService) Login(ctx context.Context, username, password, clientKey string) (*auth.LoginResult, error) {
	if s.loginAttempts > 0 {
		allowed, err := s.tokens.CheckRateLimit(ctx, "login:"+clientKey, s.loginAttempts, s.loginWindow)
		if err != nil {
			return nil, fmt.Errorf("check login rate limit: %w", err)
		}
		if !allowed {
			s.logger.Warn().Str("client", clientKey).Msg("login throttled")
			return nil, ErrLoginThrottled
		}
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.Info().Str("username", username).Msg("login failed: unknown admin")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		s.logger.Info().Str("username", username).Msg("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwt.GenerateAccessToken(admin.ID, admin.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("admin_id", admin.ID).Str("username", admin.Username).Msg("admin logged in")
	return &auth.LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Admin:     admin,
	}, nil
}

// Authorize verifies a bearer token and turns it into a capability.
func (s *AuthService) Authorize(ctx context.Context, token string) (auth.AdminCapability, error) {
	claims, err := s.jwt.ParseAndValidate(token)
	if err != nil {
		return auth.AdminCapability{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return auth.AdminCapability{}, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return auth.AdminCapability{}, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}

	return auth.Grant(claims), nil
}

// Logout revokes the token behind capability until it would have expired.
func (s *AuthService) Logout(ctx context.Context, capability auth.AdminCapability) error {
	if err := capability.Check(); err != nil {
		return err
	}
	ttl := time.Until(capability.ExpiresAt())
	if err := s.tokens.Revoke(ctx, capability.TokenID(), ttl); err != nil {
		return err
	}
	s.logger.Info().Int64("admin_id", capability.AdminID()).Str("username", capability.Username()).Msg("admin logged out")
	return nil
}

// EnsureDefaultAdmin creates the configured admin when no admin exists yet.
// It reports whether an account was created.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, seed config.AdminSeed) (bool, error) {
	if seed.Username == "" {
		return false, nil
	}
	count, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := s.hasher.Hash(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.Admin{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return false, err
	}

	s.logger.Info().Str("username", admin.Username).Msg("default admin created")
	return true, nil
}
