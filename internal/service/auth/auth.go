package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

// Auth service config
type Config struct {
	// Hasher to use during login
	// If not set than default bcrypt hasher is used
	Hasher PasswordHasher
}

// Auth service
// Issues token pairs, persists their records in the token store and
// reconstructs the principal on every authenticated request
type AuthService struct {
	provider  *TokenProvider
	hasher    PasswordHasher
	userRepo  repository.UserRepo
	tokenRepo repository.TokenRepo

	accessHeaderName string
	accessAuthScheme string
}

func NewService(cfg Config, provider *TokenProvider, userRepo repository.UserRepo, tokenRepo repository.TokenRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if provider == nil {
		return nil, errors.New("token provider must not be nil")
	}
	if userRepo == nil || tokenRepo == nil {
		return nil, errors.New("repos must not be nil")
	}

	return &AuthService{
		provider:         provider,
		hasher:           hasher,
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		accessHeaderName: defaultAccessHeaderName,
		accessAuthScheme: defaultAccessAuthScheme,
	}, nil
}

// Client metadata captured with every issued token record
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// ClientInfoFromRequest extracts the caller address and agent from the request.
func ClientInfoFromRequest(r *http.Request) ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	return ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}

// LoadPrincipal loads the user by email and wraps it with its authority sets.
// Returns apperrors.ErrUserNotFound if no user matches.
func (s *AuthService) LoadPrincipal(ctx context.Context, email string) (Principal, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return Principal{}, err
	}

	return NewPrincipal(user), nil
}

// Login checks credentials and issues a token pair.
// Both the unknown email and a wrong password collapse into the same
// apperrors.ErrBadCredentials, so responses do not reveal which one it was.
func (s *AuthService) Login(ctx context.Context, email string, password string, rememberMe bool, client ClientInfo) (models.TokenPair, error) {
	principal, err := s.LoadPrincipal(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.TokenPair{}, apperrors.ErrBadCredentials
		}
		return models.TokenPair{}, fmt.Errorf("error while loading principal. Err: %w", err)
	}

	if err := s.hasher.Compare(principal.PasswordHash(), password); err != nil {
		return models.TokenPair{}, apperrors.ErrBadCredentials
	}

	return s.issuePair(ctx, principal.User, rememberMe, client)
}

// Refresh verifies the refresh token, requires a live store record for it and
// issues a new pair. Rotation saves a new record, the old one simply expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (models.TokenPair, error) {
	_, err := s.provider.Parse(refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return models.TokenPair{}, fmt.Errorf("refresh failed. Err: %w", apperrors.ErrRefreshTokenExpired)
		}
		return models.TokenPair{}, err
	}

	record, err := s.tokenRepo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while loading token owner. Err: %w", err)
	}

	return s.issuePair(ctx, user, record.RememberMe, client)
}

// Authenticate reconstructs the principal from the request bearer token.
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (Principal, error) {
	access, err := s.accessTokenFromRequest(r)
	if err != nil {
		return Principal{}, err
	}

	subject, err := s.provider.Parse(access)
	if err != nil {
		return Principal{}, err
	}

	// The record must still live in the token store: a structurally valid
	// token whose record is gone is rejected as not found
	if _, err := s.tokenRepo.FindByAccessToken(ctx, access); err != nil {
		return Principal{}, err
	}

	return s.LoadPrincipal(ctx, subject)
}

func (s *AuthService) issuePair(ctx context.Context, user models.User, rememberMe bool, client ClientInfo) (models.TokenPair, error) {
	access, err := s.provider.GenerateAccessToken(user.Email)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.provider.GenerateRefreshToken(user.Email, rememberMe)
	if err != nil {
		return models.TokenPair{}, err
	}

	err = s.tokenRepo.Save(ctx, models.JwtToken{
		ID:                   uuid.New(),
		UserID:               user.ID,
		AccessToken:          access.Value,
		RefreshToken:         refresh.Value,
		RememberMe:           rememberMe,
		IPAddress:            client.IPAddress,
		UserAgent:            client.UserAgent,
		AccessTokenExpiresAt: access.ExpiresAt,
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving token record. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) accessTokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get(s.accessHeaderName)
	if header == "" {
		return "", apperrors.ErrMissingAuthentication
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, s.accessAuthScheme) || token == "" {
		return "", fmt.Errorf("malformed %s header. Err: %w", s.accessHeaderName, apperrors.ErrMissingAuthentication)
	}

	return token, nil
}
