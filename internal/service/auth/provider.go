package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
)

const (
	defaultSigningMethod       = "HS256"
	defaultAccessExpiresIn     = 15 * time.Minute
	defaultRefreshExpiresIn    = 24 * time.Hour
	defaultRememberMeExpiresIn = 30 * 24 * time.Hour
)

// Token provider with sensible defaults
type TokenProviderConfig struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetimes
	// If not set than defaults are used
	AccessExpiresIn     time.Duration
	RefreshExpiresIn    time.Duration
	RememberMeExpiresIn time.Duration
}

// TokenProvider signs and verifies JWT tokens.
// It keeps no mutable state: the remember-me lifetime choice is a parameter
// of the issuance call, so one shared provider is safe under concurrent logins.
type TokenProvider struct {
	key []byte
	alg jwt.SigningMethod

	accessExpiresIn     time.Duration
	refreshExpiresIn    time.Duration
	rememberMeExpiresIn time.Duration
}

func NewTokenProvider(cfg TokenProviderConfig) (*TokenProvider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing method must be from HMAC family, got %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessExpiresIn, defaultAccessExpiresIn)
	setDefaultDuration(&cfg.RefreshExpiresIn, defaultRefreshExpiresIn)
	setDefaultDuration(&cfg.RememberMeExpiresIn, defaultRememberMeExpiresIn)

	return &TokenProvider{
		key:                 []byte(cfg.SecretKey),
		alg:                 alg,
		accessExpiresIn:     cfg.AccessExpiresIn,
		refreshExpiresIn:    cfg.RefreshExpiresIn,
		rememberMeExpiresIn: cfg.RememberMeExpiresIn,
	}, nil
}

func (p *TokenProvider) AccessExpiresIn() time.Duration {
	return p.accessExpiresIn
}

// RefreshExpiresIn returns the effective refresh lifetime for the login choice.
func (p *TokenProvider) RefreshExpiresIn(rememberMe bool) time.Duration {
	if rememberMe {
		return p.rememberMeExpiresIn
	}
	return p.refreshExpiresIn
}

func (p *TokenProvider) GenerateAccessToken(subject string) (models.IssuedToken, error) {
	return p.generate(subject, p.accessExpiresIn)
}

func (p *TokenProvider) GenerateRefreshToken(subject string, rememberMe bool) (models.IssuedToken, error) {
	return p.generate(subject, p.RefreshExpiresIn(rememberMe))
}

func (p *TokenProvider) generate(subject string, expiresIn time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(expiresIn)

	// RegisteredClaims omits an empty issuer, but the claim must be present
	// in the payload even when blank
	token := jwt.NewWithClaims(
		p.alg,
		jwt.MapClaims{
			"sub": subject,
			"iss": "",
			"iat": jwt.NewNumericDate(now),
			"exp": jwt.NewNumericDate(expiresAt),
		},
	)

	signed, err := token.SignedString(p.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse verifies the token signature and expiry and returns the subject claim.
// Every rejection reason is a distinct apperrors sentinel, so callers can tell
// expired from malformed from unsupported from illegal input.
func (p *TokenProvider) Parse(tokenString string) (subject string, err error) {
	if tokenString == "" {
		return "", fmt.Errorf("empty token string. Err: %w", apperrors.ErrTokenIllegal)
	}

	// Method check lives in the keyfunc so tokens signed with a foreign
	// algorithm surface as ErrTokenUnsupported instead of a generic failure
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != p.alg.Alg() {
				return nil, apperrors.ErrTokenUnsupported
			}
			return p.key, nil
		},
	)

	switch {
	case err == nil:
		return claims.Subject, nil
	case errors.Is(err, apperrors.ErrTokenUnsupported):
		return "", fmt.Errorf("error while verifying token. Err: %w", apperrors.ErrTokenUnsupported)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("error while verifying token. Err: %w", apperrors.ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", fmt.Errorf("error while verifying token. Err: %w", apperrors.ErrTokenMalformed)
	default:
		return "", fmt.Errorf("error while verifying token. Err: %w", apperrors.ErrTokenInvalid)
	}
}
