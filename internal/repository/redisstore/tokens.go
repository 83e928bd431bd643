// Package redisstore persists issued token records in Redis.
//
// Every record is a hash keyed by the generated token id plus index keys for
// the user id, the access token and the refresh token. All keys share one TTL
// equal to the distance between the access token expiry and the moment of the
// write, so the store evicts the whole record on its own and no caller ever
// deletes anything.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
)

const (
	tokenKeyPrefix   = "jwt:token:"
	userIdxPrefix    = "jwt:idx:user:"
	accessIdxPrefix  = "jwt:idx:access:"
	refreshIdxPrefix = "jwt:idx:refresh:"
)

type TokenRepo struct {
	client *redis.Client
}

func NewTokenRepo(client *redis.Client) (*TokenRepo, error) {
	if client == nil {
		return nil, errors.New("redis client must not be nil")
	}
	return &TokenRepo{client: client}, nil
}

// Save persists the record and its index keys with the record TTL.
func (r *TokenRepo) Save(ctx context.Context, token models.JwtToken) error {
	ttl := time.Until(token.AccessTokenExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("repo error: token ttl must be positive, %w", apperrors.ErrTokenExpired)
	}

	key := tokenKeyPrefix + token.ID.String()

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":                     token.ID.String(),
		"userId":                 token.UserID.String(),
		"accessToken":            token.AccessToken,
		"refreshToken":           token.RefreshToken,
		"rememberMe":             strconv.FormatBool(token.RememberMe),
		"ipAddress":              token.IPAddress,
		"userAgent":              token.UserAgent,
		"accessTokenExpiresAtMs": strconv.FormatInt(token.AccessTokenExpiresAt.UnixMilli(), 10),
	})
	pipe.PExpire(ctx, key, ttl)
	pipe.Set(ctx, userIdxPrefix+token.UserID.String(), token.ID.String(), ttl)
	pipe.Set(ctx, accessIdxPrefix+token.AccessToken, token.ID.String(), ttl)
	pipe.Set(ctx, refreshIdxPrefix+token.RefreshToken, token.ID.String(), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *TokenRepo) FindByID(ctx context.Context, id uuid.UUID) (models.JwtToken, error) {
	return r.getRecord(ctx, id.String())
}

func (r *TokenRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (models.JwtToken, error) {
	return r.findByIndex(ctx, userIdxPrefix+userID.String())
}

func (r *TokenRepo) FindByAccessToken(ctx context.Context, accessToken string) (models.JwtToken, error) {
	return r.findByIndex(ctx, accessIdxPrefix+accessToken)
}

func (r *TokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (models.JwtToken, error) {
	return r.findByIndex(ctx, refreshIdxPrefix+refreshToken)
}

func (r *TokenRepo) findByIndex(ctx context.Context, indexKey string) (models.JwtToken, error) {
	var token models.JwtToken

	id, err := r.client.Get(ctx, indexKey).Result()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		return token, apperrors.ErrTokenNotFound
	default:
		return token, fmt.Errorf("redis error: %w", err)
	}

	return r.getRecord(ctx, id)
}

func (r *TokenRepo) getRecord(ctx context.Context, id string) (models.JwtToken, error) {
	var token models.JwtToken

	fields, err := r.client.HGetAll(ctx, tokenKeyPrefix+id).Result()
	if err != nil {
		return token, fmt.Errorf("redis error: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	// The index may briefly outlive the record around the expiry moment
	if len(fields) == 0 {
		return token, apperrors.ErrTokenNotFound
	}

	return recordToToken(fields)
}

func recordToToken(fields map[string]string) (models.JwtToken, error) {
	var token models.JwtToken
	var err error

	token.ID, err = uuid.Parse(fields["id"])
	if err != nil {
		return token, fmt.Errorf("corrupt token record: %w", err)
	}
	token.UserID, err = uuid.Parse(fields["userId"])
	if err != nil {
		return token, fmt.Errorf("corrupt token record: %w", err)
	}

	token.AccessToken = fields["accessToken"]
	token.RefreshToken = fields["refreshToken"]
	token.RememberMe, _ = strconv.ParseBool(fields["rememberMe"])
	token.IPAddress = fields["ipAddress"]
	token.UserAgent = fields["userAgent"]

	ms, err := strconv.ParseInt(fields["accessTokenExpiresAtMs"], 10, 64)
	if err != nil {
		return token, fmt.Errorf("corrupt token record: %w", err)
	}
	token.AccessTokenExpiresAt = time.UnixMilli(ms)

	return token, nil
}
