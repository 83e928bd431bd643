package models

import (
	"time"

	"github.com/google/uuid"
)

// JwtToken is the persisted record of an issued token pair.
// The token store keeps it only until AccessTokenExpiresAt: the record TTL is
// the distance between that moment and the time of the write. Nothing deletes
// the record explicitly, rotation saves a new one.
type JwtToken struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	AccessToken          string
	RefreshToken         string
	RememberMe           bool
	IPAddress            string
	UserAgent            string
	AccessTokenExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued on login or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
