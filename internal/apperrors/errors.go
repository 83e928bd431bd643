package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrBadCredentials    = errors.New("bad credentials")

	ErrRoleAlreadyExists       = errors.New("role already exists")
	ErrRoleNotFound            = errors.New("role not found")
	ErrPermissionAlreadyExists = errors.New("permission already exists")
	ErrPermissionNotFound      = errors.New("permission not found")
	ErrNotRemovable            = errors.New("record is not removable")

	// Token verification failures
	// Each rejection reason is its own sentinel so the authentication entry
	// point can tell them apart when picking the response message
	ErrTokenExpired        = errors.New("token is expired")
	ErrRefreshTokenExpired = errors.New("refresh token is expired")
	ErrTokenMalformed      = errors.New("token is malformed")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrTokenUnsupported    = errors.New("token signing method is unsupported")
	ErrTokenIllegal        = errors.New("token argument is illegal")
	ErrTokenNotFound       = errors.New("token not found")

	ErrMissingAuthentication = errors.New("authentication is missing")
	ErrAccessDenied          = errors.New("access denied")

	ErrIllegalArgument = errors.New("illegal argument")

	ErrCipher      = errors.New("cipher failure")
	ErrExpectation = errors.New("expectation failed")
)
