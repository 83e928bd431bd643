package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
)

// Page of records together with the total amount matching the query
type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int64
}

// ListParams for paginated list queries
// Page starts from 1
type ListParams struct {
	Page int
	Size int
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Size
}

type CreateUserParams struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

type CreateRoleParams struct {
	Name        string
	DisplayName string
	Description string
	Removable   bool
}

type RoleUpdate struct {
	DisplayName *string
	Description *string
}

type CreatePermissionParams struct {
	Name        string
	DisplayName string
	Description string
	Removable   bool
}

type PermissionUpdate struct {
	DisplayName *string
	Description *string
}

// User repository interface
// Returned users carry their roles with permissions loaded
type UserRepo interface {
	// Create user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	Create(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)

	List(ctx context.Context, arg ListParams) (Page[models.User], error)
	Update(ctx context.Context, userID uuid.UUID, upd UserUpdate) (models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error

	// Role assignment edges
	// Both sides of the relation live in a single join table, so adding or
	// removing an edge keeps the relation consistent structurally
	AssignRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) error
	RemoveRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) error
}

// Role repository interface
type RoleRepo interface {
	// If role with name exists already has to return apperrors.ErrRoleAlreadyExists
	Create(ctx context.Context, arg CreateRoleParams) (models.Role, error)

	// If role not found must return apperrors.ErrRoleNotFound
	GetByID(ctx context.Context, roleID uuid.UUID) (models.Role, error)
	GetByName(ctx context.Context, name string) (models.Role, error)

	List(ctx context.Context, arg ListParams) (Page[models.Role], error)
	Update(ctx context.Context, roleID uuid.UUID, upd RoleUpdate) (models.Role, error)
	Delete(ctx context.Context, roleID uuid.UUID) error

	// Permission grant edges
	AddPermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) error
	RemovePermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) error
}

// Permission repository interface
type PermissionRepo interface {
	// If permission with name exists already has to return apperrors.ErrPermissionAlreadyExists
	Create(ctx context.Context, arg CreatePermissionParams) (models.Permission, error)

	// If permission not found must return apperrors.ErrPermissionNotFound
	GetByID(ctx context.Context, permissionID uuid.UUID) (models.Permission, error)

	List(ctx context.Context, arg ListParams) (Page[models.Permission], error)
	Update(ctx context.Context, permissionID uuid.UUID, upd PermissionUpdate) (models.Permission, error)
	Delete(ctx context.Context, permissionID uuid.UUID) error
}

// Token repository interface
// Records expire on their own once the access token lifetime elapses: absence
// is a normal outcome signaled with apperrors.ErrTokenNotFound
type TokenRepo interface {
	Save(ctx context.Context, token models.JwtToken) error

	FindByID(ctx context.Context, id uuid.UUID) (models.JwtToken, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (models.JwtToken, error)
	FindByAccessToken(ctx context.Context, accessToken string) (models.JwtToken, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (models.JwtToken, error)
}

// Storage aggregates the relational repositories
type Storage interface {
	User() UserRepo
	Role() RoleRepo
	Permission() PermissionRepo
}
