package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, first_name, last_name, email, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at, first_name, last_name, email, password_hash, reset_password_token, reset_password_token_expiry
`

func (r *UserRepo) Create(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), arg.FirstName, arg.LastName, arg.Email, arg.PasswordHash)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, updated_at, first_name, last_name, email, password_hash, reset_password_token, reset_password_token_expiry
FROM users
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return r.collectUser(ctx, rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, created_at, updated_at, first_name, last_name, email, password_hash, reset_password_token, reset_password_token_expiry
FROM users
WHERE email = $1
`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return r.collectUser(ctx, rows)
}

const listUsers = `-- name: ListUsers
SELECT id, created_at, updated_at, first_name, last_name, email, password_hash, reset_password_token, reset_password_token_expiry
FROM users
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`

const countUsers = `-- name: CountUsers
SELECT count(*) FROM users
`

func (r *UserRepo) List(ctx context.Context, arg repository.ListParams) (repository.Page[models.User], error) {
	page := repository.Page[models.User]{Page: arg.Page, Size: arg.Size}

	rows, _ := r.DB.Query(ctx, listUsers, arg.Size, arg.Offset())
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadRoles(ctx, users); err != nil {
		return page, err
	}

	err = r.DB.QueryRow(ctx, countUsers).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	page.Items = users
	return page, nil
}

const updateUser = `-- name: UpdateUser
UPDATE users
SET first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    email      = COALESCE($4, email),
    updated_at = now()
WHERE id = $1
RETURNING id, created_at, updated_at, first_name, last_name, email, password_hash, reset_password_token, reset_password_token_expiry
`

func (r *UserRepo) Update(ctx context.Context, userID uuid.UUID, upd repository.UserUpdate) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser, userID, upd.FirstName, upd.LastName, upd.Email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}
		return user, fmt.Errorf("db error: %w", err)
	}

	return r.withRoles(ctx, user)
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const assignRole = `-- name: AssignRole
INSERT INTO user_roles (user_id, role_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

// AssignRole creates the user-role edge. Assigning the same role twice is a no-op.
func (r *UserRepo) AssignRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, assignRole, userID, roleID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			if strings.Contains(pgErr.ConstraintName, "user_id") {
				return apperrors.ErrUserNotFound
			}
			return apperrors.ErrRoleNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const removeRole = `-- name: RemoveRole
DELETE FROM user_roles
WHERE user_id = $1 AND role_id = $2
`

func (r *UserRepo) RemoveRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, removeRole, userID, roleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const userRoles = `-- name: UserRoles
SELECT ur.user_id, r.id, r.created_at, r.updated_at, r.name, r.display_name, r.description, r.removable
FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = ANY($1)
ORDER BY r.name
`

// loadRoles fetches roles with their permissions for every passed user and
// attaches them in place.
func (r *UserRepo) loadRoles(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}

	rows, _ := r.DB.Query(ctx, userRoles, ids)

	type userRole struct {
		userID uuid.UUID
		role   models.Role
	}
	edges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (userRole, error) {
		var e userRole
		err := row.Scan(&e.userID, &e.role.ID, &e.role.CreatedAt, &e.role.UpdatedAt, &e.role.Name, &e.role.DisplayName, &e.role.Description, &e.role.Removable)
		return e, err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	roleIDs := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		roleIDs = append(roleIDs, e.role.ID)
	}

	permsByRole, err := rolePermissions(ctx, r.DB, roleIDs)
	if err != nil {
		return err
	}

	rolesByUser := make(map[uuid.UUID][]models.Role, len(users))
	for _, e := range edges {
		e.role.Permissions = permsByRole[e.role.ID]
		rolesByUser[e.userID] = append(rolesByUser[e.userID], e.role)
	}

	for i := range users {
		users[i].Roles = rolesByUser[users[i].ID]
	}
	return nil
}

func (r *UserRepo) withRoles(ctx context.Context, user models.User) (models.User, error) {
	users := []models.User{user}
	if err := r.loadRoles(ctx, users); err != nil {
		return user, err
	}
	return users[0], nil
}

func (r *UserRepo) collectUser(ctx context.Context, rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return r.withRoles(ctx, user)
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt,
		&u.FirstName, &u.LastName, &u.Email, &u.HashedPassword,
		&u.ResetPasswordToken, &u.ResetPasswordTokenExpiry,
	)
	return u, err
}
