package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

type PermissionRepo struct {
	DB DBTX
}

const createPermission = `-- name: CreatePermission
INSERT INTO permissions (id, name, display_name, description, removable)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at, name, display_name, description, removable
`

func (r *PermissionRepo) Create(ctx context.Context, arg repository.CreatePermissionParams) (models.Permission, error) {
	rows, _ := r.DB.Query(ctx, createPermission, uuid.New(), arg.Name, arg.DisplayName, arg.Description, arg.Removable)
	perm, err := pgx.CollectOneRow(rows, rowToPermission)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return perm, apperrors.ErrPermissionAlreadyExists
		}

		return perm, fmt.Errorf("db error: %w", err)
	}

	return perm, nil
}

const getPermissionByID = `-- name: GetPermissionByID
SELECT id, created_at, updated_at, name, display_name, description, removable
FROM permissions
WHERE id = $1
`

func (r *PermissionRepo) GetByID(ctx context.Context, permissionID uuid.UUID) (models.Permission, error) {
	rows, _ := r.DB.Query(ctx, getPermissionByID, permissionID)
	return collectPermission(rows)
}

const listPermissions = `-- name: ListPermissions
SELECT id, created_at, updated_at, name, display_name, description, removable
FROM permissions
ORDER BY name
LIMIT $1 OFFSET $2
`

const countPermissions = `-- name: CountPermissions
SELECT count(*) FROM permissions
`

func (r *PermissionRepo) List(ctx context.Context, arg repository.ListParams) (repository.Page[models.Permission], error) {
	page := repository.Page[models.Permission]{Page: arg.Page, Size: arg.Size}

	rows, _ := r.DB.Query(ctx, listPermissions, arg.Size, arg.Offset())
	perms, err := pgx.CollectRows(rows, rowToPermission)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	err = r.DB.QueryRow(ctx, countPermissions).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	page.Items = perms
	return page, nil
}

const updatePermission = `-- name: UpdatePermission
UPDATE permissions
SET display_name = COALESCE($2, display_name),
    description  = COALESCE($3, description),
    updated_at   = now()
WHERE id = $1
RETURNING id, created_at, updated_at, name, display_name, description, removable
`

func (r *PermissionRepo) Update(ctx context.Context, permissionID uuid.UUID, upd repository.PermissionUpdate) (models.Permission, error) {
	rows, _ := r.DB.Query(ctx, updatePermission, permissionID, upd.DisplayName, upd.Description)
	return collectPermission(rows)
}

const deletePermission = `-- name: DeletePermission
DELETE FROM permissions
WHERE id = $1
`

func (r *PermissionRepo) Delete(ctx context.Context, permissionID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePermission, permissionID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPermissionNotFound
	}
	return nil
}

func collectPermission(rows pgx.Rows) (models.Permission, error) {
	perm, err := pgx.CollectOneRow(rows, rowToPermission)

	switch {
	case err == nil:
		return perm, nil
	case errors.Is(err, pgx.ErrNoRows):
		return perm, apperrors.ErrPermissionNotFound
	default:
		return perm, fmt.Errorf("db error: %w", err)
	}
}

func rowToPermission(row pgx.CollectableRow) (models.Permission, error) {
	var p models.Permission
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.DisplayName, &p.Description, &p.Removable)
	return p, err
}
