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

type RoleRepo struct {
	DB DBTX
}

const createRole = `-- name: CreateRole
INSERT INTO roles (id, name, display_name, description, removable)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at, name, display_name, description, removable
`

func (r *RoleRepo) Create(ctx context.Context, arg repository.CreateRoleParams) (models.Role, error) {
	rows, _ := r.DB.Query(ctx, createRole, uuid.New(), arg.Name, arg.DisplayName, arg.Description, arg.Removable)
	role, err := pgx.CollectOneRow(rows, rowToRole)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return role, apperrors.ErrRoleAlreadyExists
		}

		return role, fmt.Errorf("db error: %w", err)
	}

	return role, nil
}

const getRoleByID = `-- name: GetRoleByID
SELECT id, created_at, updated_at, name, display_name, description, removable
FROM roles
WHERE id = $1
`

func (r *RoleRepo) GetByID(ctx context.Context, roleID uuid.UUID) (models.Role, error) {
	rows, _ := r.DB.Query(ctx, getRoleByID, roleID)
	return r.collectRole(ctx, rows)
}

const getRoleByName = `-- name: GetRoleByName
SELECT id, created_at, updated_at, name, display_name, description, removable
FROM roles
WHERE name = $1
`

func (r *RoleRepo) GetByName(ctx context.Context, name string) (models.Role, error) {
	rows, _ := r.DB.Query(ctx, getRoleByName, name)
	return r.collectRole(ctx, rows)
}

const listRoles = `-- name: ListRoles
SELECT id, created_at, updated_at, name, display_name, description, removable
FROM roles
ORDER BY name
LIMIT $1 OFFSET $2
`

const countRoles = `-- name: CountRoles
SELECT count(*) FROM roles
`

func (r *RoleRepo) List(ctx context.Context, arg repository.ListParams) (repository.Page[models.Role], error) {
	page := repository.Page[models.Role]{Page: arg.Page, Size: arg.Size}

	rows, _ := r.DB.Query(ctx, listRoles, arg.Size, arg.Offset())
	roles, err := pgx.CollectRows(rows, rowToRole)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	if err := loadRolePermissions(ctx, r.DB, roles); err != nil {
		return page, err
	}

	err = r.DB.QueryRow(ctx, countRoles).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	page.Items = roles
	return page, nil
}

const updateRole = `-- name: UpdateRole
UPDATE roles
SET display_name = COALESCE($2, display_name),
    description  = COALESCE($3, description),
    updated_at   = now()
WHERE id = $1
RETURNING id, created_at, updated_at, name, display_name, description, removable
`

func (r *RoleRepo) Update(ctx context.Context, roleID uuid.UUID, upd repository.RoleUpdate) (models.Role, error) {
	rows, _ := r.DB.Query(ctx, updateRole, roleID, upd.DisplayName, upd.Description)
	return r.collectRole(ctx, rows)
}

const deleteRole = `-- name: DeleteRole
DELETE FROM roles
WHERE id = $1
`

func (r *RoleRepo) Delete(ctx context.Context, roleID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteRole, roleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRoleNotFound
	}
	return nil
}

const addPermission = `-- name: AddPermission
INSERT INTO role_permissions (role_id, permission_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

// AddPermission creates the role-permission edge. Granting twice is a no-op.
func (r *RoleRepo) AddPermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, addPermission, roleID, permissionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			if strings.Contains(pgErr.ConstraintName, "role_id") {
				return apperrors.ErrRoleNotFound
			}
			return apperrors.ErrPermissionNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const removePermission = `-- name: RemovePermission
DELETE FROM role_permissions
WHERE role_id = $1 AND permission_id = $2
`

func (r *RoleRepo) RemovePermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, removePermission, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *RoleRepo) collectRole(ctx context.Context, rows pgx.Rows) (models.Role, error) {
	role, err := pgx.CollectOneRow(rows, rowToRole)

	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		return role, apperrors.ErrRoleNotFound
	default:
		return role, fmt.Errorf("db error: %w", err)
	}

	roles := []models.Role{role}
	if err := loadRolePermissions(ctx, r.DB, roles); err != nil {
		return role, err
	}
	return roles[0], nil
}

func rowToRole(row pgx.CollectableRow) (models.Role, error) {
	var r models.Role
	err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Name, &r.DisplayName, &r.Description, &r.Removable)
	return r, err
}

const permissionsOfRoles = `-- name: PermissionsOfRoles
SELECT rp.role_id, p.id, p.created_at, p.updated_at, p.name, p.display_name, p.description, p.removable
FROM permissions p
JOIN role_permissions rp ON rp.permission_id = p.id
WHERE rp.role_id = ANY($1)
ORDER BY p.name
`

// rolePermissions returns granted permissions grouped by role id
func rolePermissions(ctx context.Context, db DBTX, roleIDs []uuid.UUID) (map[uuid.UUID][]models.Permission, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	rows, _ := db.Query(ctx, permissionsOfRoles, roleIDs)

	type rolePerm struct {
		roleID uuid.UUID
		perm   models.Permission
	}
	edges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rolePerm, error) {
		var e rolePerm
		err := row.Scan(&e.roleID, &e.perm.ID, &e.perm.CreatedAt, &e.perm.UpdatedAt, &e.perm.Name, &e.perm.DisplayName, &e.perm.Description, &e.perm.Removable)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	byRole := make(map[uuid.UUID][]models.Permission)
	for _, e := range edges {
		byRole[e.roleID] = append(byRole[e.roleID], e.perm)
	}
	return byRole, nil
}

func loadRolePermissions(ctx context.Context, db DBTX, roles []models.Role) error {
	ids := make([]uuid.UUID, 0, len(roles))
	for i := range roles {
		ids = append(ids, roles[i].ID)
	}

	byRole, err := rolePermissions(ctx, db, ids)
	if err != nil {
		return err
	}

	for i := range roles {
		roles[i].Permissions = byRole[roles[i].ID]
	}
	return nil
}
