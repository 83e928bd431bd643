// Package rbac manages the shared reference data of the authorization model:
// roles, permissions and the grant edges between them.
package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

type RBACService struct {
	roleRepo repository.RoleRepo
	permRepo repository.PermissionRepo
}

func NewService(roleRepo repository.RoleRepo, permRepo repository.PermissionRepo) *RBACService {
	return &RBACService{
		roleRepo: roleRepo,
		permRepo: permRepo,
	}
}

func (s *RBACService) CreateRole(ctx context.Context, arg repository.CreateRoleParams) (models.Role, error) {
	return s.roleRepo.Create(ctx, arg)
}

func (s *RBACService) GetRole(ctx context.Context, roleID uuid.UUID) (models.Role, error) {
	return s.roleRepo.GetByID(ctx, roleID)
}

func (s *RBACService) ListRoles(ctx context.Context, arg repository.ListParams) (repository.Page[models.Role], error) {
	return s.roleRepo.List(ctx, arg)
}

func (s *RBACService) UpdateRole(ctx context.Context, roleID uuid.UUID, upd repository.RoleUpdate) (models.Role, error) {
	return s.roleRepo.Update(ctx, roleID, upd)
}

// DeleteRole refuses to delete built-in roles marked not removable.
func (s *RBACService) DeleteRole(ctx context.Context, roleID uuid.UUID) error {
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if !role.Removable {
		return fmt.Errorf("role %q. Err: %w", role.Name, apperrors.ErrNotRemovable)
	}

	return s.roleRepo.Delete(ctx, roleID)
}

// GrantPermission adds the role-permission edge and returns the role with
// permissions reloaded.
func (s *RBACService) GrantPermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) (models.Role, error) {
	// Check both sides exist so missing ids map to their own not found errors
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return models.Role{}, err
	}
	if _, err := s.permRepo.GetByID(ctx, permissionID); err != nil {
		return models.Role{}, err
	}

	if err := s.roleRepo.AddPermission(ctx, roleID, permissionID); err != nil {
		return models.Role{}, err
	}
	return s.roleRepo.GetByID(ctx, roleID)
}

func (s *RBACService) RevokePermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) (models.Role, error) {
	if err := s.roleRepo.RemovePermission(ctx, roleID, permissionID); err != nil {
		return models.Role{}, err
	}
	return s.roleRepo.GetByID(ctx, roleID)
}

func (s *RBACService) CreatePermission(ctx context.Context, arg repository.CreatePermissionParams) (models.Permission, error) {
	return s.permRepo.Create(ctx, arg)
}

func (s *RBACService) GetPermission(ctx context.Context, permissionID uuid.UUID) (models.Permission, error) {
	return s.permRepo.GetByID(ctx, permissionID)
}

func (s *RBACService) ListPermissions(ctx context.Context, arg repository.ListParams) (repository.Page[models.Permission], error) {
	return s.permRepo.List(ctx, arg)
}

func (s *RBACService) UpdatePermission(ctx context.Context, permissionID uuid.UUID, upd repository.PermissionUpdate) (models.Permission, error) {
	return s.permRepo.Update(ctx, permissionID, upd)
}

// DeletePermission refuses to delete built-in permissions marked not removable.
func (s *RBACService) DeletePermission(ctx context.Context, permissionID uuid.UUID) error {
	perm, err := s.permRepo.GetByID(ctx, permissionID)
	if err != nil {
		return err
	}
	if !perm.Removable {
		return fmt.Errorf("permission %q. Err: %w", perm.Name, apperrors.ErrNotRemovable)
	}

	return s.permRepo.Delete(ctx, permissionID)
}
