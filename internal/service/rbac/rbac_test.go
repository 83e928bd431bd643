package rbac

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository/postgres"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/testutil"
)

func Test_RBACService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withService := func(t *testing.T, fn func(s *RBACService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewService(&postgres.RoleRepo{DB: tx}, &postgres.PermissionRepo{DB: tx})
			fn(s)
		})
	}

	createRole := func(t *testing.T, s *RBACService, name string, removable bool) models.Role {
		role, err := s.CreateRole(t.Context(), repository.CreateRoleParams{
			Name:        name,
			DisplayName: name,
			Removable:   removable,
		})
		require.NoError(t, err)
		return role
	}

	createPermission := func(t *testing.T, s *RBACService, name string, removable bool) models.Permission {
		perm, err := s.CreatePermission(t.Context(), repository.CreatePermissionParams{
			Name:        name,
			DisplayName: name,
			Removable:   removable,
		})
		require.NoError(t, err)
		return perm
	}

	t.Run("create role ok", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			role := createRole(t, s, "MANAGER", true)

			assert.NotEqual(t, uuid.Nil, role.ID)
			assert.Equal(t, "MANAGER", role.Name)
			assert.True(t, role.Removable)
			assert.Empty(t, role.Permissions)
		})
	})

	t.Run("duplicate role name rejected", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			createRole(t, s, "MANAGER", true)

			_, err := s.CreateRole(t.Context(), repository.CreateRoleParams{
				Name: "MANAGER", DisplayName: "Other",
			})

			require.ErrorIs(t, err, apperrors.ErrRoleAlreadyExists)
		})
	})

	t.Run("role not found", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			_, err := s.GetRole(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrRoleNotFound)
		})
	})

	t.Run("update role", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			role := createRole(t, s, "MANAGER", true)

			display := "Shift manager"
			updated, err := s.UpdateRole(t.Context(), role.ID, repository.RoleUpdate{DisplayName: &display})

			require.NoError(t, err)
			assert.Equal(t, "Shift manager", updated.DisplayName)
			assert.Equal(t, role.Name, updated.Name, "name is not updatable")
		})
	})

	t.Run("delete role", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			role := createRole(t, s, "MANAGER", true)

			err := s.DeleteRole(t.Context(), role.ID)
			require.NoError(t, err)

			_, err = s.GetRole(t.Context(), role.ID)
			require.ErrorIs(t, err, apperrors.ErrRoleNotFound)
		})
	})

	t.Run("built-in role not removable", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			role := createRole(t, s, "ADMIN", false)

			err := s.DeleteRole(t.Context(), role.ID)

			require.ErrorIs(t, err, apperrors.ErrNotRemovable)

			_, err = s.GetRole(t.Context(), role.ID)
			require.NoError(t, err, "role should still be there")
		})
	})

	t.Run("grant and revoke permission", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			role := createRole(t, s, "MANAGER", true)
			perm := createPermission(t, s, "USERS_READ", true)

			role, err := s.GrantPermission(t.Context(), role.ID, perm.ID)
			require.NoError(t, err)
			require.Len(t, role.Permissions, 1)
			assert.Equal(t, "USERS_READ", role.Permissions[0].Name)

			// Granting twice is a no-op
			role, err = s.GrantPermission(t.Context(), role.ID, perm.ID)
			require.NoError(t, err)
			require.Len(t, role.Permissions, 1)

			role, err = s.RevokePermission(t.Context(), role.ID, perm.ID)
			require.NoError(t, err)
			assert.Empty(t, role.Permissions)
		})
	})

	t.Run("grant with missing role", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			perm := createPermission(t, s, "USERS_READ", true)

			_, err := s.GrantPermission(t.Context(), uuid.New(), perm.ID)

			require.ErrorIs(t, err, apperrors.ErrRoleNotFound)
		})
	})

	t.Run("grant with missing permission", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			role := createRole(t, s, "MANAGER", true)

			_, err := s.GrantPermission(t.Context(), role.ID, uuid.New())

			require.ErrorIs(t, err, apperrors.ErrPermissionNotFound)
		})
	})

	t.Run("duplicate permission name rejected", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			createPermission(t, s, "USERS_READ", true)

			_, err := s.CreatePermission(t.Context(), repository.CreatePermissionParams{
				Name: "USERS_READ", DisplayName: "Other",
			})

			require.ErrorIs(t, err, apperrors.ErrPermissionAlreadyExists)
		})
	})

	t.Run("built-in permission not removable", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			perm := createPermission(t, s, "USERS_READ", false)

			err := s.DeletePermission(t.Context(), perm.ID)

			require.ErrorIs(t, err, apperrors.ErrNotRemovable)
		})
	})

	t.Run("list roles paginated", func(t *testing.T) {
		withService(t, func(s *RBACService) {
			for _, name := range []string{"A", "B", "C"} {
				createRole(t, s, name, true)
			}

			page, err := s.ListRoles(t.Context(), repository.ListParams{Page: 1, Size: 2})

			require.NoError(t, err)
			assert.Len(t, page.Items, 2)
			assert.Equal(t, int64(3), page.Total)
		})
	})
}
