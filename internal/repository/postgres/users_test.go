package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/testutil"
)

func createTestUser(t *testing.T, r *UserRepo, email string) models.User {
	t.Helper()

	user, err := r.Create(t.Context(), repository.CreateUserParams{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "hashedpassword123",
	})
	require.NoError(t, err)
	return user
}

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.Create(t.Context(), repository.CreateUserParams{
				FirstName:    "Jane",
				LastName:     "Doe",
				Email:        "jane@example.com",
				PasswordHash: "hashedpassword123",
			})

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "Jane", user.FirstName)
			assert.Equal(t, "Doe", user.LastName)
			assert.Equal(t, "jane@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Nil(t, user.ResetPasswordToken)
			assert.Nil(t, user.ResetPasswordTokenExpiry)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			createTestUser(t, &r, "dup@example.com")

			_, err := r.Create(t.Context(), repository.CreateUserParams{
				FirstName:    "Other",
				LastName:     "User",
				Email:        "dup@example.com",
				PasswordHash: "otherhash",
			})

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, &r, "findbyid@example.com")

			got, err := r.GetByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)
			assert.Equal(t, created.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, &r, "findbyemail@example.com")

			got, err := r.GetByEmail(t.Context(), "findbyemail@example.com")

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetByEmail(t.Context(), "nobody@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update keeps untouched fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, &r, "update@example.com")

			newEmail := "updated@example.com"
			got, err := r.Update(t.Context(), created.ID, repository.UserUpdate{Email: &newEmail})

			require.NoError(t, err)
			assert.Equal(t, "updated@example.com", got.Email)
			assert.Equal(t, created.FirstName, got.FirstName)
			assert.Equal(t, created.LastName, got.LastName)
			assert.True(t, got.UpdatedAt.After(created.UpdatedAt) || got.UpdatedAt.Equal(created.UpdatedAt))
		})
	})

	t.Run("update to taken email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			createTestUser(t, &r, "taken@example.com")
			other := createTestUser(t, &r, "other@example.com")

			taken := "taken@example.com"
			_, err := r.Update(t.Context(), other.ID, repository.UserUpdate{Email: &taken})

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("update missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			name := "Ghost"
			_, err := r.Update(t.Context(), uuid.New(), repository.UserUpdate{FirstName: &name})

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("list ordered by creation", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			first := createTestUser(t, &r, "list-1@example.com")
			second := createTestUser(t, &r, "list-2@example.com")
			third := createTestUser(t, &r, "list-3@example.com")

			page, err := r.List(t.Context(), repository.ListParams{Page: 1, Size: 2})

			require.NoError(t, err)
			require.Len(t, page.Items, 2)
			assert.Equal(t, first.ID, page.Items[0].ID)
			assert.Equal(t, second.ID, page.Items[1].ID)
			assert.Equal(t, int64(3), page.Total)

			page, err = r.List(t.Context(), repository.ListParams{Page: 2, Size: 2})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, third.ID, page.Items[0].ID)
		})
	})

	t.Run("users carry roles with permissions", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			roleRepo := RoleRepo{DB: tx}
			permRepo := PermissionRepo{DB: tx}

			user := createTestUser(t, &r, "withroles@example.com")

			role, err := roleRepo.Create(t.Context(), repository.CreateRoleParams{
				Name: "ADMIN", DisplayName: "Admin", Removable: true,
			})
			require.NoError(t, err)

			perm, err := permRepo.Create(t.Context(), repository.CreatePermissionParams{
				Name: "USERS_READ", DisplayName: "Read users", Removable: true,
			})
			require.NoError(t, err)

			require.NoError(t, roleRepo.AddPermission(t.Context(), role.ID, perm.ID))
			require.NoError(t, r.AssignRole(t.Context(), user.ID, role.ID))

			got, err := r.GetByID(t.Context(), user.ID)

			require.NoError(t, err)
			require.Len(t, got.Roles, 1)
			assert.Equal(t, "ADMIN", got.Roles[0].Name)
			require.Len(t, got.Roles[0].Permissions, 1)
			assert.Equal(t, "USERS_READ", got.Roles[0].Permissions[0].Name)
		})
	})

	t.Run("assign role twice is no-op", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			roleRepo := RoleRepo{DB: tx}

			user := createTestUser(t, &r, "twice@example.com")
			role, err := roleRepo.Create(t.Context(), repository.CreateRoleParams{
				Name: "USER", DisplayName: "User", Removable: true,
			})
			require.NoError(t, err)

			require.NoError(t, r.AssignRole(t.Context(), user.ID, role.ID))
			require.NoError(t, r.AssignRole(t.Context(), user.ID, role.ID))

			got, err := r.GetByID(t.Context(), user.ID)
			require.NoError(t, err)
			assert.Len(t, got.Roles, 1)
		})
	})

	t.Run("assign role to missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			roleRepo := RoleRepo{DB: tx}

			role, err := roleRepo.Create(t.Context(), repository.CreateRoleParams{
				Name: "USER", DisplayName: "User", Removable: true,
			})
			require.NoError(t, err)

			err = r.AssignRole(t.Context(), uuid.New(), role.ID)

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("delete user removes role edges", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			roleRepo := RoleRepo{DB: tx}

			user := createTestUser(t, &r, "cascade@example.com")
			role, err := roleRepo.Create(t.Context(), repository.CreateRoleParams{
				Name: "USER", DisplayName: "User", Removable: true,
			})
			require.NoError(t, err)
			require.NoError(t, r.AssignRole(t.Context(), user.ID, role.ID))

			require.NoError(t, r.Delete(t.Context(), user.ID))

			// Role itself survives
			_, err = roleRepo.GetByID(t.Context(), role.ID)
			require.NoError(t, err)
		})
	})

	t.Run("delete missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			err := r.Delete(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
