package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/principalctx"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/i18n"
	applogger "github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/logger"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, r *http.Request) (auth.Principal, error)

func (f authFunc) Authenticate(ctx context.Context, r *http.Request) (auth.Principal, error) {
	return f(ctx, r)
}

func testMapper() *render.Mapper {
	return render.NewMapper(i18n.NewMessageSource("en"), applogger.NewNoOpLogger())
}

func adminPrincipal() auth.Principal {
	return auth.NewPrincipal(models.User{
		Email: "admin@example.com",
		Roles: []models.Role{
			{Name: "ADMIN", Permissions: []models.Permission{{Name: "USERS_READ"}}},
		},
	})
}

func TestAuthMiddleware(t *testing.T) {
	// Simple handler that reads the principal from context and echoes its name
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalctx.FromContext(r.Context())
		require.True(t, ok, "middleware has to set the principal or answer the error itself")

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(principal.Username()))
		require.NoError(t, err)
	})

	t.Run("auth ok", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, r *http.Request) (auth.Principal, error) {
			return adminPrincipal(), nil
		}), testMapper())

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", string(body))
		require.Equal(t, "admin@example.com", string(body))
	})

	t.Run("auth fail", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, r *http.Request) (auth.Principal, error) {
			return auth.Principal{}, errors.New("no way")
		}), testMapper())

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t,
			`{"message": "Full authentication is required to access this resource"}`,
			string(body),
		)
	})

	t.Run("expired token message", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, r *http.Request) (auth.Principal, error) {
			return auth.Principal{}, apperrors.ErrTokenExpired
		}), testMapper())

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"message": "Token is expired"}`, string(body))
	})
}

func TestRequireAuthority(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withPrincipal := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := principalctx.NewContext(r.Context(), adminPrincipal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	get := func(t *testing.T, h http.Handler) *http.Response {
		t.Helper()

		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() }) // nolint:errcheck
		return resp
	}

	t.Run("role match", func(t *testing.T) {
		h := withPrincipal(RequireRole(testMapper(), "ADMIN")(okHandler))

		resp := get(t, h)

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("any of several roles", func(t *testing.T) {
		h := withPrincipal(RequireRole(testMapper(), "SUPERVISOR", "ADMIN")(okHandler))

		resp := get(t, h)

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("role mismatch", func(t *testing.T) {
		h := withPrincipal(RequireRole(testMapper(), "SUPERVISOR")(okHandler))

		resp := get(t, h)

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("permission match", func(t *testing.T) {
		h := withPrincipal(RequirePermission(testMapper(), "USERS_READ")(okHandler))

		resp := get(t, h)

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("permission mismatch", func(t *testing.T) {
		h := withPrincipal(RequirePermission(testMapper(), "USERS_WRITE")(okHandler))

		resp := get(t, h)

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("no principal in context", func(t *testing.T) {
		h := RequireRole(testMapper(), "ADMIN")(okHandler)

		resp := get(t, h)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
