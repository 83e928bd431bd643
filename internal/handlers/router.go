package handlers

import (
	"context"
	"net/http"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/middleware"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/logger"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
)

// RoleAdmin guards the management endpoints for users, roles and permissions.
const RoleAdmin = "ADMIN"

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// authenticator extends the auth routes service with request authentication
// for the middleware.
type authenticator interface {
	authService
	Authenticate(ctx context.Context, r *http.Request) (auth.Principal, error)
}

type RouterConfig struct {
	// SecurityDisabled mounts the unsecured placeholder routes instead of
	// requiring authentication. Meant for local smoke checks only.
	SecurityDisabled bool
}

func NewRouter(
	authService authenticator,
	userService userService,
	roleService roleService,
	permissionService permissionService,
	mapper *render.Mapper,
	l logger.Logger,
	cfg RouterConfig,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService, mapper)
	adminMiddleware := middleware.RequireRole(mapper, RoleAdmin)

	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return chain(h, authMiddleware, adminMiddleware)
	}
	if cfg.SecurityDisabled {
		open := func(h http.Handler) http.Handler { return h }
		withAuth = open
		withAdmin = open
	}

	api := http.NewServeMux()

	NewAuth(authService, mapper).Register(api, withAuth)
	NewUser(userService, mapper).Register(api, withAdmin)
	NewRole(roleService, mapper).Register(api, withAdmin)
	NewPermission(permissionService, mapper).Register(api, withAdmin)
	api.HandleFunc("/", mapper.NotFound)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	if cfg.SecurityDisabled {
		root.HandleFunc("GET /permissions", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, "Hello")
		})
	}
	root.HandleFunc("/", mapper.NotFound)

	handler := chain(root,
		middleware.LoggerMiddleware(l),
	)

	return handler
}
