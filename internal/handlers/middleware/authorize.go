package middleware

import (
	"net/http"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/principalctx"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
)

// RequireRole allows the request through when the principal holds at least
// one of the named roles.
func RequireRole(mapper *render.Mapper, names ...string) func(http.Handler) http.Handler {
	return requireAuthority(mapper, names, func(p principal, name string) bool {
		return p.HasRole(name)
	})
}

// RequirePermission allows the request through when the principal holds at
// least one of the named permissions, flattened through its roles.
func RequirePermission(mapper *render.Mapper, names ...string) func(http.Handler) http.Handler {
	return requireAuthority(mapper, names, func(p principal, name string) bool {
		return p.HasPermission(name)
	})
}

type principal interface {
	HasRole(name string) bool
	HasPermission(name string) bool
}

func requireAuthority(mapper *render.Mapper, names []string, has func(principal, string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalctx.FromContext(r.Context())
			if !ok {
				mapper.AuthError(w, r, apperrors.ErrMissingAuthentication)
				return
			}

			for _, name := range names {
				if has(p, name) {
					next.ServeHTTP(w, r)
					return
				}
			}

			mapper.Error(w, r, apperrors.ErrAccessDenied)
		})
	}
}
