package middleware

import (
	"context"
	"net/http"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/principalctx"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
)

type authService interface {
	Authenticate(ctx context.Context, r *http.Request) (auth.Principal, error)
}

// AuthMiddleware verifies the bearer token and attaches the principal to the
// request context. Failures leave through the mapper entry point as 401 with
// the rejection reason picked in its fixed priority order.
func AuthMiddleware(as authService, mapper *render.Mapper) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := as.Authenticate(r.Context(), r)
			if err != nil {
				mapper.AuthError(w, r, err)
				return
			}

			ctx := principalctx.NewContext(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
