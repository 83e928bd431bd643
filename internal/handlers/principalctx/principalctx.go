// Package principalctx carries the authenticated principal through the
// request context.
package principalctx

import (
	"context"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
)

type ctxKey struct{}

func NewContext(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(auth.Principal)
	return p, ok
}
