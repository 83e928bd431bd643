package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/principalctx"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
)

type authService interface {
	Login(ctx context.Context, email string, password string, rememberMe bool, client auth.ClientInfo) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, client auth.ClientInfo) (models.TokenPair, error)
}

type AuthHandler struct {
	authService authService
	mapper      *render.Mapper
}

func NewAuth(as authService, mapper *render.Mapper) *AuthHandler {
	return &AuthHandler{authService: as, mapper: mapper}
}

// Register adds the auth routes. Login and refresh stay open, me sits behind
// the passed auth wrapper.
func (h *AuthHandler) Register(mux *http.ServeMux, withAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
	mux.Handle("GET /auth/me", withAuth(http.HandlerFunc(h.me)))

	mux.HandleFunc("/auth/login", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/auth/refresh", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/auth/me", h.mapper.MethodNotAllowed)
}

type tokenPairResponse struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

func toTokenPairResponse(pair models.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:           pair.Access.Value,
		AccessTokenExpiresAt:  pair.Access.ExpiresAt,
		RefreshToken:          pair.Refresh.Value,
		RefreshTokenExpiresAt: pair.Refresh.ExpiresAt,
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email      string `json:"email" validate:"required,email"`
		Password   string `json:"password" validate:"required"`
		RememberMe bool   `json:"rememberMe"`
	}

	data, err := render.BindAndValidate[LoginRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Login(r.Context(), data.Email, data.Password, data.RememberMe, auth.ClientInfoFromRequest(r))
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toTokenPairResponse(pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Refresh(r.Context(), data.RefreshToken, auth.ClientInfoFromRequest(r))
	if err != nil {
		h.mapper.AuthError(w, r, err)
		return
	}

	render.JSON(w, toTokenPairResponse(pair))
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalctx.FromContext(r.Context())
	render.JSON(w, toUserResponse(principal.User))
}
