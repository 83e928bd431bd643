package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/apperrors"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserResponse struct {
	ID        uuid.UUID      `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Roles     []RoleResponse `json:"roles"`
}

type RoleResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	DisplayName string               `json:"displayName"`
	Description string               `json:"description"`
	Removable   bool                 `json:"removable"`
	Permissions []PermissionResponse `json:"permissions"`
}

type PermissionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Removable   bool      `json:"removable"`
}

// PaginationResponse wraps paginated list payloads
type PaginationResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

func toUserResponse(u models.User) UserResponse {
	roles := make([]RoleResponse, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, toRoleResponse(r))
	}

	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Roles:     roles,
	}
}

func toRoleResponse(r models.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		Removable:   r.Removable,
		Permissions: perms,
	}
}

func toPermissionResponse(p models.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Description: p.Description,
		Removable:   p.Removable,
	}
}

func toPaginationResponse[M any, R any](page repository.Page[M], convert func(M) R) PaginationResponse[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}

	return PaginationResponse[R]{
		Items: items,
		Page:  page.Page,
		Size:  page.Size,
		Total: page.Total,
	}
}

// listParamsFromRequest parses page/size query params with sane bounds.
func listParamsFromRequest(r *http.Request) (repository.ListParams, error) {
	params := repository.ListParams{Page: 1, Size: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid 'page' query param %q. Err: %w", raw, apperrors.ErrIllegalArgument)
		}
		params.Page = page
	}

	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			return params, fmt.Errorf("invalid 'size' query param %q. Err: %w", raw, apperrors.ErrIllegalArgument)
		}
		params.Size = size
	}

	return params, nil
}

// pathUUID parses the named path wildcard as uuid.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %q path param. Err: %w", name, apperrors.ErrIllegalArgument)
	}
	return id, nil
}
