package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

type permissionService interface {
	CreatePermission(ctx context.Context, arg repository.CreatePermissionParams) (models.Permission, error)
	GetPermission(ctx context.Context, permissionID uuid.UUID) (models.Permission, error)
	ListPermissions(ctx context.Context, arg repository.ListParams) (repository.Page[models.Permission], error)
	UpdatePermission(ctx context.Context, permissionID uuid.UUID, upd repository.PermissionUpdate) (models.Permission, error)
	DeletePermission(ctx context.Context, permissionID uuid.UUID) error
}

type PermissionHandler struct {
	permissionService permissionService
	mapper            *render.Mapper
}

func NewPermission(ps permissionService, mapper *render.Mapper) *PermissionHandler {
	return &PermissionHandler{permissionService: ps, mapper: mapper}
}

func (h *PermissionHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, wrap(handler))
	}

	handle("POST /permissions", h.create)
	handle("GET /permissions", h.list)
	handle("GET /permissions/{id}", h.get)
	handle("PATCH /permissions/{id}", h.update)
	handle("DELETE /permissions/{id}", h.delete)

	mux.HandleFunc("/permissions", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/permissions/{id}", h.mapper.MethodNotAllowed)
}

func (h *PermissionHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreatePermissionRequest struct {
		Name        string `json:"name" validate:"required,max=100"`
		DisplayName string `json:"displayName" validate:"required,max=255"`
		Description string `json:"description"`
	}

	data, err := render.BindAndValidate[CreatePermissionRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	created, err := h.permissionService.CreatePermission(r.Context(), repository.CreatePermissionParams{
		Name:        data.Name,
		DisplayName: data.DisplayName,
		Description: data.Description,
		Removable:   true,
	})
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSONWithStatus(w, toPermissionResponse(created), http.StatusCreated)
}

func (h *PermissionHandler) list(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromRequest(r)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	page, err := h.permissionService.ListPermissions(r.Context(), params)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toPaginationResponse(page, toPermissionResponse))
}

func (h *PermissionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	found, err := h.permissionService.GetPermission(r.Context(), id)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toPermissionResponse(found))
}

func (h *PermissionHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdatePermissionRequest struct {
		DisplayName *string `json:"displayName" validate:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	data, err := render.BindAndValidate[UpdatePermissionRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	updated, err := h.permissionService.UpdatePermission(r.Context(), id, repository.PermissionUpdate{
		DisplayName: data.DisplayName,
		Description: data.Description,
	})
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toPermissionResponse(updated))
}

func (h *PermissionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	if err := h.permissionService.DeletePermission(r.Context(), id); err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
