package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

type roleService interface {
	CreateRole(ctx context.Context, arg repository.CreateRoleParams) (models.Role, error)
	GetRole(ctx context.Context, roleID uuid.UUID) (models.Role, error)
	ListRoles(ctx context.Context, arg repository.ListParams) (repository.Page[models.Role], error)
	UpdateRole(ctx context.Context, roleID uuid.UUID, upd repository.RoleUpdate) (models.Role, error)
	DeleteRole(ctx context.Context, roleID uuid.UUID) error
	GrantPermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) (models.Role, error)
	RevokePermission(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) (models.Role, error)
}

type RoleHandler struct {
	roleService roleService
	mapper      *render.Mapper
}

func NewRole(rs roleService, mapper *render.Mapper) *RoleHandler {
	return &RoleHandler{roleService: rs, mapper: mapper}
}

func (h *RoleHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, wrap(handler))
	}

	handle("POST /roles", h.create)
	handle("GET /roles", h.list)
	handle("GET /roles/{id}", h.get)
	handle("PATCH /roles/{id}", h.update)
	handle("DELETE /roles/{id}", h.delete)
	handle("POST /roles/{id}/permissions/{permissionID}", h.grantPermission)
	handle("DELETE /roles/{id}/permissions/{permissionID}", h.revokePermission)

	mux.HandleFunc("/roles", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/roles/{id}", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/roles/{id}/permissions/{permissionID}", h.mapper.MethodNotAllowed)
}

func (h *RoleHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateRoleRequest struct {
		Name        string `json:"name" validate:"required,max=100"`
		DisplayName string `json:"displayName" validate:"required,max=255"`
		Description string `json:"description"`
	}

	data, err := render.BindAndValidate[CreateRoleRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	created, err := h.roleService.CreateRole(r.Context(), repository.CreateRoleParams{
		Name:        data.Name,
		DisplayName: data.DisplayName,
		Description: data.Description,
		Removable:   true,
	})
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSONWithStatus(w, toRoleResponse(created), http.StatusCreated)
}

func (h *RoleHandler) list(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromRequest(r)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	page, err := h.roleService.ListRoles(r.Context(), params)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toPaginationResponse(page, toRoleResponse))
}

func (h *RoleHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	found, err := h.roleService.GetRole(r.Context(), id)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toRoleResponse(found))
}

func (h *RoleHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateRoleRequest struct {
		DisplayName *string `json:"displayName" validate:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	data, err := render.BindAndValidate[UpdateRoleRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	updated, err := h.roleService.UpdateRole(r.Context(), id, repository.RoleUpdate{
		DisplayName: data.DisplayName,
		Description: data.Description,
	})
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toRoleResponse(updated))
}

func (h *RoleHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	if err := h.roleService.DeleteRole(r.Context(), id); err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) grantPermission(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.roleService.GrantPermission)
}

func (h *RoleHandler) revokePermission(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.roleService.RevokePermission)
}

func (h *RoleHandler) changePermission(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, roleID uuid.UUID, permissionID uuid.UUID) (models.Role, error),
) {
	roleID, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}
	permissionID, err := pathUUID(r, "permissionID")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	changed, err := change(r.Context(), roleID, permissionID)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toRoleResponse(changed))
}
