package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/user"
)

type userService interface {
	CreateUser(ctx context.Context, arg user.CreateUserParams) (models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context, arg repository.ListParams) (repository.Page[models.User], error)
	UpdateUser(ctx context.Context, userID uuid.UUID, upd repository.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	AssignRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (models.User, error)
	RemoveRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (models.User, error)
}

type UserHandler struct {
	userService userService
	mapper      *render.Mapper
}

func NewUser(us userService, mapper *render.Mapper) *UserHandler {
	return &UserHandler{userService: us, mapper: mapper}
}

func (h *UserHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, wrap(handler))
	}

	handle("POST /users", h.create)
	handle("GET /users", h.list)
	handle("GET /users/{id}", h.get)
	handle("PATCH /users/{id}", h.update)
	handle("DELETE /users/{id}", h.delete)
	handle("POST /users/{id}/roles/{roleID}", h.assignRole)
	handle("DELETE /users/{id}/roles/{roleID}", h.removeRole)

	mux.HandleFunc("/users", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/users/{id}", h.mapper.MethodNotAllowed)
	mux.HandleFunc("/users/{id}/roles/{roleID}", h.mapper.MethodNotAllowed)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateUserRequest struct {
		FirstName string `json:"firstName" validate:"required,max=100"`
		LastName  string `json:"lastName" validate:"max=100"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	data, err := render.BindAndValidate[CreateUserRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	created, err := h.userService.CreateUser(r.Context(), user.CreateUserParams{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
	})
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSONWithStatus(w, toUserResponse(created), http.StatusCreated)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromRequest(r)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	page, err := h.userService.ListUsers(r.Context(), params)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toPaginationResponse(page, toUserResponse))
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	found, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toUserResponse(found))
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateUserRequest struct {
		FirstName *string `json:"firstName" validate:"omitempty,max=100"`
		LastName  *string `json:"lastName" validate:"omitempty,max=100"`
		Email     *string `json:"email" validate:"omitempty,email"`
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	data, err := render.BindAndValidate[UpdateUserRequest](h.mapper, w, r)
	if err != nil {
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), id, repository.UserUpdate{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
	})
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toUserResponse(updated))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) assignRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.userService.AssignRole)
}

func (h *UserHandler) removeRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.userService.RemoveRole)
}

func (h *UserHandler) changeRole(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (models.User, error),
) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}
	roleID, err := pathUUID(r, "roleID")
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	changed, err := change(r.Context(), userID, roleID)
	if err != nil {
		h.mapper.Error(w, r, err)
		return
	}

	render.JSON(w, toUserResponse(changed))
}
