package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
)

type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type UserService struct {
	hasher   auth.PasswordHasher
	userRepo repository.UserRepo
}

func NewService(hasher auth.PasswordHasher, userRepo repository.UserRepo) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
	}
}

func (s *UserService) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err = s.userRepo.Create(ctx, repository.CreateUserParams{
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		Email:        normalizeEmail(arg.Email),
		PasswordHash: hash,
	})
	if err != nil {
		return user, err
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.userRepo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) ListUsers(ctx context.Context, arg repository.ListParams) (repository.Page[models.User], error) {
	return s.userRepo.List(ctx, arg)
}

func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, upd repository.UserUpdate) (models.User, error) {
	if upd.Email != nil {
		normalized := normalizeEmail(*upd.Email)
		upd.Email = &normalized
	}
	return s.userRepo.Update(ctx, userID, upd)
}

func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.Delete(ctx, userID)
}

// AssignRole adds the user-role edge and returns the user with roles reloaded.
func (s *UserService) AssignRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (models.User, error) {
	if err := s.userRepo.AssignRole(ctx, userID, roleID); err != nil {
		return models.User{}, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) RemoveRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID) (models.User, error) {
	if err := s.userRepo.RemoveRole(ctx, userID, roleID); err != nil {
		return models.User{}, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
