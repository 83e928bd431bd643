package postgres

import (
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Role() repository.RoleRepo {
	return &RoleRepo{DB: s.db}
}

func (s *Storage) Permission() repository.PermissionRepo {
	return &PermissionRepo{DB: s.db}
}
