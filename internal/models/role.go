package models

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	DisplayName string
	Description string

	// Built-in roles are created with Removable=false and refuse deletion
	Removable bool

	Permissions []Permission
}

type Permission struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	DisplayName string
	Description string
	Removable   bool
}
