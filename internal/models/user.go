package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FirstName      string
	LastName       string
	Email          string
	HashedPassword string

	// Password reset fields, empty until a reset is requested
	ResetPasswordToken       string
	ResetPasswordTokenExpiry *time.Time

	// Roles assigned to the user
	// Loaded eagerly together with their permissions
	Roles []Role
}

// RoleNames returns the names of the user roles: the authority set the
// authorization layer matches against role requirements.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// PermissionNames returns the deduplicated names of permissions granted
// through any of the user roles.
func (u User) PermissionNames() []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return names
}
