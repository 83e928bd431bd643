package auth

import (
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/models"
)

// Principal wraps an authenticated user for authorization checks.
// It exposes two authority sets: the role names and the permission names
// flattened through the user roles. Which one a policy matches against is the
// policy's choice.
type Principal struct {
	User models.User

	roles       map[string]struct{}
	permissions map[string]struct{}
}

func NewPrincipal(user models.User) Principal {
	roles := make(map[string]struct{}, len(user.Roles))
	for _, name := range user.RoleNames() {
		roles[name] = struct{}{}
	}

	permNames := user.PermissionNames()
	permissions := make(map[string]struct{}, len(permNames))
	for _, name := range permNames {
		permissions[name] = struct{}{}
	}

	return Principal{User: user, roles: roles, permissions: permissions}
}

// Username returns the name the user authenticates with: the email.
func (p Principal) Username() string {
	return p.User.Email
}

// PasswordHash returns the stored hash. It is only ever fed to the
// constant-time bcrypt comparison, never compared directly.
func (p Principal) PasswordHash() string {
	return p.User.HashedPassword
}

func (p Principal) HasRole(name string) bool {
	_, ok := p.roles[name]
	return ok
}

func (p Principal) HasPermission(name string) bool {
	_, ok := p.permissions[name]
	return ok
}
