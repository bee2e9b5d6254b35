package identity

import (
	"github.com/google/uuid"
)

// Actor is the authenticated principal behind a request, resolved from JWT
// claims by the HTTP middleware. Route-level permission checks run in
// middleware; application services use the actor for the finer-grained
// ownership and role decisions that depend on the entity being touched.
type Actor struct {
	UserID      uuid.UUID
	Roles       []string
	Permissions []string
}

// NewActor creates an actor from resolved claim values
func NewActor(userID uuid.UUID, roles, permissions []string) Actor {
	return Actor{UserID: userID, Roles: roles, Permissions: permissions}
}

// HasRole reports whether the actor carries the given role code
func (a Actor) HasRole(code string) bool {
	for _, r := range a.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// HasPermission reports whether the actor carries the resource:action
// permission code
func (a Actor) HasPermission(resource, action string) bool {
	code := resource + ":" + action
	for _, p := range a.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor holds the administrator role
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleCodeAdmin)
}

// IsHR reports whether the actor holds the HR role
func (a Actor) IsHR() bool {
	return a.HasRole(RoleCodeHR)
}

// CanManagePayroll reports whether the actor may define salary structures and
// generate slips for other users
func (a Actor) CanManagePayroll() bool {
	return a.IsAdmin() || a.IsHR()
}

// CanManageWorkforce reports whether the actor may record attendance and
// manage tasks for other users
func (a Actor) CanManageWorkforce() bool {
	return a.IsAdmin() || a.IsHR()
}

// Owns reports whether the actor is the given user
func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID == userID
}
