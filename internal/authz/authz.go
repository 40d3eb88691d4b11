// Package authz decides whether a caller may perform an operation on a
// catalog resource. Decisions are pure functions of the principal, the
// resource kind and, for owned resources, the owner id.
package authz

import "github.com/google/uuid"

// Operation is a CRUD action being requested.
type Operation string

const (
	Read   Operation = "read"
	Create Operation = "create"
	Update Operation = "update"
	Delete Operation = "delete"
)

// Resource identifies what kind of entity an operation targets.
type Resource string

const (
	RecipeResource  Resource = "recipe"
	CuisineResource Resource = "cuisine"
)

// RoleAdministrator is the role name granting elevated rights.
const RoleAdministrator = "Administrator"

// Principal is the caller identity as seen by the services.
type Principal struct {
	UserID        uuid.UUID
	Authenticated bool
	Admin         bool
}

// Anonymous is the principal used for requests without credentials.
var Anonymous = Principal{}

// NewPrincipal builds an authenticated principal for userID.
func NewPrincipal(userID uuid.UUID, admin bool) Principal {
	return Principal{UserID: userID, Authenticated: true, Admin: admin}
}

// Policy holds the configurable parts of the authorization rules.
type Policy struct {
	// OwnerMayUpdate lets the owner of a recipe update it without being an
	// administrator.
	OwnerMayUpdate bool
}

// DefaultPolicy only lets administrators update or delete.
var DefaultPolicy = Policy{}

// Authorize applies DefaultPolicy.
func Authorize(p Principal, kind Resource, op Operation, ownerID uuid.UUID) bool {
	return DefaultPolicy.Authorize(p, kind, op, ownerID)
}

// Authorize reports whether p may perform op on a resource of the given kind.
// ownerID is only consulted for recipe updates when OwnerMayUpdate is set.
func (pol Policy) Authorize(p Principal, kind Resource, op Operation, ownerID uuid.UUID) bool {
	if op == Read {
		return true
	}
	if !p.Authenticated {
		return false
	}

	switch op {
	case Create:
		return true
	case Update:
		if p.Admin {
			return true
		}
		return pol.OwnerMayUpdate && kind == RecipeResource && ownerID != uuid.Nil && p.UserID == ownerID
	case Delete:
		return p.Admin
	default:
		return false
	}
}
