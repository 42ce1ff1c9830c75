// Package authz implements the authorization predicates evaluated per
// endpoint. Predicates are pure functions over an explicit actor and an
// optional resource; there is no ambient request state and no role
// hierarchy, each predicate is independently defined.
package authz

import "github.com/linguacenter/apiserver/types"

// Action distinguishes read-only from mutating access.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

// Resource is anything with an owning user account.
type Resource interface {
	OwnerID() int
}

// StudentScoped is implemented by resources that expose a student relation.
// The second return value is false when no student is attached.
type StudentScoped interface {
	StudentOwnerID() (int, bool)
}

// IsRole reports whether the actor is authenticated with the given role.
func IsRole(actor *types.User, role types.Role) bool {
	return actor != nil && actor.Role == role
}

// IsAnyRole reports whether the actor is authenticated with one of the
// given roles.
func IsAnyRole(actor *types.User, roles ...types.Role) bool {
	if actor == nil {
		return false
	}
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}

// IsOwnerOrReadOnly allows any read, and writes only by the resource's
// owning account.
func IsOwnerOrReadOnly(actor *types.User, resource Resource, action Action) bool {
	if action == ActionRead {
		return true
	}
	return actor != nil && resource != nil && resource.OwnerID() == actor.ID
}

// IsOwnerOrAdmin allows admins and the resource's owning account. When the
// resource carries a student relation, that student's account is allowed too.
func IsOwnerOrAdmin(actor *types.User, resource Resource) bool {
	if actor == nil {
		return false
	}
	if actor.Role == types.RoleAdmin {
		return true
	}
	if resource == nil {
		return false
	}
	if resource.OwnerID() == actor.ID {
		return true
	}
	return IsStudentOwner(actor, resource)
}

// IsStudentOwner allows only the account behind the resource's student
// relation. Resources without a student relation always deny.
func IsStudentOwner(actor *types.User, resource any) bool {
	if actor == nil {
		return false
	}
	scoped, ok := resource.(StudentScoped)
	if !ok {
		return false
	}
	ownerID, ok := scoped.StudentOwnerID()
	return ok && ownerID == actor.ID
}
