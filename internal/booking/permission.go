package booking

import (
	"strings"
	"time"
)

// Role is the closed set of caller roles attached to authenticated
// requests.  Free-form role strings from tokens are normalized
// through ParseRole at the middleware boundary; anything else is
// rejected there with a 403 rather than leaking into handlers.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalizes a role string into a Role.  The second return
// value reports whether the input named a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleOwner:
		return RoleOwner, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Caller is the authenticated identity a request carries.
type Caller struct {
	ID   uint64
	Role Role
}

// Access bundles the ownership and state facts about a reservation
// that permission decisions need.  HasReview is loaded lazily by the
// read path only; write paths leave it false.
type Access struct {
	CustomerID   uint64
	StoreOwnerID uint64
	Status       Status
	StartsAt     time.Time
	HasReview    bool
}

// owns reports ownership of either side of the reservation for the
// caller's role: customers own their reservation, owners own their
// store, admins own everything.
func owns(c Caller, a Access) bool {
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return c.ID == a.CustomerID
	case RoleOwner:
		return c.ID == a.StoreOwnerID
	}
	return false
}

// CanView reports whether the caller may read the reservation.
func CanView(c Caller, a Access) bool { return owns(c, a) }

// CanUpdate reports whether the caller may edit reservation details
// (date, time, party size, requests).  The rule set is identical to
// CanView; state checks happen separately in the orchestrator.
func CanUpdate(c Caller, a Access) bool { return owns(c, a) }

// CanUpdateStatus reports whether the caller may move the
// reservation into the requested status.  Owners and admins may
// request any transition; customers may only cancel their own
// reservation, never confirm, complete or no-show it.
func CanUpdateStatus(c Caller, a Access, requested Status) bool {
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleOwner:
		return c.ID == a.StoreOwnerID
	case RoleCustomer:
		return c.ID == a.CustomerID && requested == StatusCancelled
	}
	return false
}

// CanCancel is the derived permission surfaced to clients: the
// reservation is still active, its slot lies strictly in the future
// and the caller holds cancellation authority.
func CanCancel(c Caller, a Access, now time.Time) bool {
	if !a.Status.Active() || !a.StartsAt.After(now) {
		return false
	}
	return CanUpdateStatus(c, a, StatusCancelled)
}

// CanReview is the derived permission for leaving a review: only the
// owning customer, only after completion, and only once.
func CanReview(c Caller, a Access) bool {
	return c.Role == RoleCustomer && c.ID == a.CustomerID &&
		a.Status == StatusCompleted && !a.HasReview
}
