package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("owner")
	require.True(t, ok)
	assert.Equal(t, RoleOwner, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestViewAndUpdatePermissions(t *testing.T) {
	a := Access{CustomerID: 10, StoreOwnerID: 20}

	assert.True(t, CanView(Caller{ID: 10, Role: RoleCustomer}, a))
	assert.True(t, CanView(Caller{ID: 20, Role: RoleOwner}, a))
	assert.True(t, CanView(Caller{ID: 999, Role: RoleAdmin}, a))

	assert.False(t, CanView(Caller{ID: 11, Role: RoleCustomer}, a))
	assert.False(t, CanView(Caller{ID: 21, Role: RoleOwner}, a))
	// a customer id that happens to match the owner id grants nothing
	assert.False(t, CanView(Caller{ID: 20, Role: RoleCustomer}, a))

	// detail edits share the view rule set
	assert.True(t, CanUpdate(Caller{ID: 10, Role: RoleCustomer}, a))
	assert.False(t, CanUpdate(Caller{ID: 11, Role: RoleCustomer}, a))
}

// Customers may cancel their own reservation but never confirm,
// complete or no-show it, even when the transition itself is legal.
func TestCustomerStatusAuthorityIsCancelOnly(t *testing.T) {
	a := Access{CustomerID: 10, StoreOwnerID: 20, Status: StatusPending}
	customer := Caller{ID: 10, Role: RoleCustomer}

	assert.True(t, CanUpdateStatus(customer, a, StatusCancelled))
	assert.False(t, CanUpdateStatus(customer, a, StatusConfirmed))
	assert.False(t, CanUpdateStatus(customer, a, StatusCompleted))
	assert.False(t, CanUpdateStatus(customer, a, StatusNoShow))

	owner := Caller{ID: 20, Role: RoleOwner}
	assert.True(t, CanUpdateStatus(owner, a, StatusConfirmed))
	assert.True(t, CanUpdateStatus(owner, a, StatusNoShow))
	assert.False(t, CanUpdateStatus(Caller{ID: 21, Role: RoleOwner}, a, StatusConfirmed))

	admin := Caller{ID: 1, Role: RoleAdmin}
	assert.True(t, CanUpdateStatus(admin, a, StatusCompleted))
}

func TestCanCancel(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)
	customer := Caller{ID: 10, Role: RoleCustomer}

	assert.True(t, CanCancel(customer, Access{CustomerID: 10, Status: StatusPending, StartsAt: future}, now))
	assert.True(t, CanCancel(customer, Access{CustomerID: 10, Status: StatusConfirmed, StartsAt: future}, now))

	// elapsed slot, terminal status or foreign reservation all deny
	assert.False(t, CanCancel(customer, Access{CustomerID: 10, Status: StatusConfirmed, StartsAt: past}, now))
	assert.False(t, CanCancel(customer, Access{CustomerID: 10, Status: StatusConfirmed, StartsAt: now}, now))
	assert.False(t, CanCancel(customer, Access{CustomerID: 10, Status: StatusCancelled, StartsAt: future}, now))
	assert.False(t, CanCancel(customer, Access{CustomerID: 11, Status: StatusPending, StartsAt: future}, now))
}

func TestCanReview(t *testing.T) {
	customer := Caller{ID: 10, Role: RoleCustomer}

	assert.True(t, CanReview(customer, Access{CustomerID: 10, Status: StatusCompleted}))
	assert.False(t, CanReview(customer, Access{CustomerID: 10, Status: StatusCompleted, HasReview: true}))
	assert.False(t, CanReview(customer, Access{CustomerID: 10, Status: StatusConfirmed}))
	assert.False(t, CanReview(Caller{ID: 20, Role: RoleOwner}, Access{CustomerID: 10, StoreOwnerID: 20, Status: StatusCompleted}))
	assert.False(t, CanReview(Caller{ID: 1, Role: RoleAdmin}, Access{CustomerID: 10, Status: StatusCompleted}))
}
