package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the operator privilege tier. The tier decides credit semantics:
// superadmins draw from an unlimited pool, everyone else from a finite balance.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleReseller   Role = "reseller"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleReseller:
		return true
	}
	return false
}

// UnlimitedCredits reports whether ledger debits are a no-op for this role.
// Superadmin balances are display-only and never decremented.
func (r Role) UnlimitedCredits() bool {
	return r == RoleSuperadmin
}

// CanCreate reports whether an operator of this role may create an
// operator of the target role. Superadmins create admins and resellers,
// admins create resellers only.
func (r Role) CanCreate(target Role) bool {
	switch r {
	case RoleSuperadmin:
		return target == RoleAdmin || target == RoleReseller
	case RoleAdmin:
		return target == RoleReseller
	}
	return false
}

// OperatorAccount is a dashboard identity: the person who owns applications
// and mints license keys, never the end user who redeems them.
type OperatorAccount struct {
	AccountID        uuid.UUID
	Username         string
	PasswordHash     string
	Email            string
	Role             Role
	Credits          int64
	AssignedPackages []uuid.UUID
	CreatedBy        *uuid.UUID
	IsActive         bool
	CreatedAt        time.Time
	LastLoginIP      string
	LastLoginAt      *time.Time
}

// CanUsePackage enforces the reseller entitlement boundary: resellers may
// only provision keys against packages explicitly assigned to them, while
// admins and superadmins are unrestricted.
func (a OperatorAccount) CanUsePackage(packageID uuid.UUID) bool {
	if a.Role != RoleReseller {
		return true
	}
	for _, id := range a.AssignedPackages {
		if id == packageID {
			return true
		}
	}
	return false
}
