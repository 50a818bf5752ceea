package authz

import (
	"context"
	"fmt"
)

// Principal is an acting user with its group memberships and grants resolved.
// A nil *Principal is the anonymous actor.
type Principal struct {
	User   *User
	Groups []Group
	Grants GrantSet
}

// ResolvePrincipal loads the group memberships and grants of u.
func ResolvePrincipal(ctx context.Context, src PermissionSource, u *User) (*Principal, error) {
	if u == nil {
		return nil, nil
	}
	groups, err := src.GetGroupsForUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("groups for user %d: %w", u.ID, err)
	}
	grants, err := u.Permissions(ctx, src)
	if err != nil {
		return nil, err
	}
	return &Principal{User: u, Groups: groups, Grants: grants}, nil
}

func (p *Principal) Anonymous() bool { return p == nil || p.User == nil }

// UserID is 0 for the anonymous actor.
func (p *Principal) UserID() uint64 {
	if p.Anonymous() {
		return 0
	}
	return p.User.ID
}

func (p *Principal) IsAdmin() bool { return !p.Anonymous() && p.User.Admin }

// Target resolves to the division a permission check applies to.
// *Division, DivisionRef and request aggregates implement it.
type Target interface {
	TargetDivisionID() uint64
}

type DivisionRef uint64

func (d DivisionRef) TargetDivisionID() uint64 { return uint64(d) }

// HasPermission reports whether actor holds any of types in the target's division.
// A nil target matches a grant in any division. System administrators pass every check.
// The anonymous actor never passes.
func HasPermission(actor *Principal, target Target, types ...PermissionType) bool {
	if actor.Anonymous() {
		return false
	}
	if actor.User.Admin {
		return true
	}
	if target == nil {
		for g := range actor.Grants {
			for _, t := range types {
				if g.Type == t {
					return true
				}
			}
		}
		return false
	}
	division := target.TargetDivisionID()
	for _, t := range types {
		if actor.Grants.Has(Grant{DivisionID: division, Type: t}) {
			return true
		}
	}
	return false
}

// HasElevated is HasPermission over Elevated.
func HasElevated(actor *Principal, target Target) bool {
	return HasPermission(actor, target, Elevated...)
}
