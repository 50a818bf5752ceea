package authz

import "context"

type Repository interface {
	PermissionSource

	GetUser(ctx context.Context, id uint64) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	GetGroup(ctx context.Context, id uint64) (*Group, error)
	CreateGroup(ctx context.Context, g *Group) error
	AddMember(ctx context.Context, groupID, userID uint64) error

	GetDivision(ctx context.Context, id uint64) (*Division, error)
	// ListDivisions returns the given divisions, or all of them when ids is nil.
	ListDivisions(ctx context.Context, ids []uint64) ([]Division, error)
	CreateDivision(ctx context.Context, d *Division) error

	// AddPermission is a no-op when the grant already exists; p is filled from the stored row.
	AddPermission(ctx context.Context, p *Permission) error
	RemovePermission(ctx context.Context, p Permission) error
}
