package authzmock

import (
	"context"

	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"
)

var _ authz.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies authz.Repository.
// Unset lookups report NotFound, unset lists are empty and unset writes succeed.
type Repo struct {
	GetPermissionsFn   func(ctx context.Context, q authz.PermissionQuery) ([]authz.Permission, error)
	GetGroupsForUserFn func(ctx context.Context, userID uint64) ([]authz.Group, error)
	GetUserFn          func(ctx context.Context, id uint64) (*authz.User, error)
	CreateUserFn       func(ctx context.Context, u *authz.User) error
	GetGroupFn         func(ctx context.Context, id uint64) (*authz.Group, error)
	CreateGroupFn      func(ctx context.Context, g *authz.Group) error
	AddMemberFn        func(ctx context.Context, groupID, userID uint64) error
	GetDivisionFn      func(ctx context.Context, id uint64) (*authz.Division, error)
	ListDivisionsFn    func(ctx context.Context, ids []uint64) ([]authz.Division, error)
	CreateDivisionFn   func(ctx context.Context, d *authz.Division) error
	AddPermissionFn    func(ctx context.Context, p *authz.Permission) error
	RemovePermissionFn func(ctx context.Context, p authz.Permission) error
}

func (m *Repo) GetPermissions(ctx context.Context, q authz.PermissionQuery) ([]authz.Permission, error) {
	if m.GetPermissionsFn != nil {
		return m.GetPermissionsFn(ctx, q)
	}
	return nil, nil
}

func (m *Repo) GetGroupsForUser(ctx context.Context, userID uint64) ([]authz.Group, error) {
	if m.GetGroupsForUserFn != nil {
		return m.GetGroupsForUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *Repo) GetUser(ctx context.Context, id uint64) (*authz.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("user %d not found", id)
}

func (m *Repo) CreateUser(ctx context.Context, u *authz.User) error {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetGroup(ctx context.Context, id uint64) (*authz.Group, error) {
	if m.GetGroupFn != nil {
		return m.GetGroupFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("group %d not found", id)
}

func (m *Repo) CreateGroup(ctx context.Context, g *authz.Group) error {
	if m.CreateGroupFn != nil {
		return m.CreateGroupFn(ctx, g)
	}
	return nil
}

func (m *Repo) AddMember(ctx context.Context, groupID, userID uint64) error {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, groupID, userID)
	}
	return nil
}

func (m *Repo) GetDivision(ctx context.Context, id uint64) (*authz.Division, error) {
	if m.GetDivisionFn != nil {
		return m.GetDivisionFn(ctx, id)
	}
	return nil, apperr.ErrNotFound("division %d not found", id)
}

func (m *Repo) ListDivisions(ctx context.Context, ids []uint64) ([]authz.Division, error) {
	if m.ListDivisionsFn != nil {
		return m.ListDivisionsFn(ctx, ids)
	}
	return nil, nil
}

func (m *Repo) CreateDivision(ctx context.Context, d *authz.Division) error {
	if m.CreateDivisionFn != nil {
		return m.CreateDivisionFn(ctx, d)
	}
	return nil
}

func (m *Repo) AddPermission(ctx context.Context, p *authz.Permission) error {
	if m.AddPermissionFn != nil {
		return m.AddPermissionFn(ctx, p)
	}
	return nil
}

func (m *Repo) RemovePermission(ctx context.Context, p authz.Permission) error {
	if m.RemovePermissionFn != nil {
		return m.RemovePermissionFn(ctx, p)
	}
	return nil
}
