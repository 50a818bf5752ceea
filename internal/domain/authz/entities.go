package authz

import (
	"context"
	"fmt"
	"slices"
	"time"
)

type PermissionType string

const (
	PermissionSubmit PermissionType = "submit"
	PermissionReview PermissionType = "review"
	PermissionPay    PermissionType = "pay"
	PermissionAudit  PermissionType = "audit"
	PermissionAdmin  PermissionType = "admin"
)

// AllPermissionTypes in display order.
var AllPermissionTypes = []PermissionType{
	PermissionSubmit, PermissionReview, PermissionPay, PermissionAudit, PermissionAdmin,
}

// Elevated are the permission types beyond plain submission.
var Elevated = []PermissionType{PermissionReview, PermissionPay, PermissionAudit, PermissionAdmin}

func (p PermissionType) Valid() bool { return slices.Contains(AllPermissionTypes, p) }

func ParsePermissionType(s string) (PermissionType, error) {
	p := PermissionType(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission type %q", s)
	}
	return p, nil
}

type EntityKind string

const (
	EntityUser  EntityKind = "user"
	EntityGroup EntityKind = "group"
)

// Entity is either a *User or a *Group.
type Entity interface {
	EntityKind() EntityKind
	EntityID() uint64
	EntityName() string
	// Permissions returns every grant the entity holds, inherited ones included.
	Permissions(ctx context.Context, src PermissionSource) (GrantSet, error)
	entity()
}

type User struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:150;not null;column:name" json:"name"`
	Admin     bool      `gorm:"not null;default:false;column:admin" json:"admin"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) EntityKind() EntityKind { return EntityUser }
func (u *User) EntityID() uint64       { return u.ID }
func (u *User) EntityName() string     { return u.Name }
func (u *User) entity()                {}

// Permissions unions the user's direct grants with those of every group it belongs to.
func (u *User) Permissions(ctx context.Context, src PermissionSource) (GrantSet, error) {
	grants, err := directGrants(ctx, src, EntityUser, u.ID)
	if err != nil {
		return nil, err
	}
	groups, err := src.GetGroupsForUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("groups for user %d: %w", u.ID, err)
	}
	for i := range groups {
		gg, err := groups[i].Permissions(ctx, src)
		if err != nil {
			return nil, err
		}
		grants.Union(gg)
	}
	return grants, nil
}

type Group struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:150;not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Group) TableName() string { return "entity_groups" }

func (g *Group) EntityKind() EntityKind { return EntityGroup }
func (g *Group) EntityID() uint64       { return g.ID }
func (g *Group) EntityName() string     { return g.Name }
func (g *Group) entity()                {}

func (g *Group) Permissions(ctx context.Context, src PermissionSource) (GrantSet, error) {
	return directGrants(ctx, src, EntityGroup, g.ID)
}

// GroupMember is the many-to-many link between users and groups.
type GroupMember struct {
	GroupID uint64 `gorm:"primaryKey;column:group_id"`
	UserID  uint64 `gorm:"primaryKey;column:user_id;index"`
}

func (GroupMember) TableName() string { return "group_members" }

type Division struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:128;not null;uniqueIndex;column:name" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Division) TableName() string { return "divisions" }

func (d *Division) TargetDivisionID() uint64 {
	if d == nil {
		return 0
	}
	return d.ID
}

// Permission binds an entity to a division and a capability.
// At most one row exists per (entity, division, type).
type Permission struct {
	ID         uint64         `gorm:"primaryKey;column:id" json:"id"`
	EntityKind EntityKind     `gorm:"size:8;not null;column:entity_kind;uniqueIndex:ux_permissions_grant" json:"entity_kind"`
	EntityID   uint64         `gorm:"not null;column:entity_id;uniqueIndex:ux_permissions_grant" json:"entity_id"`
	DivisionID uint64         `gorm:"not null;column:division_id;uniqueIndex:ux_permissions_grant;index" json:"division_id"`
	Type       PermissionType `gorm:"size:16;not null;column:type;uniqueIndex:ux_permissions_grant" json:"type"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Permission) TableName() string { return "permissions" }

func (p Permission) Grant() Grant { return Grant{DivisionID: p.DivisionID, Type: p.Type} }

// PermissionQuery filters permission rows. Zero fields do not filter.
type PermissionQuery struct {
	EntityKind EntityKind
	EntityID   *uint64
	DivisionID *uint64
	Types      []PermissionType
}

// PermissionSource is the read side of the store the permission model needs.
type PermissionSource interface {
	GetPermissions(ctx context.Context, q PermissionQuery) ([]Permission, error)
	GetGroupsForUser(ctx context.Context, userID uint64) ([]Group, error)
}

func directGrants(ctx context.Context, src PermissionSource, kind EntityKind, id uint64) (GrantSet, error) {
	perms, err := src.GetPermissions(ctx, PermissionQuery{EntityKind: kind, EntityID: &id})
	if err != nil {
		return nil, fmt.Errorf("permissions for %s %d: %w", kind, id, err)
	}
	grants := make(GrantSet, len(perms))
	for _, p := range perms {
		grants.Add(p.Grant())
	}
	return grants, nil
}
