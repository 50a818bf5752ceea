package mysql

import (
	"context"

	"srp-backend/internal/domain/authz"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthzRepository struct{ db *gorm.DB }

func NewAuthzRepository(db *gorm.DB) *AuthzRepository { return &AuthzRepository{db: db} }

func (r *AuthzRepository) GetPermissions(ctx context.Context, q authz.PermissionQuery) ([]authz.Permission, error) {
	tx := r.db.WithContext(ctx).Model(&authz.Permission{})
	if q.EntityKind != "" {
		tx = tx.Where("entity_kind = ?", q.EntityKind)
	}
	if q.EntityID != nil {
		tx = tx.Where("entity_id = ?", *q.EntityID)
	}
	if q.DivisionID != nil {
		tx = tx.Where("division_id = ?", *q.DivisionID)
	}
	if len(q.Types) > 0 {
		tx = tx.Where("type IN ?", q.Types)
	}
	var out []authz.Permission
	err := tx.Order("division_id ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *AuthzRepository) GetGroupsForUser(ctx context.Context, userID uint64) ([]authz.Group, error) {
	var out []authz.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = entity_groups.id").
		Where("group_members.user_id = ?", userID).
		Order("entity_groups.id ASC").
		Find(&out).Error
	return out, err
}

func (r *AuthzRepository) GetUser(ctx context.Context, id uint64) (*authz.User, error) {
	var out authz.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &out, nil
}

func (r *AuthzRepository) CreateUser(ctx context.Context, u *authz.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *AuthzRepository) GetGroup(ctx context.Context, id uint64) (*authz.Group, error) {
	var out authz.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "group %d", id)
	}
	return &out, nil
}

func (r *AuthzRepository) CreateGroup(ctx context.Context, g *authz.Group) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *AuthzRepository) AddMember(ctx context.Context, groupID, userID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&authz.GroupMember{GroupID: groupID, UserID: userID}).Error
}

func (r *AuthzRepository) GetDivision(ctx context.Context, id uint64) (*authz.Division, error) {
	var out authz.Division
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "division %d", id)
	}
	return &out, nil
}

func (r *AuthzRepository) ListDivisions(ctx context.Context, ids []uint64) ([]authz.Division, error) {
	tx := r.db.WithContext(ctx)
	if ids != nil {
		if len(ids) == 0 {
			return []authz.Division{}, nil
		}
		tx = tx.Where("id IN ?", ids)
	}
	var out []authz.Division
	err := tx.Order("name ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *AuthzRepository) CreateDivision(ctx context.Context, d *authz.Division) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// AddPermission loads the existing grant into p, or inserts p when there is none.
func (r *AuthzRepository) AddPermission(ctx context.Context, p *authz.Permission) error {
	return r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ? AND division_id = ? AND type = ?",
			p.EntityKind, p.EntityID, p.DivisionID, p.Type).
		FirstOrCreate(p).Error
}

func (r *AuthzRepository) RemovePermission(ctx context.Context, p authz.Permission) error {
	return r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ? AND division_id = ? AND type = ?",
			p.EntityKind, p.EntityID, p.DivisionID, p.Type).
		Delete(&authz.Permission{}).Error
}
