package mysql

import (
	"context"

	modifierDomain "srp-backend/internal/domain/modifier"

	"gorm.io/gorm"
)

type ModifierRepository struct{ db *gorm.DB }

func NewModifierRepository(db *gorm.DB) *ModifierRepository { return &ModifierRepository{db: db} }

func (r *ModifierRepository) Create(ctx context.Context, m *modifierDomain.Modifier) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ModifierRepository) Save(ctx context.Context, m *modifierDomain.Modifier) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ModifierRepository) GetByID(ctx context.Context, id string) (*modifierDomain.Modifier, error) {
	var out modifierDomain.Modifier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "modifier %s", id)
	}
	return &out, nil
}

func (r *ModifierRepository) ListByRequest(ctx context.Context, requestID uint64) ([]modifierDomain.Modifier, error) {
	var out []modifierDomain.Modifier
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
