package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NameRecord maps an (kind, id) pair such as ("system", 30000142) to a display name.
type NameRecord struct {
	Kind string `gorm:"primaryKey;size:16;column:kind"`
	ID   uint64 `gorm:"primaryKey;autoIncrement:false;column:id"`
	Name string `gorm:"size:150;not null;column:name"`
}

func (NameRecord) TableName() string { return "names" }

type NameRepository struct{ db *gorm.DB }

func NewNameRepository(db *gorm.DB) *NameRepository { return &NameRepository{db: db} }

func (r *NameRepository) Lookup(ctx context.Context, kind string, id uint64) (string, error) {
	var out NameRecord
	if err := r.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).First(&out).Error; err != nil {
		return "", notFound(err, "%s %d", kind, id)
	}
	return out.Name, nil
}

// Put stores or renames an entry.
func (r *NameRepository) Put(ctx context.Context, kind string, id uint64, name string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&NameRecord{Kind: kind, ID: id, Name: name}).Error
}
