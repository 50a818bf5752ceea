package mysql

import (
	"context"

	"srp-backend/internal/domain/authz"
	"srp-backend/internal/domain/modifier"
	"srp-backend/internal/domain/request"

	"gorm.io/gorm"
)

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&authz.User{},
		&authz.Group{},
		&authz.GroupMember{},
		&authz.Division{},
		&authz.Permission{},
		&request.Killmail{},
		&request.Request{},
		&request.Action{},
		&modifier.Modifier{},
		&NameRecord{},
	}
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}
