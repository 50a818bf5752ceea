package mysql

import (
	"errors"
	"fmt"

	"srp-backend/internal/domain/apperr"

	"gorm.io/gorm"
)

// notFound turns gorm.ErrRecordNotFound into an apperr.NotFoundError described by format.
// Other errors are wrapped with the same description.
func notFound(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound(format+" not found", args...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
