package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// storeError maps a repository error onto the domain taxonomy.
func storeError(err error, notFound, conflict domain.Code) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict(conflict)
	default:
		return domain.Internal(err)
	}
}
