// Package repository is the entity store. Every method is scoped by owner:
// single records are addressed by domain.Key and collections by domain.Scope,
// so no query can reach another user's rows.
package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// scoped restricts a statement to one record of one owner.
func scoped(db *gorm.DB, key domain.Key) *gorm.DB {
	return db.Where("id = ? AND owner_id = ?", key.ID, key.OwnerID)
}

// inScope restricts a statement to the siblings of a scope.
func inScope(db *gorm.DB, scope domain.Scope) *gorm.DB {
	db = db.Where("owner_id = ?", scope.OwnerID)
	if scope.ListID != uuid.Nil {
		db = db.Where("list_id = ?", scope.ListID)
	}
	return db
}
