package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerScope returns a GORM scope that filters by the owning account.
// A nil owner matches nothing so a missing identity can never read another account's rows.
func OwnerScope(ownerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ownerID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", ownerID)
	}
}
