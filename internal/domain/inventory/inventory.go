package inventory

import (
	"time"

	"github.com/google/uuid"
)

// UserInventory tracks which ingredients a user has in stock, one row per
// (user, ingredient) pair.
type UserInventory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:udx_user_ingredient,priority:1" json:"user_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:udx_user_ingredient,priority:2;index" json:"ingredient_id"`
	InStock      bool      `gorm:"column:in_stock;not null;default:false" json:"in_stock"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserInventory) TableName() string { return "user_inventory" }
