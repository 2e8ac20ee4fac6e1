package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient is a concrete product, e.g. "Tanqueray London Dry Gin".
// Direct category assignments live in IngredientCategory; the effective
// category set used for matching is the closure expansion of those.
type Ingredient struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Slug                string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description         string    `gorm:"column:description;type:text" json:"description,omitempty"`
	NeedsCategorization bool      `gorm:"column:needs_categorization;not null;default:false" json:"needs_categorization"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Ingredient) TableName() string { return "ingredient" }

// IngredientCategory is the direct ingredient-to-category assignment.
type IngredientCategory struct {
	IngredientID uuid.UUID `gorm:"type:uuid;primaryKey" json:"ingredient_id"`
	CategoryID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"category_id"`
}

func (IngredientCategory) TableName() string { return "ingredient_category" }

const (
	SuggestionStatusPending  = "pending"
	SuggestionStatusApproved = "approved"
	SuggestionStatusRejected = "rejected"
)

// CategorySuggestion is an LLM-proposed (ingredient, category) assignment
// held for admin review. At most one pending suggestion may exist per pair;
// approval and rejection are terminal.
type CategorySuggestion struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:udx_suggestion_pending,priority:1,where:status = 'pending'" json:"ingredient_id"`
	CategoryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:udx_suggestion_pending,priority:2,where:status = 'pending'" json:"category_id"`

	Status     string  `gorm:"column:status;not null;default:'pending';index" json:"status"`
	Confidence float64 `gorm:"column:confidence;not null" json:"confidence"`
	Reasoning  string  `gorm:"column:reasoning;type:text" json:"reasoning,omitempty"`

	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedByID *uuid.UUID `gorm:"type:uuid;column:reviewed_by_id" json:"reviewed_by_id,omitempty"`
}

func (CategorySuggestion) TableName() string { return "category_suggestion" }
