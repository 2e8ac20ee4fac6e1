package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Category is a named node in the ingredient category forest, e.g.
// SPIRITS > GIN > LONDON DRY. A category with no parent is top-level.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

// CategoryClosure stores every (category, ancestor, depth) triple of the
// hierarchy, including the reflexive self row at depth 0. It is derived from
// the parent edges and must be maintained exhaustively on every structural
// mutation; all ancestor/descendant reads go through it without recursion.
type CategoryClosure struct {
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey" json:"category_id"`
	AncestorID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"ancestor_id"`
	Depth      int       `gorm:"column:depth;not null" json:"depth"`
}

func (CategoryClosure) TableName() string { return "category_closure" }
