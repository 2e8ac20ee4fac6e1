package recipes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Recipe is a named cocktail with ordered ingredient lines.
type Recipe struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"column:name;not null;index" json:"name"`
	Slug    string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Source  string    `gorm:"column:source" json:"source,omitempty"`
	Page    *int      `gorm:"column:page" json:"page,omitempty"`
	Method  string    `gorm:"column:method;type:text" json:"method,omitempty"`
	Garnish string    `gorm:"column:garnish;type:text" json:"garnish,omitempty"`
	Notes   string    `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Lines []*RecipeIngredient `gorm:"foreignKey:RecipeID" json:"lines,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Recipe) TableName() string { return "recipe" }

// RecipeIngredient is one ordered line of a recipe. Optional lines never
// participate in satisfiability checks.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index" json:"ingredient_id"`

	Amount   *float64 `gorm:"column:amount;type:numeric(6,3)" json:"amount,omitempty"`
	Unit     string   `gorm:"column:unit" json:"unit,omitempty"`
	Position int      `gorm:"column:position;not null;default:0" json:"position"`
	Optional bool     `gorm:"column:optional;not null;default:false" json:"optional"`
	Notes    string   `gorm:"column:notes" json:"notes,omitempty"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredient" }

const (
	ImportStatusPending  = "pending"
	ImportStatusApproved = "approved"
	ImportStatusRejected = "rejected"
)

// RecipeImport holds the structured output of one recipe-image parse until a
// human approves or rejects it.
type RecipeImport struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Status     string         `gorm:"column:status;not null;default:'pending';index" json:"status"`
	SourceName string         `gorm:"column:source_name" json:"source_name,omitempty"`
	OCRText    string         `gorm:"column:ocr_text;type:text" json:"ocr_text,omitempty"`
	ParsedData datatypes.JSON `gorm:"column:parsed_data;type:jsonb" json:"parsed_data,omitempty"`
	RecipeID   *uuid.UUID     `gorm:"type:uuid;column:recipe_id" json:"recipe_id,omitempty"`

	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
}

func (RecipeImport) TableName() string { return "recipe_import" }

const (
	MatchStatusExact = "exact"
	MatchStatusSlug  = "slug"
	MatchStatusFuzzy = "fuzzy"
	MatchStatusNew   = "new"
)

// IngredientMatchLog records, per imported ingredient name, how the catalog
// match was decided and which fuzzy candidates were checked. Kept for human
// review of an import batch.
type IngredientMatchLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeImportID *uuid.UUID     `gorm:"type:uuid;column:recipe_import_id;index" json:"recipe_import_id,omitempty"`
	InputName      string         `gorm:"column:input_name;not null" json:"input_name"`
	Status         string         `gorm:"column:status;not null" json:"status"`
	IngredientID   *uuid.UUID     `gorm:"type:uuid;column:ingredient_id" json:"ingredient_id,omitempty"`
	Candidates     datatypes.JSON `gorm:"column:candidates;type:jsonb" json:"candidates,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (IngredientMatchLog) TableName() string { return "ingredient_match_log" }
