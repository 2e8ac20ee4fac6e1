package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/utils"
)

// SeedUser inserts a user with a throwaway password hash.
func SeedUser(t *testing.T, tx *gorm.DB, email string, isAdmin bool) *types.User {
	t.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		IsAdmin:   isAdmin,
	}
	if err := tx.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

// SeedCategory inserts a top-level category along with its self closure row.
func SeedCategory(t *testing.T, tx *gorm.DB, name string) *types.Category {
	t.Helper()
	c := &types.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: utils.Slugify(name, 120),
	}
	if err := tx.Create(c).Error; err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	self := &types.CategoryClosure{CategoryID: c.ID, AncestorID: c.ID, Depth: 0}
	if err := tx.Create(self).Error; err != nil {
		t.Fatalf("seed closure self row for %s: %v", name, err)
	}
	return c
}

// SeedChildCategory inserts a category under parent and builds its full
// closure chain from the parent's existing rows.
func SeedChildCategory(t *testing.T, tx *gorm.DB, name string, parent *types.Category) *types.Category {
	t.Helper()
	c := &types.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: utils.Slugify(name, 120),
	}
	if err := tx.Create(c).Error; err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	rows := []*types.CategoryClosure{{CategoryID: c.ID, AncestorID: c.ID, Depth: 0}}
	var parentRows []*types.CategoryClosure
	if err := tx.Where("category_id = ?", parent.ID).Find(&parentRows).Error; err != nil {
		t.Fatalf("load parent closure for %s: %v", name, err)
	}
	for _, pr := range parentRows {
		rows = append(rows, &types.CategoryClosure{
			CategoryID: c.ID,
			AncestorID: pr.AncestorID,
			Depth:      pr.Depth + 1,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		t.Fatalf("seed closure chain for %s: %v", name, err)
	}
	return c
}

// SeedIngredient inserts an ingredient, optionally assigned to categories.
func SeedIngredient(t *testing.T, tx *gorm.DB, name string, categories ...*types.Category) *types.Ingredient {
	t.Helper()
	ing := &types.Ingredient{
		ID:   uuid.New(),
		Name: name,
		Slug: utils.Slugify(name, 120),
	}
	if err := tx.Create(ing).Error; err != nil {
		t.Fatalf("seed ingredient %s: %v", name, err)
	}
	for _, c := range categories {
		row := &types.IngredientCategory{IngredientID: ing.ID, CategoryID: c.ID}
		if err := tx.Create(row).Error; err != nil {
			t.Fatalf("seed ingredient category %s/%s: %v", name, c.Name, err)
		}
	}
	return ing
}

// RecipeLine describes one line for SeedRecipe.
type RecipeLine struct {
	Ingredient *types.Ingredient
	Optional   bool
}

// SeedRecipe inserts a recipe with one line per entry, positions assigned
// in order.
func SeedRecipe(t *testing.T, tx *gorm.DB, name string, lines ...RecipeLine) *types.Recipe {
	t.Helper()
	rec := &types.Recipe{
		ID:   uuid.New(),
		Name: name,
		Slug: utils.Slugify(name, 120),
	}
	if err := tx.Omit("Lines").Create(rec).Error; err != nil {
		t.Fatalf("seed recipe %s: %v", name, err)
	}
	for i, ln := range lines {
		row := &types.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     rec.ID,
			IngredientID: ln.Ingredient.ID,
			Position:     i,
			Optional:     ln.Optional,
		}
		if err := tx.Create(row).Error; err != nil {
			t.Fatalf("seed recipe line %s[%d]: %v", name, i, err)
		}
	}
	return rec
}

// SeedInventory marks an ingredient in or out of stock for a user.
func SeedInventory(t *testing.T, tx *gorm.DB, userID uuid.UUID, ing *types.Ingredient, inStock bool) *types.UserInventory {
	t.Helper()
	row := &types.UserInventory{
		ID:           uuid.New(),
		UserID:       userID,
		IngredientID: ing.ID,
		InStock:      inStock,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := tx.Create(row).Error; err != nil {
		t.Fatalf("seed inventory %s: %v", ing.Name, err)
	}
	return row
}
