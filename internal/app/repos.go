package app

import (
	"gorm.io/gorm"

	authrepo "github.com/barhand/barhand-backend/internal/data/repos/auth"
	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	invrepo "github.com/barhand/barhand-backend/internal/data/repos/inventory"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type Repos struct {
	User authrepo.UserRepo

	Category           catalog.CategoryRepo
	CategoryClosure    catalog.CategoryClosureRepo
	Ingredient         catalog.IngredientRepo
	CategorySuggestion catalog.CategorySuggestionRepo

	Recipe             reciperepo.RecipeRepo
	RecipeIngredient   reciperepo.RecipeIngredientRepo
	RecipeImport       reciperepo.RecipeImportRepo
	IngredientMatchLog reciperepo.IngredientMatchLogRepo

	UserInventory invrepo.UserInventoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: authrepo.NewUserRepo(db, log),

		Category:           catalog.NewCategoryRepo(db, log),
		CategoryClosure:    catalog.NewCategoryClosureRepo(db, log),
		Ingredient:         catalog.NewIngredientRepo(db, log),
		CategorySuggestion: catalog.NewCategorySuggestionRepo(db, log),

		Recipe:             reciperepo.NewRecipeRepo(db, log),
		RecipeIngredient:   reciperepo.NewRecipeIngredientRepo(db, log),
		RecipeImport:       reciperepo.NewRecipeImportRepo(db, log),
		IngredientMatchLog: reciperepo.NewIngredientMatchLogRepo(db, log),

		UserInventory: invrepo.NewUserInventoryRepo(db, log),
	}
}
