package app

import (
	"github.com/barhand/barhand-backend/internal/handlers"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Category   *handlers.CategoryHandler
	Ingredient *handlers.IngredientHandler
	Inventory  *handlers.InventoryHandler
	Recipe     *handlers.RecipeHandler
	Suggestion *handlers.SuggestionHandler
	Import     *handlers.ImportHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:       handlers.NewAuthHandler(s.Auth),
		Category:   handlers.NewCategoryHandler(log, s.Catalog, s.Hierarchy),
		Ingredient: handlers.NewIngredientHandler(log, s.Catalog),
		Inventory:  handlers.NewInventoryHandler(log, s.Inventory),
		Recipe:     handlers.NewRecipeHandler(log, s.Recipe, s.Matcher, s.Catalog),
		Suggestion: handlers.NewSuggestionHandler(log, s.Suggestion, s.Categorizer),
		Import:     handlers.NewImportHandler(log, s.RecipeImport),
	}
}
