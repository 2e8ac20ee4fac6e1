package app

import (
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/services"
)

type Services struct {
	Auth            services.AuthService
	Catalog         services.CatalogService
	Hierarchy       services.HierarchyService
	Suggestion      services.SuggestionService
	Categorizer     services.CategorizerService
	Inventory       services.InventoryService
	Recipe          services.RecipeService
	Matcher         services.MatcherService
	IngredientMatch services.IngredientMatchService
	RecipeImport    services.RecipeImportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	verifier := services.NewNameMatchVerifier(c.Ollama, log)
	parser := services.NewRecipeTextParser(c.Ollama, log)

	var ocr services.OcrTranscriber
	if cfg.OCRProvider == "gcp" {
		ocr = services.NewGcpOcrTranscriber(c.Vision, log)
	} else {
		ocr = services.NewOllamaOcrTranscriber(c.Ollama, log)
	}

	ingredientMatch := services.NewIngredientMatchService(
		r.Ingredient, r.IngredientMatchLog, verifier,
		cfg.FuzzyMatchThreshold, cfg.FuzzyMatchTopN, log)

	return Services{
		Auth:            services.NewAuthService(r.User, []byte(cfg.JWTSecretKey), cfg.AccessTokenTTL, log),
		Catalog:         services.NewCatalogService(r.Category, r.CategoryClosure, r.Ingredient, log),
		Hierarchy:       services.NewHierarchyService(db, r.Category, r.CategoryClosure, c.MatchCache, log),
		Suggestion:      services.NewSuggestionService(db, r.CategorySuggestion, r.Ingredient, log),
		Categorizer:     services.NewCategorizerService(c.Ollama, r.Category, r.CategoryClosure, r.Ingredient, r.CategorySuggestion, cfg.MinSuggestionConfidence, cfg.CategorizeMaxDepth, log),
		Inventory:       services.NewInventoryService(r.UserInventory, r.Ingredient, c.MatchCache, log),
		Recipe:          services.NewRecipeService(r.Recipe, r.Ingredient, r.CategoryClosure, log),
		Matcher:         services.NewMatcherService(r.UserInventory, r.Ingredient, r.CategoryClosure, r.Recipe, c.MatchCache, cfg.MatcherDepthClamp, log),
		IngredientMatch: ingredientMatch,
		RecipeImport:    services.NewRecipeImportService(db, r.RecipeImport, r.Recipe, r.RecipeIngredient, r.IngredientMatchLog, ingredientMatch, ocr, parser, log),
	}
}
