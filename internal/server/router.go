package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/barhand/barhand-backend/internal/handlers"
	"github.com/barhand/barhand-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	Tracing        bool

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler       *handlers.AuthHandler
	CategoryHandler   *handlers.CategoryHandler
	IngredientHandler *handlers.IngredientHandler
	InventoryHandler  *handlers.InventoryHandler
	RecipeHandler     *handlers.RecipeHandler
	SuggestionHandler *handlers.SuggestionHandler
	ImportHandler     *handlers.ImportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.Tracing {
		router.Use(otelgin.Middleware("barhand-backend"))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// Authenticated
	authed := api.Group("/")
	authed.Use(cfg.AuthMiddleware.RequireAuth())
	{
		// Categories
		authed.GET("/categories", cfg.CategoryHandler.ListCategories)
		authed.GET("/categories/:slug", cfg.CategoryHandler.GetCategory)
		authed.GET("/categories/:slug/ancestors", cfg.CategoryHandler.ListAncestors)
		authed.GET("/categories/:slug/descendants", cfg.CategoryHandler.ListDescendants)
		authed.GET("/categories/:slug/children", cfg.CategoryHandler.ListChildren)
		// Ingredients
		authed.GET("/ingredients", cfg.IngredientHandler.ListIngredients)
		authed.GET("/ingredients/:id", cfg.IngredientHandler.GetIngredient)
		// Inventory
		authed.GET("/inventory", cfg.InventoryHandler.ListInventory)
		authed.GET("/inventory/stats", cfg.InventoryHandler.Stats)
		authed.PUT("/inventory/:ingredient_id", cfg.InventoryHandler.SetInStock)
		// Recipes. The static route must be registered before the :ref route.
		authed.GET("/recipes", cfg.RecipeHandler.ListRecipes)
		authed.GET("/recipes/available", cfg.RecipeHandler.AvailableRecipes)
		authed.GET("/recipes/:ref", cfg.RecipeHandler.GetRecipe)
	}

	// Admin
	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	{
		admin.POST("/categories", cfg.CategoryHandler.CreateTopLevel)
		admin.POST("/categories/fix-hierarchy", cfg.CategoryHandler.FixHierarchy)
		admin.POST("/categories/:slug/reparent", cfg.CategoryHandler.Reparent)

		admin.GET("/suggestions", cfg.SuggestionHandler.ListSuggestions)
		admin.POST("/suggestions/:id/approve", cfg.SuggestionHandler.Approve)
		admin.POST("/suggestions/:id/reject", cfg.SuggestionHandler.Reject)
		admin.POST("/ingredients/categorize-pending", cfg.SuggestionHandler.CategorizePending)
		admin.POST("/ingredients/:id/categorize", cfg.SuggestionHandler.CategorizeIngredient)

		admin.POST("/imports/parse-image", cfg.ImportHandler.ParseImage)
		admin.GET("/imports", cfg.ImportHandler.ListImports)
		admin.GET("/imports/:id", cfg.ImportHandler.GetImport)
		admin.POST("/imports/:id/approve", cfg.ImportHandler.ApproveImport)
		admin.POST("/imports/:id/reject", cfg.ImportHandler.RejectImport)
		admin.GET("/imports/:id/match-logs", cfg.ImportHandler.ListMatchLogs)
	}

	return router
}

// SplitOrigins parses a comma-separated origin list from the environment.
func SplitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
