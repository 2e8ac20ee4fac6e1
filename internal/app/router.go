package app

import (
	"github.com/gin-gonic/gin"

	"github.com/barhand/barhand-backend/internal/middleware"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/server"
	"github.com/barhand/barhand-backend/internal/services"
)

func wireMiddleware(log *logger.Logger, auth services.AuthService) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(log, auth)
}

func wireRouter(cfg Config, h Handlers, am *middleware.AuthMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowedOrigins: server.SplitOrigins(cfg.AllowedOrigins),
		Tracing:        cfg.TracingEnabled,
		AuthMiddleware: am,

		AuthHandler:       h.Auth,
		CategoryHandler:   h.Category,
		IngredientHandler: h.Ingredient,
		InventoryHandler:  h.Inventory,
		RecipeHandler:     h.Recipe,
		SuggestionHandler: h.Suggestion,
		ImportHandler:     h.Import,
	})
}
