package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/services"
)

type IngredientHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewIngredientHandler(log *logger.Logger, csvc services.CatalogService) *IngredientHandler {
	return &IngredientHandler{
		log:            log.With("handler", "IngredientHandler"),
		catalogService: csvc,
	}
}

// GET /api/ingredients
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalogService.ListIngredients(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"ingredients": ingredients})
}

// GET /api/ingredients/:id
func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid ingredient id")
		return
	}
	detail, err := h.catalogService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, detail)
}
