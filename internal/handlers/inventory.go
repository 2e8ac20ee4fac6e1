package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/requestdata"
	"github.com/barhand/barhand-backend/internal/services"
)

type InventoryHandler struct {
	log              *logger.Logger
	inventoryService services.InventoryService
}

func NewInventoryHandler(log *logger.Logger, isvc services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		log:              log.With("handler", "InventoryHandler"),
		inventoryService: isvc,
	}
}

// GET /api/inventory
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	items, err := h.inventoryService.List(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": items})
}

// PUT /api/inventory/:ingredient_id
func (h *InventoryHandler) SetInStock(c *gin.Context) {
	ingredientID, err := uuid.Parse(c.Param("ingredient_id"))
	if err != nil {
		RespondBadRequest(c, "invalid ingredient id")
		return
	}
	var req struct {
		InStock bool `json:"in_stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	row, err := h.inventoryService.SetInStock(c.Request.Context(), rd.UserID, ingredientID, req.InStock)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, row)
}

// GET /api/inventory/stats
func (h *InventoryHandler) Stats(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	stats, err := h.inventoryService.Stats(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}
