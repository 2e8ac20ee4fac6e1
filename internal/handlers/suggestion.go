package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/requestdata"
	"github.com/barhand/barhand-backend/internal/services"
)

type SuggestionHandler struct {
	log                *logger.Logger
	suggestionService  services.SuggestionService
	categorizerService services.CategorizerService
}

func NewSuggestionHandler(log *logger.Logger, ssvc services.SuggestionService, csvc services.CategorizerService) *SuggestionHandler {
	return &SuggestionHandler{
		log:                log.With("handler", "SuggestionHandler"),
		suggestionService:  ssvc,
		categorizerService: csvc,
	}
}

// GET /api/admin/suggestions?ingredient_id=...
func (h *SuggestionHandler) ListSuggestions(c *gin.Context) {
	if raw := c.Query("ingredient_id"); raw != "" {
		ingredientID, err := uuid.Parse(raw)
		if err != nil {
			RespondBadRequest(c, "invalid ingredient id")
			return
		}
		suggestions, err := h.suggestionService.ListByIngredient(c.Request.Context(), ingredientID)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"suggestions": suggestions})
		return
	}

	suggestions, err := h.suggestionService.ListPending(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}

// POST /api/admin/suggestions/:id/approve
func (h *SuggestionHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid suggestion id")
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	sug, err := h.suggestionService.Approve(c.Request.Context(), id, rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, sug)
}

// POST /api/admin/suggestions/:id/reject
func (h *SuggestionHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid suggestion id")
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	sug, err := h.suggestionService.Reject(c.Request.Context(), id, rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, sug)
}

// POST /api/admin/ingredients/:id/categorize
func (h *SuggestionHandler) CategorizeIngredient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid ingredient id")
		return
	}
	sug, err := h.categorizerService.CategorizeIngredient(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	if sug == nil {
		RespondOK(c, gin.H{"suggestion": nil, "message": "no suggestion created"})
		return
	}
	RespondCreated(c, sug)
}

// POST /api/admin/ingredients/categorize-pending?limit=50
func (h *SuggestionHandler) CategorizePending(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondBadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	report, err := h.categorizerService.CategorizePending(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, report)
}
