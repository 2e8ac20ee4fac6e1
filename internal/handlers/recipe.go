package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/requestdata"
	"github.com/barhand/barhand-backend/internal/services"
)

type RecipeHandler struct {
	log            *logger.Logger
	recipeService  services.RecipeService
	matcherService services.MatcherService
	catalogService services.CatalogService
}

func NewRecipeHandler(log *logger.Logger, rsvc services.RecipeService, msvc services.MatcherService, csvc services.CatalogService) *RecipeHandler {
	return &RecipeHandler{
		log:            log.With("handler", "RecipeHandler"),
		recipeService:  rsvc,
		matcherService: msvc,
		catalogService: csvc,
	}
}

// GET /api/recipes?search=...&category=slug
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var categoryID *uuid.UUID
	if slug := c.Query("category"); slug != "" {
		cat, err := h.catalogService.GetCategory(c.Request.Context(), slug)
		if err != nil {
			RespondError(c, err)
			return
		}
		categoryID = &cat.ID
	}
	recipes, err := h.recipeService.List(c.Request.Context(), c.Query("search"), categoryID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"recipes": recipes})
}

// GET /api/recipes/:ref
// ref is a recipe ID or a slug.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	ref := c.Param("ref")
	if id, err := uuid.Parse(ref); err == nil {
		rec, err := h.recipeService.Get(c.Request.Context(), id)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, rec)
		return
	}
	rec, err := h.recipeService.GetBySlug(c.Request.Context(), ref)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rec)
}

// GET /api/recipes/available?max_depth=2
// Recipes the caller can make from their inventory, with the ingredient match
// sets the answer was derived from.
func (h *RecipeHandler) AvailableRecipes(c *gin.Context) {
	maxDepth := 0
	if raw := c.Query("max_depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondBadRequest(c, "invalid max_depth")
			return
		}
		maxDepth = n
	}

	rd := requestdata.GetRequestData(c.Request.Context())
	sets, err := h.matcherService.MatchSets(c.Request.Context(), rd.UserID, maxDepth)
	if err != nil {
		RespondError(c, err)
		return
	}
	recipes, err := h.matcherService.MakeableRecipes(c.Request.Context(), rd.UserID, maxDepth)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"recipes": recipes, "match_sets": sets})
}
