package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/services"
)

type CategoryHandler struct {
	log              *logger.Logger
	catalogService   services.CatalogService
	hierarchyService services.HierarchyService
}

func NewCategoryHandler(log *logger.Logger, csvc services.CatalogService, hsvc services.HierarchyService) *CategoryHandler {
	return &CategoryHandler{
		log:              log.With("handler", "CategoryHandler"),
		catalogService:   csvc,
		hierarchyService: hsvc,
	}
}

// GET /api/categories?top_level=true
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var (
		categories []*types.Category
		err        error
	)
	if c.Query("top_level") == "true" {
		categories, err = h.catalogService.TopLevelCategories(c.Request.Context())
	} else {
		categories, err = h.catalogService.ListCategories(c.Request.Context())
	}
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"categories": categories})
}

// GET /api/categories/:slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	cat, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, cat)
}

// GET /api/categories/:slug/ancestors
func (h *CategoryHandler) ListAncestors(c *gin.Context) {
	cat, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	ancestors, err := h.catalogService.Ancestors(c.Request.Context(), cat.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"category": cat, "ancestors": ancestors})
}

// GET /api/categories/:slug/descendants
func (h *CategoryHandler) ListDescendants(c *gin.Context) {
	cat, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	descendants, err := h.catalogService.Descendants(c.Request.Context(), cat.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"category": cat, "descendants": descendants})
}

// GET /api/categories/:slug/children
func (h *CategoryHandler) ListChildren(c *gin.Context) {
	cat, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	children, err := h.catalogService.Children(c.Request.Context(), cat.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"category": cat, "children": children})
}

// POST /api/admin/categories
func (h *CategoryHandler) CreateTopLevel(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	cat, err := h.hierarchyService.CreateTopLevel(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, cat)
}

// POST /api/admin/categories/:slug/reparent
func (h *CategoryHandler) Reparent(c *gin.Context) {
	var req struct {
		NewParentSlug string `json:"new_parent_slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	cat, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	parent, err := h.catalogService.GetCategory(c.Request.Context(), req.NewParentSlug)
	if err != nil {
		RespondError(c, err)
		return
	}
	stats, err := h.hierarchyService.Reparent(c.Request.Context(), cat.ID, parent.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}

// POST /api/admin/categories/fix-hierarchy
// Body maps parent names to child names; missing parents are created as
// top-level categories.
func (h *CategoryHandler) FixHierarchy(c *gin.Context) {
	var req struct {
		Plan   map[string][]string `json:"plan"`
		DryRun bool                `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	report, err := h.hierarchyService.FixHierarchy(c.Request.Context(), req.Plan, req.DryRun)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, report)
}
