package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/services"
)

// 10 MB is plenty for a photographed book page.
const maxImportImageBytes = 10 << 20

type ImportHandler struct {
	log           *logger.Logger
	importService services.RecipeImportService
}

func NewImportHandler(log *logger.Logger, isvc services.RecipeImportService) *ImportHandler {
	return &ImportHandler{
		log:           log.With("handler", "ImportHandler"),
		importService: isvc,
	}
}

// POST /api/admin/imports/parse-image
// Multipart upload: "image" file plus optional "source_name" field.
func (h *ImportHandler) ParseImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		RespondBadRequest(c, "image file required")
		return
	}
	if file.Size > maxImportImageBytes {
		RespondBadRequest(c, "image too large")
		return
	}
	f, err := file.Open()
	if err != nil {
		RespondError(c, err)
		return
	}
	defer f.Close()
	img, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, err)
		return
	}

	imp, err := h.importService.ParseImage(c.Request.Context(), img, c.PostForm("source_name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, imp)
}

// GET /api/admin/imports?status=pending
func (h *ImportHandler) ListImports(c *gin.Context) {
	imports, err := h.importService.ListImports(c.Request.Context(), c.Query("status"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"imports": imports})
}

// GET /api/admin/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid import id")
		return
	}
	imp, err := h.importService.GetImport(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, imp)
}

// POST /api/admin/imports/:id/approve
func (h *ImportHandler) ApproveImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid import id")
		return
	}
	var req struct {
		RecipeIndex int    `json:"recipe_index"`
		Source      string `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	rec, err := h.importService.ApproveImport(c.Request.Context(), id, req.RecipeIndex, req.Source)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rec)
}

// POST /api/admin/imports/:id/reject
func (h *ImportHandler) RejectImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid import id")
		return
	}
	imp, err := h.importService.RejectImport(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, imp)
}

// GET /api/admin/imports/:id/match-logs
func (h *ImportHandler) ListMatchLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid import id")
		return
	}
	logs, err := h.importService.MatchLogs(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"match_logs": logs})
}
