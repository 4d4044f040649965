package handler

import (
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects *service.ProjectService
	items    *service.ItemService
	drawings *service.DrawingService
	export   *service.ExportService
	errs     errorResponder
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, project)
}

type projectTransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition POST /projects/:id/transition
// Accepts on_hold, cancelled or resume. Everything else is derived from items.
func (h *ProjectHandler) Transition(c *gin.Context) {
	var req projectTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	project, err := h.projects.RequestTransition(c.Request.Context(), c.Param("id"), req.Status, GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, project)
}

// ListItems GET /projects/:id/items
func (h *ProjectHandler) ListItems(c *gin.Context) {
	items, err := h.items.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// ListDrawings GET /projects/:id/drawings
func (h *ProjectHandler) ListDrawings(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.projects.Get(ctx, id); err != nil {
		h.errs.respond(c, err)
		return
	}
	drawings, err := h.drawings.ListByProject(ctx, id)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, gin.H{"items": drawings})
}

// ExportItems GET /projects/:id/items/export
func (h *ProjectHandler) ExportItems(c *gin.Context) {
	f, filename, err := h.export.ExportProjectItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.errs.logger.Error("write items export", zap.String("project_id", c.Param("id")), zap.Error(err))
	}
}
