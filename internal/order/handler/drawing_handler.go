package handler

import (
	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

type DrawingHandler struct {
	drawings *service.DrawingService
	release  *service.ReleaseService
	errs     errorResponder
}

// Get GET /drawings/:id
func (h *DrawingHandler) Get(c *gin.Context) {
	drawing, err := h.drawings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, drawing)
}

type drawingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus PATCH /drawings/:id
func (h *DrawingHandler) UpdateStatus(c *gin.Context) {
	var req drawingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	res, err := h.drawings.UpdateStatus(c.Request.Context(), c.Param("id"), entity.DrawingStatus(req.Status), actor(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}

	data := gin.H{
		"id":             res.Drawing.ID,
		"status":         res.Drawing.Status,
		"released":       res.Released,
		"rolled_forward": res.RolledForward,
	}
	if res.ReleaseErr != nil {
		data["release_error"] = res.ReleaseErr.Error()
	}
	Success(c, data)
}

type assignRequest struct {
	DesignerID string `json:"designer_id" binding:"required"`
}

// Assign POST /drawings/:id/assign
func (h *DrawingHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	drawing, err := h.drawings.Assign(c.Request.Context(), c.Param("id"), req.DesignerID, GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, drawing)
}

type releaseRequest struct {
	ProjectID string `json:"project_id"`
}

// Release POST /drawings/:id/release
// Re-runs the release of a drawing already sent to production.
func (h *DrawingHandler) Release(c *gin.Context) {
	var req releaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}
	rolled, err := h.release.ReleaseDrawingToProduction(c.Request.Context(), c.Param("id"), req.ProjectID, GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, gin.H{"rolled_forward": rolled})
}
