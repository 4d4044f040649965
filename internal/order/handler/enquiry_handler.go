package handler

import (
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

type EnquiryHandler struct {
	svc  *service.EnquiryService
	errs errorResponder
}

// Create POST /enquiries
func (h *EnquiryHandler) Create(c *gin.Context) {
	var req service.CreateEnquiryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	enquiry, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Created(c, enquiry)
}

// Get GET /enquiries/:id
func (h *EnquiryHandler) Get(c *gin.Context) {
	enquiry, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, enquiry)
}

type lostRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// MarkLost POST /enquiries/:id/lost
func (h *EnquiryHandler) MarkLost(c *gin.Context) {
	var req lostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	enquiry, err := h.svc.MarkLost(c.Request.Context(), c.Param("id"), req.Reason, GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, enquiry)
}
