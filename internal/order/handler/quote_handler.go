package handler

import (
	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quotes     *service.QuoteService
	conversion *service.ConversionService
	errs       errorResponder
}

// Create POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req service.CreateQuoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	quote, err := h.quotes.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Created(c, quote)
}

// Get GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.quotes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, quote)
}

type quoteTransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition POST /quotes/:id/transition
func (h *QuoteHandler) Transition(c *gin.Context) {
	var req quoteTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	quote, err := h.quotes.Transition(c.Request.Context(), c.Param("id"), entity.QuoteStatus(req.Status), GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, quote)
}

type approvalRequest struct {
	// empty requests approval, otherwise approve or reject
	Decision string `json:"decision"`
}

// Approval POST /quotes/:id/approval
func (h *QuoteHandler) Approval(c *gin.Context) {
	var req approvalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	var (
		quote *entity.Quote
		err   error
	)
	switch req.Decision {
	case "":
		quote, err = h.quotes.RequestApproval(ctx, id, GetUserID(c))
	case "approve", "approved":
		quote, err = h.quotes.DecideApproval(ctx, id, true, GetUserID(c))
	case "reject", "rejected":
		quote, err = h.quotes.DecideApproval(ctx, id, false, GetUserID(c))
	default:
		BadRequest(c, "decision must be approve or reject")
		return
	}
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, quote)
}

type convertRequest struct {
	ProjectName string `json:"project_name"`
	SiteAddress string `json:"site_address"`
}

// Convert POST /quotes/:id/convert
func (h *QuoteHandler) Convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	project, invoice, err := h.conversion.ConvertQuote(c.Request.Context(), c.Param("id"), service.ConvertInput{
		ProjectName: req.ProjectName,
		SiteAddress: req.SiteAddress,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, gin.H{
		"project_id":   project.ID,
		"project_code": project.Code,
		"invoice_id":   invoice.ID,
		"deposit":      invoice.Amount.StringFixed(2),
	})
}
