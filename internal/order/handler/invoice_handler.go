package handler

import (
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	svc  *service.InvoiceService
	errs errorResponder
}

// Get GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, invoice)
}

// MarkPaid POST /invoices/:id/mark-paid
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	res, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	data := gin.H{
		"invoice":       res.Invoice,
		"design_opened": res.DesignOpened,
	}
	if res.Project != nil {
		data["project_status"] = res.Project.Status
	}
	Success(c, data)
}
