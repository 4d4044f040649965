package handler

import (
	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

// Item actions accepted by PATCH /items/:id.
const (
	ItemActionAdvance = "advance"
	ItemActionPassQC  = "pass_qc"
	ItemActionFailQC  = "fail_qc"
)

type ItemHandler struct {
	svc  *service.ItemService
	errs errorResponder
}

// Get GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, item)
}

// History GET /items/:id/history
func (h *ItemHandler) History(c *gin.Context) {
	logs, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, gin.H{"items": logs})
}

type updateItemRequest struct {
	Action    string `json:"action"`
	Status    string `json:"status"`
	QCType    string `json:"qc_type"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	RaiseSnag bool   `json:"raise_snag"`
}

// Update PATCH /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	userID := GetUserID(c)

	var (
		res *service.TransitionResult
		err error
	)
	switch req.Action {
	case "", ItemActionAdvance:
		if req.Status == "" {
			BadRequest(c, "status is required")
			return
		}
		res, err = h.svc.Advance(ctx, id, entity.ItemStatus(req.Status), userID)
	case ItemActionPassQC:
		res, err = h.svc.PassQC(ctx, id, entity.QCType(req.QCType), req.Notes, userID)
	case ItemActionFailQC:
		res, err = h.svc.FailQC(ctx, id, entity.QCType(req.QCType), req.Reason, userID, req.RaiseSnag)
	default:
		BadRequest(c, "action must be advance, pass_qc or fail_qc")
		return
	}
	if err != nil {
		h.errs.respond(c, err)
		return
	}

	data := gin.H{
		"id":              res.Item.ID,
		"previous_status": res.From,
		"new_status":      res.Item.Status,
		"project_status":  res.ProjectStatus,
		"project_changed": res.ProjectChanged,
	}
	if res.Snag != nil {
		data["snag_id"] = res.Snag.ID
	}
	Success(c, data)
}
