package handler

import (
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc  *service.NotificationService
	errs errorResponder
}

// List GET /notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	unreadOnly := c.Query("unread") == "true"

	items, total, err := h.svc.List(c.Request.Context(), GetUserID(c), unreadOnly, page, pageSize)
	if err != nil {
		h.errs.respond(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// UnreadCount GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), GetUserID(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, gin.H{"count": count})
}

// MarkRead POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		h.errs.respond(c, err)
		return
	}
	Success(c, nil)
}
