package handler

import (
	"net/http"

	"github.com/bitfantasy/joinery/internal/middleware"
	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/gin-gonic/gin"
)

// SignatureTokenHeader carries the shared secret on signature webhooks.
const SignatureTokenHeader = "X-Signature-Token"

// RegisterRoutes mounts the order API under /api/v1.
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret, webhookToken string) {
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
	})

	v1 := r.Group("/api/v1")
	{
		// e-signature provider callbacks, authenticated by shared token
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookToken(SignatureTokenHeader, webhookToken))
		{
			webhooks.POST("/signature", h.Signature.Receive)
		}

		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtSecret))
		{
			enquiries := authorized.Group("/enquiries")
			{
				enquiries.POST("", h.Enquiry.Create)
				enquiries.GET("/:id", h.Enquiry.Get)
				enquiries.POST("/:id/lost", h.Enquiry.MarkLost)
			}

			quotes := authorized.Group("/quotes")
			{
				quotes.POST("", h.Quote.Create)
				quotes.GET("/:id", h.Quote.Get)
				quotes.POST("/:id/transition", h.Quote.Transition)
				quotes.POST("/:id/approval", h.Quote.Approval)
				quotes.POST("/:id/convert", h.Quote.Convert)
			}

			projects := authorized.Group("/projects")
			{
				projects.GET("/:id", h.Project.Get)
				projects.POST("/:id/transition", h.Project.Transition)
				projects.GET("/:id/items", h.Project.ListItems)
				projects.GET("/:id/items/export", h.Project.ExportItems)
				projects.GET("/:id/drawings", h.Project.ListDrawings)
			}

			items := authorized.Group("/items")
			{
				items.GET("/:id", h.Item.Get)
				items.PATCH("/:id", h.Item.Update)
				items.GET("/:id/history", h.Item.History)
			}

			drawings := authorized.Group("/drawings")
			{
				drawings.GET("/:id", h.Drawing.Get)
				drawings.PATCH("/:id", h.Drawing.UpdateStatus)
				drawings.POST("/:id/assign", h.Drawing.Assign)
				drawings.POST("/:id/release", middleware.RequireRole(entity.RoleDesignLead), h.Drawing.Release)
			}

			invoices := authorized.Group("/invoices")
			{
				invoices.GET("/:id", h.Invoice.Get)
				invoices.POST("/:id/mark-paid", h.Invoice.MarkPaid)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.POST("/:id/read", h.Notification.MarkRead)
			}
		}
	}
}
