package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/joinery/internal/middleware"
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers 处理器集合
type Handlers struct {
	Quote        *QuoteHandler
	Enquiry      *EnquiryHandler
	Project      *ProjectHandler
	Item         *ItemHandler
	Drawing      *DrawingHandler
	Invoice      *InvoiceHandler
	Notification *NotificationHandler
	Signature    *SignatureHandler
	SSE          *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *sse.Hub, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	errs := errorResponder{logger: logger.Named("http")}
	return &Handlers{
		Quote:        &QuoteHandler{quotes: svc.Quote, conversion: svc.Conversion, errs: errs},
		Enquiry:      &EnquiryHandler{svc: svc.Enquiry, errs: errs},
		Project:      &ProjectHandler{projects: svc.Project, items: svc.Item, drawings: svc.Drawing, export: svc.Export, errs: errs},
		Item:         &ItemHandler{svc: svc.Item, errs: errs},
		Drawing:      &DrawingHandler{drawings: svc.Drawing, release: svc.Release, errs: errs},
		Invoice:      &InvoiceHandler{svc: svc.Invoice, errs: errs},
		Notification: &NotificationHandler{svc: svc.Notification, errs: errs},
		Signature:    &SignatureHandler{conversion: svc.Conversion, errs: errs},
		SSE:          NewSSEHandler(hub),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Error codes beyond the generic class codes.
const (
	CodeConflict         = 40900
	CodeAlreadyConverted = 40901
	CodeConversionFailed = 50001
)

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// errorResponder maps service errors onto the response envelope.
type errorResponder struct {
	logger *zap.Logger
}

func (r errorResponder) respond(c *gin.Context, err error) {
	msg := err.Error()
	var ce *service.ConversionError
	if errors.As(err, &ce) {
		msg = ce.Err.Error()
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, msg)
	case errors.Is(err, service.ErrAlreadyConverted):
		Error(c, CodeAlreadyConverted, msg)
	case errors.Is(err, service.ErrConflict):
		Error(c, CodeConflict, msg)
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, msg)
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrIllegalTransition):
		BadRequest(c, msg)
	case ce != nil:
		r.logger.Error("conversion failed",
			zap.String("quote_id", ce.QuoteID),
			zap.String("step", ce.Step),
			zap.Error(ce.Err))
		Error(c, CodeConversionFailed, "conversion failed, nothing was created")
	default:
		r.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		InternalError(c, "internal error")
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// actor builds the service-side view of the caller.
func actor(c *gin.Context) service.Actor {
	return service.Actor{ID: GetUserID(c), Roles: middleware.GetRoles(c)}
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
