package handler

import (
	"encoding/json"
	"errors"

	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/gin-gonic/gin"
)

// Webhook outcomes reported back to the signature provider.
const (
	SignatureConverted = "converted"
	SignatureDuplicate = "duplicate"
	SignatureIgnored   = "ignored"
)

// SignatureHandler receives envelope events from the e-signature provider.
// Replays answer 200 so the provider stops retrying; transient failures
// answer 5xx so it tries again.
type SignatureHandler struct {
	conversion *service.ConversionService
	errs       errorResponder
}

// Receive POST /api/v1/webhooks/signature
func (h *SignatureHandler) Receive(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "read body: "+err.Error())
		return
	}
	var ev service.SignatureCompletion
	if err := json.Unmarshal(raw, &ev); err != nil {
		BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	res, err := h.conversion.ConvertFromSignature(c.Request.Context(), ev, raw)
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrNotFound) {
			BadRequest(c, err.Error())
			return
		}
		h.errs.respond(c, err)
		return
	}

	data := gin.H{"envelope_id": ev.EnvelopeID}
	switch {
	case res.Ignored:
		data["result"] = SignatureIgnored
	case res.Duplicate:
		data["result"] = SignatureDuplicate
	default:
		data["result"] = SignatureConverted
		data["project_id"] = res.Project.ID
		data["invoice_id"] = res.Invoice.ID
	}
	Success(c, data)
}
