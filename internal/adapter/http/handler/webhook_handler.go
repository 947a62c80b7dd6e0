package handler

import (
	"time"

	"aid-ledger/internal/adapter/http/dto"
	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment provider notifications.
type WebhookHandler struct {
	reconciler ports.ReconcilerService
	now        func() time.Time
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconciler ports.ReconcilerService) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, now: time.Now}
}

// HandlePaymentEvent handles POST /webhooks/payments.
// Every well-formed event is acknowledged with 200, including duplicates and
// unknown references, so the provider stops redelivering.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	var req dto.PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrMalformedEvent(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	event := domain.PaymentEvent{
		EventID:                  req.EventID,
		Type:                     domain.PaymentEventType(req.Type),
		ExternalPaymentReference: req.ExternalPaymentReference,
		ReceivedAt:               h.now().UTC(),
	}
	if req.Amount != nil {
		minor, err := domain.AmountFromDecimal(*req.Amount)
		if err != nil {
			response.Error(c, apperror.ErrMalformedEvent(err.Error()))
			return
		}
		event.Amount = &minor
	}

	outcome, err := h.reconciler.HandleEvent(c.Request.Context(), event)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.EventAckResponse{EventID: event.EventID, Outcome: string(outcome)})
}
