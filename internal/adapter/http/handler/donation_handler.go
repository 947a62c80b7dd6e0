package handler

import (
	"aid-ledger/internal/adapter/http/dto"
	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DonationHandler handles donation intake endpoints.
type DonationHandler struct {
	donationSvc ports.DonationService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donationSvc ports.DonationService) *DonationHandler {
	return &DonationHandler{donationSvc: donationSvc}
}

// Create handles POST /api/v1/donations.
func (h *DonationHandler) Create(c *gin.Context) {
	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := domain.AmountFromDecimal(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		response.Error(c, apperror.ErrInvalidCategory(req.Category))
		return
	}

	donation, err := h.donationSvc.Create(c.Request.Context(), ports.CreateDonationRequest{
		Amount:                   amount,
		Category:                 category,
		ExternalPaymentReference: req.ExternalPaymentReference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewDonationResponse(donation))
}

// Get handles GET /api/v1/donations/:id.
func (h *DonationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid donation id"))
		return
	}

	donation, err := h.donationSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewDonationResponse(donation))
}
