package handler

import (
	"fmt"
	"time"

	"aid-ledger/internal/adapter/http/dto"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultOlderThan    = time.Hour
	defaultStalledAfter = 5 * time.Minute
	defaultOpsPageSize  = 20
	maxOpsPageSize      = 100
)

// OpsHandler serves the operator queues and manual distribution.
type OpsHandler struct {
	ledgerSvc       ports.LedgerService
	donationSvc     ports.DonationService
	distributionSvc ports.DistributionService
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(ledgerSvc ports.LedgerService, donationSvc ports.DonationService, distributionSvc ports.DistributionService) *OpsHandler {
	return &OpsHandler{ledgerSvc: ledgerSvc, donationSvc: donationSvc, distributionSvc: distributionSvc}
}

// Remediation handles GET /api/v1/ops/remediation.
func (h *OpsHandler) Remediation(c *gin.Context) {
	olderThan, err := queryOlderThan(c, defaultOlderThan)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, err := h.ledgerSvc.PendingRemediation(c.Request.Context(), olderThan, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RemediationResponse{
		OlderThan:    olderThan.String(),
		Transactions: dto.NewTransactionResponses(txns),
	})
}

// Reconciliation handles GET /api/v1/ops/reconciliation.
func (h *OpsHandler) Reconciliation(c *gin.Context) {
	limit, offset, err := opsPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	donations, total, err := h.donationSvc.ListNeedingReconciliation(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDonationListResponse(donations, total, limit, offset))
}

// Undistributed handles GET /api/v1/ops/undistributed: SUCCEEDED donations
// whose distribution never started, e.g. because the trigger was lost.
func (h *OpsHandler) Undistributed(c *gin.Context) {
	olderThan, err := queryOlderThan(c, defaultStalledAfter)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, offset, err := opsPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	donations, total, err := h.donationSvc.ListUndistributed(c.Request.Context(), olderThan, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDonationListResponse(donations, total, limit, offset))
}

// Distribute handles POST /api/v1/ops/donations/:id/distribute.
func (h *OpsHandler) Distribute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid donation id"))
		return
	}

	txns, err := h.distributionSvc.Distribute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DistributionResponse{
		DonationID:   id.String(),
		Transactions: dto.NewTransactionResponses(txns),
	})
}

func queryOlderThan(c *gin.Context, def time.Duration) (time.Duration, error) {
	raw := c.Query("older_than")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, apperror.ErrInvalidFilter(fmt.Sprintf("invalid older_than %q", raw))
	}
	return d, nil
}

// opsPage reads limit and offset for the operator queues. Limit falls back
// to the default when unset or non-positive and is capped.
func opsPage(c *gin.Context) (int, int, error) {
	limit, err := queryInt(c, "limit", defaultOpsPageSize)
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 {
		return 0, 0, apperror.ErrInvalidFilter("offset must not be negative")
	}
	if limit < 1 {
		limit = defaultOpsPageSize
	}
	if limit > maxOpsPageSize {
		limit = maxOpsPageSize
	}
	return limit, offset, nil
}
