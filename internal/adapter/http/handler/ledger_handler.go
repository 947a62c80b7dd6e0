package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"aid-ledger/internal/adapter/http/dto"
	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	dateLayout     = "2006-01-02"
	maxVendorQuery = 100
)

// LedgerHandler serves the public, unauthenticated ledger.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
	log       zerolog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, log: log}
}

// List handles GET /ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	filter, err := parseLedgerFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.ledgerSvc.List(c.Request.Context(), ports.LedgerListParams{
		Filter: filter,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewLedgerListResponse(page))
}

// Stats handles GET /ledger/stats.
func (h *LedgerHandler) Stats(c *gin.Context) {
	filter, err := parseLedgerFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.ledgerSvc.Stats(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewLedgerStatsResponse(stats))
}

// Export handles GET /ledger/export, streaming CSV.
func (h *LedgerHandler) Export(c *gin.Context) {
	filter, err := parseLedgerFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	response.CSVAttachment(c, filename)

	if err := h.ledgerSvc.Export(c.Request.Context(), filter, c.Writer); err != nil {
		if !response.StreamError(c, err) {
			h.log.Error().Err(err).Str("request_id", c.GetString(response.RequestIDKey)).Msg("ledger export aborted mid-stream")
		}
	}
}

// parseLedgerFilter reads the filter query params shared by list, stats
// and export.
func parseLedgerFilter(c *gin.Context) (domain.LedgerFilter, error) {
	var filter domain.LedgerFilter

	if raw := c.Query("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return filter, apperror.ErrInvalidFilter(err.Error())
		}
		filter.Category = &category
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.TransactionStatus(strings.ToUpper(strings.TrimSpace(raw)))
		if !status.IsValid() {
			return filter, apperror.ErrInvalidFilter(fmt.Sprintf("unknown status %q", raw))
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("vendor")); raw != "" {
		if len(raw) > maxVendorQuery {
			return filter, apperror.ErrInvalidFilter("vendor filter too long")
		}
		filter.Vendor = raw
	}
	if raw := c.Query("startDate"); raw != "" {
		from, err := parseDate(raw, false)
		if err != nil {
			return filter, apperror.ErrInvalidFilter(fmt.Sprintf("invalid startDate %q", raw))
		}
		filter.From = &from
	}
	if raw := c.Query("endDate"); raw != "" {
		to, err := parseDate(raw, true)
		if err != nil {
			return filter, apperror.ErrInvalidFilter(fmt.Sprintf("invalid endDate %q", raw))
		}
		filter.To = &to
	}

	return filter, nil
}

// parseDate accepts RFC 3339 or a bare UTC date. A bare end date covers the
// whole day, so it is returned as the next midnight (exclusive bound).
func parseDate(raw string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// queryInt parses an optional integer query param.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ErrInvalidFilter(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}
