package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// ExportHeader is the first row of every CSV export.
var ExportHeader = []string{"id", "timestamp", "category", "amount", "vendor", "status", "recipientHash"}

const defaultExportBatchSize = 500

// LedgerSettings bounds the public read surface.
type LedgerSettings struct {
	DefaultPageSize int
	MaxPageSize     int
	StatsCacheTTL   time.Duration
	ExportBatchSize int
}

// LedgerServiceImpl implements ports.LedgerService. Every method is read-only.
type LedgerServiceImpl struct {
	txRepo     ports.TransactionRepository
	statsCache ports.StatsCache // nil = no caching
	settings   LedgerSettings
	log        zerolog.Logger
	now        func() time.Time
}

// NewLedgerService creates a new LedgerServiceImpl. A non-positive
// StatsCacheTTL disables stats caching.
func NewLedgerService(txRepo ports.TransactionRepository, statsCache ports.StatsCache, settings LedgerSettings, log zerolog.Logger) *LedgerServiceImpl {
	if settings.StatsCacheTTL <= 0 {
		statsCache = nil
	}
	return &LedgerServiceImpl{
		txRepo:     txRepo,
		statsCache: statsCache,
		settings:   settings,
		log:        log,
		now:        time.Now,
	}
}

// List returns one page of ledger entries with the filtered total.
func (s *LedgerServiceImpl) List(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerPage, error) {
	if err := validateFilter(params.Filter); err != nil {
		return nil, err
	}
	if params.Offset < 0 {
		return nil, apperror.ErrInvalidFilter("offset must not be negative")
	}
	switch {
	case params.Limit <= 0:
		params.Limit = s.settings.DefaultPageSize
	case params.Limit > s.settings.MaxPageSize:
		params.Limit = s.settings.MaxPageSize
	}

	entries, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger: %w", err))
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return &ports.LedgerPage{Entries: entries, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

// Stats returns aggregate totals for the filter, served from cache when fresh.
func (s *LedgerServiceImpl) Stats(ctx context.Context, filter domain.LedgerFilter) (*domain.LedgerStats, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	key := statsCacheKey(filter)

	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("redis stats cache read failed, querying DB")
		}
		if cached != nil {
			stats := &domain.LedgerStats{}
			if err := json.Unmarshal(cached, stats); err == nil {
				return stats, nil
			}
			s.log.Warn().Str("key", key).Msg("discarding unreadable cached stats")
		}
	}

	stats, err := s.txRepo.GetStats(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger stats: %w", err))
	}

	if s.statsCache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.statsCache.Set(ctx, key, payload, s.settings.StatsCacheTTL); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("failed to cache ledger stats")
			}
		}
	}
	return stats, nil
}

// Export streams every entry matching filter as CSV, page by page. The upper
// time bound is pinned at call time so rows appended mid-export cannot shift
// the pages.
func (s *LedgerServiceImpl) Export(ctx context.Context, filter domain.LedgerFilter, w io.Writer) error {
	if err := validateFilter(filter); err != nil {
		return err
	}
	snapshot := s.now().UTC()
	if filter.To == nil || filter.To.After(snapshot) {
		filter.To = &snapshot
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	batch := s.settings.ExportBatchSize
	if batch <= 0 {
		batch = defaultExportBatchSize
	}
	for offset := 0; ; offset += batch {
		entries, _, err := s.txRepo.List(ctx, ports.LedgerListParams{Filter: filter, Limit: batch, Offset: offset})
		if err != nil {
			return apperror.InternalError(fmt.Errorf("export ledger page: %w", err))
		}
		for _, e := range entries {
			if err := cw.Write(exportRow(e)); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flush csv: %w", err)
		}
		if len(entries) < batch {
			return nil
		}
	}
}

// PendingRemediation lists transactions still PENDING olderThan after
// creation, oldest first.
func (s *LedgerServiceImpl) PendingRemediation(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transaction, error) {
	if olderThan < 0 {
		return nil, apperror.ErrInvalidFilter("older_than must not be negative")
	}
	if limit <= 0 || limit > s.settings.MaxPageSize {
		limit = s.settings.MaxPageSize
	}
	txns, err := s.txRepo.ListPendingRemediation(ctx, s.now().UTC().Add(-olderThan), limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list remediation queue: %w", err))
	}
	return txns, nil
}

func exportRow(e domain.LedgerEntry) []string {
	return []string{
		e.ID.String(),
		e.Timestamp.UTC().Format(time.RFC3339),
		string(e.Category),
		domain.FormatAmount(e.Amount),
		e.VendorName,
		string(e.Status),
		e.RecipientHash,
	}
}

func validateFilter(f domain.LedgerFilter) error {
	if f.Category != nil && !f.Category.IsValid() {
		return apperror.ErrInvalidFilter("invalid category")
	}
	if f.Status != nil && !f.Status.IsValid() {
		return apperror.ErrInvalidFilter("invalid status")
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return apperror.ErrInvalidFilter("startDate must be before endDate")
	}
	return nil
}

func statsCacheKey(f domain.LedgerFilter) string {
	parts := []string{"", "", strings.ToLower(f.Vendor), "", ""}
	if f.Category != nil {
		parts[0] = string(*f.Category)
	}
	if f.Status != nil {
		parts[1] = string(*f.Status)
	}
	if f.From != nil {
		parts[3] = strconv.FormatInt(f.From.UnixMicro(), 10)
	}
	if f.To != nil {
		parts[4] = strconv.FormatInt(f.To.UnixMicro(), 10)
	}
	return strings.Join(parts, "|")
}
