package postgres

import (
	"context"
	"errors"
	"fmt"

	"aid-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ProcessedEventRepo implements ports.ProcessedEventRepository.
type ProcessedEventRepo struct {
	pool Pool
}

// NewProcessedEventRepo creates a new ProcessedEventRepo.
func NewProcessedEventRepo(pool Pool) *ProcessedEventRepo {
	return &ProcessedEventRepo{pool: pool}
}

// Record inserts the event id within a database transaction. A concurrent
// insert of the same id blocks on the primary key until the other
// transaction finishes, then reports false if it committed.
func (r *ProcessedEventRepo) Record(ctx context.Context, tx pgx.Tx, e *domain.ProcessedEvent) (bool, error) {
	query := `INSERT INTO processed_events (event_id, event_type, donation_id, outcome, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, e.EventID, e.EventType, e.DonationID, e.Outcome, e.ProcessedAt)
	if err != nil {
		return false, fmt.Errorf("insert processed event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get fetches a processed event by id.
func (r *ProcessedEventRepo) Get(ctx context.Context, eventID string) (*domain.ProcessedEvent, error) {
	query := `SELECT event_id, event_type, donation_id, outcome, processed_at FROM processed_events WHERE event_id = $1`

	e := &domain.ProcessedEvent{}
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&e.EventID, &e.EventType, &e.DonationID, &e.Outcome, &e.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get processed event: %w", err)
	}
	return e, nil
}
