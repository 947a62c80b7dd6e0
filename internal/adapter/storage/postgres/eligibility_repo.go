package postgres

import (
	"context"
	"fmt"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// EligibilityRepo implements ports.EligibilityRepository over the
// beneficiary_eligibility table maintained by intake. last_matched is
// derived from the ledger, never stored.
type EligibilityRepo struct {
	pool Pool
}

// NewEligibilityRepo creates a new EligibilityRepo.
func NewEligibilityRepo(pool Pool) *EligibilityRepo {
	return &EligibilityRepo{pool: pool}
}

// FindQualifiedUnmatched returns up to limit qualified beneficiaries outside
// the cooldown window for category, oldest qualification first.
func (r *EligibilityRepo) FindQualifiedUnmatched(ctx context.Context, tx pgx.Tx, category domain.Category, cooldownDays int, asOf time.Time, limit int) ([]domain.EligibilityRecord, error) {
	query := `SELECT e.beneficiary_id, e.qualified, e.qualified_at, m.last_matched
		FROM beneficiary_eligibility e
		LEFT JOIN LATERAL (
			SELECT MAX(t.created_at) AS last_matched FROM transactions t
			WHERE t.beneficiary_id = e.beneficiary_id AND t.category = $1 AND t.status <> 'FAILED'
		) m ON TRUE
		WHERE e.qualified AND (m.last_matched IS NULL OR m.last_matched <= $2)
		ORDER BY e.qualified_at, e.beneficiary_id
		LIMIT $3`

	cutoff := domain.CooldownCutoff(cooldownDays, asOf)
	rows, err := on(r.pool, tx).Query(ctx, query, category, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("find qualified beneficiaries: %w", err)
	}
	defer rows.Close()

	var records []domain.EligibilityRecord
	for rows.Next() {
		var (
			rec         domain.EligibilityRecord
			lastMatched *time.Time
		)
		if err := rows.Scan(&rec.BeneficiaryID, &rec.Qualified, &rec.QualifiedAt, &lastMatched); err != nil {
			return nil, fmt.Errorf("scan eligibility row: %w", err)
		}
		if lastMatched != nil {
			rec.LastMatched = map[domain.Category]time.Time{category: *lastMatched}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eligibility rows: %w", err)
	}
	return records, nil
}
