package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, donation_id, beneficiary_id, vendor_id, category, amount,
	recipient_hash, transfer_reference, status, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository. The table is
// append-only; UpdateTransferResult is the only mutation.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// createTransactionQuery evaluates both write guards against the committed
// ledger and inserts only when both hold, in one statement.
//
// $2 donation_id (NULL for reserve disbursements skips conservation)
// $3 beneficiary_id  $5 category  $6 amount  $12 cooldown cutoff
const createTransactionQuery = `WITH guard AS (
	SELECT
		($2::uuid IS NULL OR
			(SELECT d.amount FROM donations d WHERE d.id = $2::uuid) >=
			(SELECT COALESCE(SUM(t.amount), 0) FROM transactions t WHERE t.donation_id = $2::uuid) + $6
		) AS conserves,
		NOT EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.beneficiary_id = $3::uuid AND t.category = $5 AND t.status <> 'FAILED' AND t.created_at > $12
		) AS cooled
), ins AS (
	INSERT INTO transactions (` + transactionColumns + `)
	SELECT $1, $2::uuid, $3::uuid, $4, $5, $6, $7, $8, $9, $10, $11 FROM guard WHERE conserves AND cooled
	RETURNING 1
)
SELECT guard.conserves, guard.cooled, (SELECT COUNT(*) FROM ins) FROM guard`

// Create appends a transaction within a database transaction. The caller
// holds the category lock, so the guards cannot race another writer.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction, cooldownCutoff time.Time) error {
	var (
		conserves, cooled bool
		inserted          int64
	)
	err := tx.QueryRow(ctx, createTransactionQuery,
		t.ID, t.DonationID, t.BeneficiaryID, t.VendorID, t.Category, t.Amount,
		t.RecipientHash, t.TransferReference, t.Status, t.CreatedAt, t.UpdatedAt,
		cooldownCutoff,
	).Scan(&conserves, &cooled, &inserted)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	switch {
	case !conserves:
		return fmt.Errorf("donation %s: %w", t.DonationID, domain.ErrConservationViolation)
	case !cooled:
		return domain.ErrCooldownConflict
	case inserted != 1:
		return fmt.Errorf("insert transaction: %d rows inserted", inserted)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// UpdateTransferResult records a transfer outcome. Only PENDING rows move;
// an existing transfer reference is never cleared.
func (r *TransactionRepo) UpdateTransferResult(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, reference *string) error {
	query := `UPDATE transactions
		SET status = $1, transfer_reference = COALESCE($2, transfer_reference), updated_at = NOW()
		WHERE id = $3 AND status = 'PENDING'`

	tag, err := r.pool.Exec(ctx, query, status, reference, id)
	if err != nil {
		return fmt.Errorf("update transfer result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending transaction not found: %s", id)
	}
	return nil
}

// CountByDonation counts transactions created from a donation.
func (r *TransactionRepo) CountByDonation(ctx context.Context, tx pgx.Tx, donationID uuid.UUID) (int64, error) {
	var n int64
	err := on(r.pool, tx).QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE donation_id = $1`, donationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count donation transactions: %w", err)
	}
	return n, nil
}

// List fetches public ledger entries with filtering and pagination, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	where, args := ledgerWhere(params.Filter)

	countQuery := `SELECT COUNT(*) FROM transactions t JOIN vendors v ON v.id = t.vendor_id ` + where
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	argIdx := len(args) + 1
	dataQuery := fmt.Sprintf(`SELECT t.id, t.created_at, t.category, t.amount, v.name, t.status, t.recipient_hash
		FROM transactions t JOIN vendors v ON v.id = t.vendor_id %s
		ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Category, &e.Amount, &e.VendorName, &e.Status, &e.RecipientHash); err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, total, nil
}

// GetStats aggregates the filtered ledger by category and status.
func (r *TransactionRepo) GetStats(ctx context.Context, filter domain.LedgerFilter) (*domain.LedgerStats, error) {
	where, args := ledgerWhere(filter)
	query := `SELECT t.category, t.status, COUNT(*), COALESCE(SUM(t.amount), 0)
		FROM transactions t JOIN vendors v ON v.id = t.vendor_id ` + where + `
		GROUP BY t.category, t.status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	stats := domain.NewLedgerStats()
	for rows.Next() {
		var (
			category      domain.Category
			status        domain.TransactionStatus
			count, amount int64
		)
		if err := rows.Scan(&category, &status, &count, &amount); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Add(category, status, count, amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}
	return stats, nil
}

// ListPendingRemediation returns rows still PENDING that were created at or
// before olderThan, oldest first.
func (r *TransactionRepo) ListPendingRemediation(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE status = 'PENDING' AND created_at <= $1
		ORDER BY created_at, id LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// ledgerWhere builds the shared WHERE clause. Returns "" with no args when
// the filter is empty.
func ledgerWhere(f domain.LedgerFilter) (string, []any) {
	var conditions []string
	var args []any
	argIdx := 1

	if f.Category != nil {
		conditions = append(conditions, fmt.Sprintf("t.category = $%d", argIdx))
		args = append(args, *f.Category)
		argIdx++
	}
	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.Vendor != "" {
		conditions = append(conditions, fmt.Sprintf(`v.name ILIKE $%d ESCAPE '\'`, argIdx))
		args = append(args, "%"+escapeLike(f.Vendor)+"%")
		argIdx++
	}
	if f.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at >= $%d", argIdx))
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at < $%d", argIdx))
		args = append(args, *f.To)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.DonationID, &t.BeneficiaryID, &t.VendorID, &t.Category, &t.Amount,
		&t.RecipientHash, &t.TransferReference, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
