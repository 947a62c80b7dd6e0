package postgres

import (
	"context"
	"testing"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestTransaction() *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	donationID, beneficiaryID := uuid.New(), uuid.New()
	return &domain.Transaction{
		ID:            uuid.New(),
		DonationID:    &donationID,
		BeneficiaryID: &beneficiaryID,
		VendorID:      uuid.New(),
		Category:      domain.CategoryTransport,
		Amount:        4500,
		RecipientHash: "9f2c",
		Status:        domain.TransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func txColumns() []string {
	return []string{"id", "donation_id", "beneficiary_id", "vendor_id", "category", "amount",
		"recipient_hash", "transfer_reference", "status", "created_at", "updated_at"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txColumns()).AddRow(
		t.ID, t.DonationID, t.BeneficiaryID, t.VendorID, t.Category, t.Amount,
		t.RecipientHash, t.TransferReference, t.Status, t.CreatedAt, t.UpdatedAt,
	)
}

func guardRow(conserves, cooled bool, inserted int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"conserves", "cooled", "count"}).AddRow(conserves, cooled, inserted)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()
	cutoff := txn.CreatedAt.AddDate(0, 0, -30)

	mock.ExpectBegin()
	mock.ExpectQuery("WITH guard AS .+ INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.DonationID, txn.BeneficiaryID, txn.VendorID, txn.Category, txn.Amount,
			txn.RecipientHash, txn.TransferReference, txn.Status, txn.CreatedAt, txn.UpdatedAt,
			cutoff,
		).
		WillReturnRows(guardRow(true, true, 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn, cutoff)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_GuardFailures(t *testing.T) {
	tests := []struct {
		name      string
		conserves bool
		cooled    bool
		want      error
	}{
		{"over donation amount", false, true, domain.ErrConservationViolation},
		{"conservation checked first", false, false, domain.ErrConservationViolation},
		{"beneficiary in cooldown", true, false, domain.ErrCooldownConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewTransactionRepo(mock)

			mock.ExpectBegin()
			mock.ExpectQuery("WITH guard AS").
				WillReturnRows(guardRow(tt.conserves, tt.cooled, 0))

			dbTx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			err = repo.Create(context.Background(), dbTx, newTestTransaction(), time.Now())
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()
	txn.TransferReference = strPtr("tr_123")

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(txRow(txn))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.Equal(t, *txn.DonationID, *result.DonationID)
	assert.Equal(t, "tr_123", *result.TransferReference)
	assert.Equal(t, txn.Amount, result.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateTransferResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txID := uuid.New()
	ref := strPtr("tr_456")

	mock.ExpectExec("UPDATE transactions .+ WHERE id = .+ AND status = 'PENDING'").
		WithArgs(domain.TransactionStatusCleared, ref, txID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateTransferResult(context.Background(), txID, domain.TransactionStatusCleared, ref)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateTransferResult_NotPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectExec("UPDATE transactions").
		WithArgs(domain.TransactionStatusFailed, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateTransferResult(context.Background(), uuid.New(), domain.TransactionStatusFailed, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CountByDonation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	donationID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(donationID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(11)))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	n, err := repo.CountByDonation(context.Background(), dbTx, donationID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	category := domain.CategoryTransport
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	params := ports.LedgerListParams{
		Filter: domain.LedgerFilter{Category: &category, Vendor: "100%_bus", From: &from, To: &to},
		Limit:  20,
		Offset: 40,
	}

	mock.ExpectQuery("SELECT COUNT.+ WHERE t.category = .+ AND v.name ILIKE .+ AND t.created_at >= .+ AND t.created_at <").
		WithArgs(category, `%100\%\_bus%`, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(41)))

	entryID := uuid.New()
	mock.ExpectQuery("SELECT t.id, .+ ORDER BY t.created_at DESC, t.id DESC LIMIT").
		WithArgs(category, `%100\%\_bus%`, from, to, 20, 40).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "category", "amount", "name", "status", "recipient_hash"}).
			AddRow(entryID, from.Add(time.Hour), category, int64(4500), "100%_bus", domain.TransactionStatusCleared, "9f2c"))

	entries, total, err := repo.List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int64(41), total)
	require.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)
	assert.Equal(t, "100%_bus", entries[0].VendorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_NoFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs().
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("SELECT t.id").
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "category", "amount", "name", "status", "recipient_hash"}))

	entries, total, err := repo.List(context.Background(), ports.LedgerListParams{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	status := domain.TransactionStatusCleared

	mock.ExpectQuery("SELECT t.category, t.status, COUNT.+ WHERE t.status = .+ GROUP BY").
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"category", "status", "count", "sum"}).
			AddRow(domain.CategoryTransport, status, int64(11), int64(49500)).
			AddRow(domain.CategoryHousing, status, int64(2), int64(30000)))

	stats, err := repo.GetStats(context.Background(), domain.LedgerFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(13), stats.Count)
	assert.Equal(t, int64(79500), stats.TotalAmount)
	assert.Equal(t, int64(49500), stats.ByCategory[domain.CategoryTransport].Amount)
	assert.Equal(t, int64(0), stats.ByCategory[domain.CategoryTech].Count)
	assert.Equal(t, int64(13), stats.ByStatus[domain.TransactionStatusCleared].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListPendingRemediation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()
	cutoff := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM transactions\\s+WHERE status = 'PENDING' AND created_at <=").
		WithArgs(cutoff, 50).
		WillReturnRows(txRow(txn))

	txns, err := repo.ListPendingRemediation(context.Background(), cutoff, 50)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].NeedsRemediation())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `metro`, escapeLike("metro"))
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}
