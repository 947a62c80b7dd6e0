package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var distributionNow = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

type distributionTestDeps struct {
	svc             *DistributionServiceImpl
	donationRepo    *mocks.MockDonationRepository
	vendorRepo      *mocks.MockVendorRepository
	eligibilityRepo *mocks.MockEligibilityRepository
	txRepo          *mocks.MockTransactionRepository
	transactor      *mocks.MockDBTransactor
	hasher          *mocks.MockRecipientHasher
	encSvc          *mocks.MockEncryptionService
	payout          *mocks.MockPayoutClient
	ctrl            *gomock.Controller
}

func testDistributionSettings(batchSize int) DistributionSettings {
	return DistributionSettings{
		StandardAmounts: map[domain.Category]int64{
			domain.CategoryHousing:   15000,
			domain.CategoryTransport: 4500,
			domain.CategoryTech:      10000,
		},
		BatchSize:       batchSize,
		CooldownDays:    domain.DefaultCooldownDays,
		TransferTimeout: time.Second,
	}
}

func setupDistributionService(t *testing.T, settings DistributionSettings) *distributionTestDeps {
	ctrl := gomock.NewController(t)
	d := &distributionTestDeps{
		donationRepo:    mocks.NewMockDonationRepository(ctrl),
		vendorRepo:      mocks.NewMockVendorRepository(ctrl),
		eligibilityRepo: mocks.NewMockEligibilityRepository(ctrl),
		txRepo:          mocks.NewMockTransactionRepository(ctrl),
		transactor:      mocks.NewMockDBTransactor(ctrl),
		hasher:          mocks.NewMockRecipientHasher(ctrl),
		encSvc:          mocks.NewMockEncryptionService(ctrl),
		payout:          mocks.NewMockPayoutClient(ctrl),
		ctrl:            ctrl,
	}
	d.svc = NewDistributionService(
		d.donationRepo, d.vendorRepo, d.eligibilityRepo, d.txRepo, d.transactor,
		NewRoundRobinSelector(), d.hasher, d.encSvc, d.payout, settings, zerolog.Nop(),
	)
	d.svc.now = func() time.Time { return distributionNow }
	d.hasher.EXPECT().Hash(gomock.Any(), gomock.Any()).Return("ab12cd34", nil).AnyTimes()
	return d
}

func succeededDonation(amount int64, category domain.Category) *domain.Donation {
	return &domain.Donation{
		ID:                       uuid.New(),
		Amount:                   amount,
		Category:                 category,
		ExternalPaymentReference: "pi_" + uuid.NewString(),
		Status:                   domain.DonationStatusSucceeded,
	}
}

func candidates(n int) []domain.EligibilityRecord {
	out := make([]domain.EligibilityRecord, n)
	for i := range out {
		out[i] = domain.EligibilityRecord{
			BeneficiaryID: uuid.New(),
			Qualified:     true,
			QualifiedAt:   distributionNow.AddDate(0, 0, -100+i),
		}
	}
	return out
}

func verifiedVendors(n int, category domain.Category) []domain.Vendor {
	out := make([]domain.Vendor, n)
	for i := range out {
		out[i] = domain.Vendor{
			ID:                   uuid.New(),
			Name:                 "Vendor",
			Category:             category,
			Verified:             true,
			PayoutDestinationEnc: "enc_dest",
		}
	}
	return out
}

// expectAllocation wires the phase-one reads for a donation.
func (d *distributionTestDeps) expectAllocation(ctx context.Context, tx *mockTx, donation *domain.Donation, cands []domain.EligibilityRecord, vendors []domain.Vendor) {
	d.donationRepo.EXPECT().GetByID(ctx, donation.ID).Return(donation, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.transactor.EXPECT().LockCategory(ctx, tx, donation.Category).Return(nil)
	d.donationRepo.EXPECT().ClaimDistribution(ctx, tx, donation.ID, distributionNow).Return(nil)
	d.eligibilityRepo.EXPECT().
		FindQualifiedUnmatched(ctx, tx, donation.Category, domain.DefaultCooldownDays, distributionNow, d.svc.settings.BatchSize).
		Return(cands, nil)
	d.vendorRepo.EXPECT().FindVerifiedVendors(ctx, tx, donation.Category).Return(vendors, nil)
}

func (d *distributionTestDeps) expectTransfersSucceed(times int) {
	d.encSvc.EXPECT().Decrypt("enc_dest").Return("acct_vendor", nil).Times(times)
	d.payout.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
			return &ports.TransferResult{Reference: "tr_" + req.TransactionID.String(), Status: ports.TransferSucceeded}, nil
		}).Times(times)
	d.txRepo.EXPECT().UpdateTransferResult(gomock.Any(), gomock.Any(), domain.TransactionStatusCleared, gomock.Not(gomock.Nil())).
		Return(nil).Times(times)
}

func sumAmounts(txns []domain.Transaction) int64 {
	var total int64
	for _, t := range txns {
		total += t.Amount
	}
	return total
}

// ==================== Distribute Tests ====================

func TestDistributionService_Distribute_TransportScenario(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(20))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(50000, domain.CategoryTransport)

	d.expectAllocation(ctx, tx, donation, candidates(20), verifiedVendors(3, domain.CategoryTransport))
	cutoff := distributionNow.AddDate(0, 0, -30)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), cutoff).Return(nil).Times(11)
	d.expectTransfersSucceed(11)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, result, 11, "floor(500/45) = 11")
	assert.Equal(t, int64(49500), sumAmounts(result))
	assert.LessOrEqual(t, sumAmounts(result), donation.Amount)
	assert.True(t, tx.committed)

	for _, txn := range result {
		assert.Equal(t, int64(4500), txn.Amount)
		assert.Equal(t, domain.CategoryTransport, txn.Category)
		assert.Equal(t, domain.TransactionStatusCleared, txn.Status)
		require.NotNil(t, txn.TransferReference)
		assert.Equal(t, donation.ID, *txn.DonationID)
		assert.Equal(t, "ab12cd34", txn.RecipientHash)
	}
}

func TestDistributionService_Distribute_CapsAtBatchSize(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(50000, domain.CategoryTransport)

	d.expectAllocation(ctx, tx, donation, candidates(10), verifiedVendors(2, domain.CategoryTransport))
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(10)
	d.expectTransfersSucceed(10)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	assert.Len(t, result, 10)
}

func TestDistributionService_Distribute_FIFOOrder(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(30000, domain.CategoryHousing)
	cands := candidates(4)

	d.expectAllocation(ctx, tx, donation, cands, verifiedVendors(1, domain.CategoryHousing))
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.expectTransfersSucceed(2)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, cands[0].BeneficiaryID, *result[0].BeneficiaryID)
	assert.Equal(t, cands[1].BeneficiaryID, *result[1].BeneficiaryID)
}

func TestDistributionService_Distribute_NotFound(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	id := uuid.New()
	d.donationRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	result, err := d.svc.Distribute(context.Background(), id)
	assert.Nil(t, result)
	assertAppError(t, err, "DON_004")
}

func TestDistributionService_Distribute_NotSucceeded(t *testing.T) {
	for _, status := range []domain.DonationStatus{domain.DonationStatusPending, domain.DonationStatusFailed, domain.DonationStatusRefunded} {
		t.Run(string(status), func(t *testing.T) {
			d := setupDistributionService(t, testDistributionSettings(10))
			donation := succeededDonation(15000, domain.CategoryHousing)
			donation.Status = status
			d.donationRepo.EXPECT().GetByID(gomock.Any(), donation.ID).Return(donation, nil)

			_, err := d.svc.Distribute(context.Background(), donation.ID)
			assertAppError(t, err, "DST_001")
		})
	}
}

func TestDistributionService_Distribute_AlreadyClaimed(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(15000, domain.CategoryHousing)

	d.donationRepo.EXPECT().GetByID(ctx, donation.ID).Return(donation, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.transactor.EXPECT().LockCategory(ctx, tx, domain.CategoryHousing).Return(nil)
	d.donationRepo.EXPECT().ClaimDistribution(ctx, tx, donation.ID, distributionNow).Return(domain.ErrAlreadyDistributed)

	result, err := d.svc.Distribute(ctx, donation.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "DST_002")
	assert.False(t, tx.committed)
}

func TestDistributionService_Distribute_ZeroVendors(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(15000, domain.CategoryHousing)

	d.expectAllocation(ctx, tx, donation, candidates(5), nil)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.True(t, tx.committed, "claim is kept so the donation is not re-run")
}

func TestDistributionService_Distribute_IgnoresUnverifiedVendors(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(15000, domain.CategoryHousing)
	vendors := verifiedVendors(2, domain.CategoryHousing)
	vendors[0].Verified = false
	vendors[1].Category = domain.CategoryTech

	d.expectAllocation(ctx, tx, donation, candidates(1), vendors)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDistributionService_Distribute_AmountBelowStandard(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(9999, domain.CategoryTech)

	d.expectAllocation(ctx, tx, donation, candidates(3), verifiedVendors(1, domain.CategoryTech))

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDistributionService_Distribute_SkipsCooldownConflict(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(9000, domain.CategoryTransport)
	cands := candidates(3)

	d.expectAllocation(ctx, tx, donation, cands, verifiedVendors(1, domain.CategoryTransport))
	gomock.InOrder(
		d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(domain.ErrCooldownConflict),
		d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(2),
	)
	d.expectTransfersSucceed(2)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, cands[1].BeneficiaryID, *result[0].BeneficiaryID)
	assert.Equal(t, cands[2].BeneficiaryID, *result[1].BeneficiaryID)
}

func TestDistributionService_Distribute_ConservationViolationHalts(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(30000, domain.CategoryTech)

	d.expectAllocation(ctx, tx, donation, candidates(3), verifiedVendors(1, domain.CategoryTech))
	gomock.InOrder(
		d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil),
		d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(domain.ErrConservationViolation),
	)

	result, err := d.svc.Distribute(ctx, donation.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "DST_003")
	assert.ErrorIs(t, err, domain.ErrConservationViolation)
	assert.False(t, tx.committed)
}

func TestDistributionService_Distribute_BatchResilience(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(22500, domain.CategoryTransport)

	d.expectAllocation(ctx, tx, donation, candidates(5), verifiedVendors(2, domain.CategoryTransport))
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(5)
	d.encSvc.EXPECT().Decrypt("enc_dest").Return("acct_vendor", nil).Times(5)

	call := 0
	d.payout.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
			call++
			if call == 2 {
				return nil, errors.New("connection reset by peer")
			}
			return &ports.TransferResult{Reference: "tr_ok", Status: ports.TransferSucceeded}, nil
		}).Times(5)
	d.txRepo.EXPECT().UpdateTransferResult(gomock.Any(), gomock.Any(), domain.TransactionStatusCleared, gomock.Any()).
		Return(nil).Times(4)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, result, 5)

	assert.Equal(t, domain.TransactionStatusPending, result[1].Status)
	assert.Nil(t, result[1].TransferReference)
	assert.True(t, result[1].NeedsRemediation())
	for _, i := range []int{0, 2, 3, 4} {
		assert.Equal(t, domain.TransactionStatusCleared, result[i].Status, "candidate %d", i+1)
	}
}

func TestDistributionService_Distribute_ProviderStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		provider ports.TransferStatus
		want     domain.TransactionStatus
	}{
		{"succeeded clears", ports.TransferSucceeded, domain.TransactionStatusCleared},
		{"pending stays pending", ports.TransferPending, domain.TransactionStatusPending},
		{"failed fails", ports.TransferFailed, domain.TransactionStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupDistributionService(t, testDistributionSettings(10))
			ctx := context.Background()
			tx := &mockTx{}
			donation := succeededDonation(10000, domain.CategoryTech)

			d.expectAllocation(ctx, tx, donation, candidates(1), verifiedVendors(1, domain.CategoryTech))
			d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil)
			d.encSvc.EXPECT().Decrypt("enc_dest").Return("acct_vendor", nil)
			d.payout.EXPECT().Transfer(gomock.Any(), gomock.Any()).
				Return(&ports.TransferResult{Reference: "tr_1", Status: tt.provider}, nil)
			d.txRepo.EXPECT().UpdateTransferResult(gomock.Any(), gomock.Any(), tt.want, gomock.Any()).Return(nil)

			result, err := d.svc.Distribute(ctx, donation.ID)
			require.NoError(t, err)
			require.Len(t, result, 1)
			assert.Equal(t, tt.want, result[0].Status)
			require.NotNil(t, result[0].TransferReference)
			assert.Equal(t, "tr_1", *result[0].TransferReference)
		})
	}
}

func TestDistributionService_Distribute_TransferTimeout(t *testing.T) {
	settings := testDistributionSettings(10)
	settings.TransferTimeout = 20 * time.Millisecond
	d := setupDistributionService(t, settings)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(15000, domain.CategoryHousing)

	d.expectAllocation(ctx, tx, donation, candidates(1), verifiedVendors(1, domain.CategoryHousing))
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil)
	d.encSvc.EXPECT().Decrypt("enc_dest").Return("acct_vendor", nil)
	d.payout.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ ports.TransferRequest) (*ports.TransferResult, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			<-ctx.Done()
			return nil, ctx.Err()
		})

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, domain.TransactionStatusPending, result[0].Status)
	assert.Nil(t, result[0].TransferReference)
}

func TestDistributionService_Distribute_UnreadableDestination(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	donation := succeededDonation(15000, domain.CategoryHousing)

	d.expectAllocation(ctx, tx, donation, candidates(1), verifiedVendors(1, domain.CategoryHousing))
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil)
	d.encSvc.EXPECT().Decrypt("enc_dest").Return("", errors.New("cipher: message authentication failed"))

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].NeedsRemediation())
}

func TestDistributionService_Distribute_CallerCancelDoesNotAbortTransfers(t *testing.T) {
	d := setupDistributionService(t, testDistributionSettings(10))
	defer d.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	tx := &mockTx{}
	donation := succeededDonation(9000, domain.CategoryTransport)

	d.expectAllocation(ctx, tx, donation, candidates(2), verifiedVendors(1, domain.CategoryTransport))
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.encSvc.EXPECT().Decrypt("enc_dest").Return("acct_vendor", nil).Times(2)
	d.payout.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(tctx context.Context, _ ports.TransferRequest) (*ports.TransferResult, error) {
			cancel()
			if tctx.Err() != nil {
				return nil, tctx.Err()
			}
			return &ports.TransferResult{Reference: "tr_ok", Status: ports.TransferSucceeded}, nil
		}).Times(2)
	d.txRepo.EXPECT().UpdateTransferResult(gomock.Any(), gomock.Any(), domain.TransactionStatusCleared, gomock.Any()).
		Return(nil).Times(2)

	result, err := d.svc.Distribute(ctx, donation.ID)
	require.NoError(t, err)
	for _, txn := range result {
		assert.Equal(t, domain.TransactionStatusCleared, txn.Status)
	}
}

// ==================== ParseStandardAmounts Tests ====================

func TestParseStandardAmounts(t *testing.T) {
	got, err := ParseStandardAmounts(map[string]string{
		"housing":   "150.00",
		"transport": "45",
		"tech":      "100.5",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got[domain.CategoryHousing])
	assert.Equal(t, int64(4500), got[domain.CategoryTransport])
	assert.Equal(t, int64(10050), got[domain.CategoryTech])
}

func TestParseStandardAmounts_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
	}{
		{"missing category", map[string]string{"housing": "150", "transport": "45"}},
		{"unknown label", map[string]string{"housing": "150", "transport": "45", "tech": "100", "food": "10"}},
		{"bad amount", map[string]string{"housing": "15o", "transport": "45", "tech": "100"}},
		{"alias conflict", map[string]string{"housing": "150", "wellness": "120", "transport": "45", "tech": "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStandardAmounts(tt.raw)
			assert.Error(t, err)
		})
	}
}
