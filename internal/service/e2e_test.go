package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aid-ledger/internal/adapter/http/handler"
	"aid-ledger/internal/adapter/payout"
	"aid-ledger/internal/adapter/storage/memory"
	redisStore "aid-ledger/internal/adapter/storage/redis"
	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	e2eWebhookSecret = "whsec_e2e"
	e2eJWTSecret     = "jwt-e2e-secret"
	e2eAESKey        = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

// e2eEnv wires the full stack over the memory store, miniredis and a fake
// payout provider.
type e2eEnv struct {
	t      *testing.T
	store  *memory.Store
	router *gin.Engine
	engine *DistributionServiceImpl
	sigSvc *HMACSignatureService
	enc    *AESEncryptionService
	token  string

	payoutCalls atomic.Int32
	payoutFn    func(call int32, w http.ResponseWriter, r *http.Request)
}

func newE2E(t *testing.T) *e2eEnv {
	t.Helper()
	env := &e2eEnv{t: t}
	log := zerolog.Nop()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := env.payoutCalls.Add(1)
		if env.payoutFn != nil {
			env.payoutFn(call, w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"transfer_reference": "tr_" + r.Header.Get("Idempotency-Key"),
			"status":             "succeeded",
		})
	}))
	t.Cleanup(provider.Close)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	enc, err := NewAESEncryptionService(e2eAESKey)
	require.NoError(t, err)
	hasher, err := NewBLAKE3RecipientHasher("recipient-secret")
	require.NoError(t, err)
	selector, err := NewVendorSelector("round_robin")
	require.NoError(t, err)
	amounts, err := ParseStandardAmounts(map[string]string{"housing": "150", "transport": "45", "tech": "100"})
	require.NoError(t, err)

	store := memory.NewStore()
	donationRepo := memory.NewDonationRepo(store)
	txRepo := memory.NewTransactionRepo(store)

	engine := NewDistributionService(
		donationRepo,
		memory.NewVendorRepo(store),
		memory.NewEligibilityRepo(store),
		txRepo,
		store,
		selector,
		hasher,
		enc,
		payout.NewClient(provider.URL, "pk_test", &http.Client{}, log),
		DistributionSettings{
			StandardAmounts: amounts,
			BatchSize:       20,
			CooldownDays:    domain.DefaultCooldownDays,
			TransferTimeout: 200 * time.Millisecond,
		},
		log,
	)
	reconciler := NewReconcilerService(
		donationRepo,
		memory.NewProcessedEventRepo(store),
		txRepo,
		store,
		redisStore.NewEventCache(rdb),
		NewSyncTrigger(engine, log),
		time.Hour,
		log,
	)
	tokenSvc := NewJWTTokenService(e2eJWTSecret, time.Hour, "aid-ledger")
	token, _, err := tokenSvc.Generate("ops-e2e")
	require.NoError(t, err)

	env.store = store
	env.engine = engine
	env.enc = enc
	env.sigSvc = NewHMACSignatureService()
	env.token = token
	env.router = handler.SetupRouter(handler.RouterDeps{
		ReconcilerSvc:   reconciler,
		DistributionSvc: engine,
		DonationSvc:     NewDonationService(donationRepo, log),
		LedgerSvc: NewLedgerService(txRepo, redisStore.NewStatsCache(rdb), LedgerSettings{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			StatsCacheTTL:   0,
			ExportBatchSize: 4,
		}, log),
		SigSvc:           env.sigSvc,
		TokenSvc:         tokenSvc,
		WebhookSecret:    e2eWebhookSecret,
		WebhookTolerance: 5 * time.Minute,
		RateLimitStore:   redisStore.NewRateLimitStore(rdb),
		HealthCheckers:   []ports.HealthChecker{store, redisStore.NewHealthCheck(rdb)},
		Logger:           log,
	})
	gin.SetMode(gin.TestMode)
	return env
}

func (e *e2eEnv) addVendors(category domain.Category, n int) {
	e.t.Helper()
	for i := 0; i < n; i++ {
		dest, err := e.enc.Encrypt(fmt.Sprintf("acct_%s_%d", category, i))
		require.NoError(e.t, err)
		e.store.AddVendor(domain.Vendor{
			ID:                   uuid.New(),
			Name:                 fmt.Sprintf("%s Vendor %d", category, i),
			Category:             category,
			Verified:             true,
			PayoutDestinationEnc: dest,
		})
	}
}

func (e *e2eEnv) addBeneficiaries(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	base := time.Now().Add(-365 * 24 * time.Hour)
	for i := range ids {
		ids[i] = uuid.New()
		e.store.AddEligibility(domain.EligibilityRecord{
			BeneficiaryID: ids[i],
			Qualified:     true,
			QualifiedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	return ids
}

func (e *e2eEnv) do(method, target string, body []byte, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	e.t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (e *e2eEnv) operator(method, target string, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	return e.do(method, target, body, map[string]string{"Authorization": "Bearer " + e.token})
}

func (e *e2eEnv) createDonation(amount string, category, ref string) uuid.UUID {
	e.t.Helper()
	body, _ := json.Marshal(map[string]string{"amount": amount, "category": category, "external_payment_reference": ref})
	w, resp := e.operator(http.MethodPost, "/api/v1/donations", body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return uuid.MustParse(resp["data"].(map[string]interface{})["id"].(string))
}

func (e *e2eEnv) postEvent(eventID, eventType, ref string) (*httptest.ResponseRecorder, map[string]interface{}) {
	e.t.Helper()
	body, _ := json.Marshal(map[string]string{"event_id": eventID, "type": eventType, "external_payment_reference": ref})
	ts := time.Now().Unix()
	sig := e.sigSvc.Sign(e2eWebhookSecret, e.sigSvc.BuildWebhookPayload(ts, string(body)))
	return e.do(http.MethodPost, "/webhooks/payments", body, map[string]string{
		"X-Webhook-Signature": "sha256=" + sig,
		"X-Webhook-Timestamp": strconv.FormatInt(ts, 10),
	})
}

func (e *e2eEnv) sendEvent(eventID, eventType, ref string) string {
	e.t.Helper()
	w, resp := e.postEvent(eventID, eventType, ref)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return resp["data"].(map[string]interface{})["outcome"].(string)
}

func (e *e2eEnv) ledger(query string) map[string]interface{} {
	e.t.Helper()
	w, resp := e.do(http.MethodGet, "/ledger?"+query, nil, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return resp["data"].(map[string]interface{})
}

func (e *e2eEnv) stats(query string) map[string]interface{} {
	e.t.Helper()
	w, resp := e.do(http.MethodGet, "/ledger/stats?"+query, nil, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return resp["data"].(map[string]interface{})
}

func (e *e2eEnv) donationStatus(id uuid.UUID) map[string]interface{} {
	e.t.Helper()
	w, resp := e.operator(http.MethodGet, "/api/v1/donations/"+id.String(), nil)
	require.Equal(e.t, http.StatusOK, w.Code)
	return resp["data"].(map[string]interface{})
}

func TestE2E_DonationSplitsIntoStandardAmounts(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTransport, 3)
	env.addBeneficiaries(20)

	env.createDonation("500", "transport", "pi_500")
	assert.Equal(t, "applied", env.sendEvent("evt_500", "succeeded", "pi_500"))

	page := env.ledger("category=transport&limit=100")
	assert.Equal(t, float64(11), page["total"])
	txns := page["transactions"].([]interface{})
	require.Len(t, txns, 11)
	vendors := make(map[string]int)
	for _, raw := range txns {
		row := raw.(map[string]interface{})
		assert.Equal(t, "45.00", row["amount"])
		assert.Equal(t, "CLEARED", row["status"])
		assert.Len(t, row["recipient_hash"], 64)
		assert.NotContains(t, row, "beneficiary_id")
		vendors[row["vendor"].(string)]++
	}
	assert.Len(t, vendors, 3, "round robin spreads across every vendor")

	stats := env.stats("category=TRANSPORT")
	assert.Equal(t, "495.00", stats["total_amount"])
	assert.Equal(t, float64(11), stats["count"])
	assert.Equal(t, int32(11), env.payoutCalls.Load())
}

func TestE2E_RedeliveredEventAppliesOnce(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTech, 1)
	env.addBeneficiaries(5)
	id := env.createDonation("200", "tech", "pi_dup")

	assert.Equal(t, "applied", env.sendEvent("evt_dup", "succeeded", "pi_dup"))
	assert.Equal(t, "duplicate", env.sendEvent("evt_dup", "succeeded", "pi_dup"))

	assert.Equal(t, "SUCCEEDED", env.donationStatus(id)["status"])
	assert.Equal(t, float64(2), env.ledger("")["total"])
	assert.Equal(t, int32(2), env.payoutCalls.Load(), "distribution ran once")

	// A different event id for the same transition is ignored, not re-applied.
	assert.Equal(t, "ignored", env.sendEvent("evt_dup_2", "succeeded", "pi_dup"))
	assert.Equal(t, float64(2), env.ledger("")["total"])
}

func TestE2E_ConcurrentRedeliveriesApplyOnce(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTransport, 2)
	env.addBeneficiaries(10)
	env.createDonation("90", "transport", "pi_race")

	const deliveries = 10
	outcomes := make([]string, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = env.sendEvent("evt_race", "succeeded", "pi_race")
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, o := range outcomes {
		if o == "applied" {
			applied++
		} else {
			assert.Equal(t, "duplicate", o)
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, float64(2), env.ledger("")["total"])
}

func TestE2E_NoVendorsLeavesCapacityUnused(t *testing.T) {
	env := newE2E(t)
	env.addBeneficiaries(3)
	id := env.createDonation("150", "housing", "pi_housing")

	assert.Equal(t, "applied", env.sendEvent("evt_housing", "succeeded", "pi_housing"))

	d := env.donationStatus(id)
	assert.Equal(t, "SUCCEEDED", d["status"])
	assert.NotNil(t, d["distribution_started_at"])
	assert.Equal(t, float64(0), env.ledger("category=housing")["total"])
	assert.Equal(t, int32(0), env.payoutCalls.Load())

	// The claim is spent; a manual rerun is refused.
	w, resp := env.operator(http.MethodPost, "/api/v1/ops/donations/"+id.String()+"/distribute", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DST_002", resp["error_code"])
}

func TestE2E_CooldownExcludesRecentMatch(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTransport, 1)
	env.addBeneficiaries(1)

	today := time.Now().UTC()
	run := func(at time.Time, ref string) float64 {
		env.engine.now = func() time.Time { return at }
		env.createDonation("45", "transport", ref)
		require.Equal(t, "applied", env.sendEvent("evt_"+ref, "succeeded", ref))
		return env.ledger("category=transport")["total"].(float64)
	}

	assert.Equal(t, float64(1), run(today.AddDate(0, 0, -10), "pi_day0"))
	assert.Equal(t, float64(1), run(today, "pi_day10"), "matched 10 days ago, still cooling down")
	assert.Equal(t, float64(2), run(today.AddDate(0, 0, 21), "pi_day31"), "eligible again on day 31")
}

func TestE2E_TransferTimeoutLeavesRowPending(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTransport, 1)
	env.addBeneficiaries(3)
	env.payoutFn = func(call int32, w http.ResponseWriter, r *http.Request) {
		if call == 2 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"transfer_reference": fmt.Sprintf("tr_%d", call),
			"status":             "succeeded",
		})
	}

	env.createDonation("135", "transport", "pi_timeout")
	require.Equal(t, "applied", env.sendEvent("evt_timeout", "succeeded", "pi_timeout"))

	stats := env.stats("")
	byStatus := stats["by_status"].(map[string]interface{})
	assert.Equal(t, float64(2), byStatus["CLEARED"].(map[string]interface{})["count"])
	assert.Equal(t, float64(1), byStatus["PENDING"].(map[string]interface{})["count"])
	assert.Equal(t, "45.00", byStatus["PENDING"].(map[string]interface{})["amount"])

	w, resp := env.operator(http.MethodGet, "/api/v1/ops/remediation?older_than=0s", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := resp["data"].(map[string]interface{})["transactions"].([]interface{})
	require.Len(t, pending, 1)
	row := pending[0].(map[string]interface{})
	assert.Equal(t, "PENDING", row["status"])
	assert.NotContains(t, row, "transfer_reference")
}

func TestE2E_UnknownReferenceCanApplyLater(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTech, 1)
	env.addBeneficiaries(1)

	assert.Equal(t, "unknown_reference", env.sendEvent("evt_early", "succeeded", "pi_late"))

	id := env.createDonation("100", "tech", "pi_late")
	assert.Equal(t, "applied", env.sendEvent("evt_early", "succeeded", "pi_late"))
	assert.Equal(t, "SUCCEEDED", env.donationStatus(id)["status"])
}

func TestE2E_RefundAfterDisbursementFlagsReconciliation(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTech, 1)
	env.addBeneficiaries(2)
	id := env.createDonation("200", "tech", "pi_refund")

	require.Equal(t, "applied", env.sendEvent("evt_paid", "succeeded", "pi_refund"))
	require.Equal(t, "applied", env.sendEvent("evt_refund", "refunded", "pi_refund"))

	d := env.donationStatus(id)
	assert.Equal(t, "REFUNDED", d["status"])
	assert.Equal(t, true, d["needs_reconciliation"])
	assert.Equal(t, float64(2), env.ledger("")["total"], "no clawback")

	w, resp := env.operator(http.MethodGet, "/api/v1/ops/reconciliation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestE2E_RefundBeforeSuccessIsRedeliverable(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTech, 1)
	env.addBeneficiaries(2)
	id := env.createDonation("200", "tech", "pi_ooo")

	w, resp := env.postEvent("evt_refund", "refunded", "pi_ooo")
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "EVT_002", resp["error_code"])
	assert.Equal(t, "PENDING", env.donationStatus(id)["status"])

	require.Equal(t, "applied", env.sendEvent("evt_paid", "succeeded", "pi_ooo"))
	require.Equal(t, "applied", env.sendEvent("evt_refund", "refunded", "pi_ooo"))

	d := env.donationStatus(id)
	assert.Equal(t, "REFUNDED", d["status"])
	assert.Equal(t, true, d["needs_reconciliation"])
	assert.Equal(t, "duplicate", env.sendEvent("evt_refund", "refunded", "pi_ooo"))
}

func TestE2E_UndistributedDonationListedUntilDistributed(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTransport, 1)
	env.addBeneficiaries(2)
	id := env.createDonation("90", "transport", "pi_lost")

	// SUCCEEDED committed without the distribution trigger ever running.
	ctx := context.Background()
	tx, err := env.store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, memory.NewDonationRepo(env.store).UpdateStatus(ctx, tx, id, domain.DonationStatusSucceeded, false))
	require.NoError(t, tx.Commit(ctx))

	w, resp := env.operator(http.MethodGet, "/api/v1/ops/undistributed?older_than=0s", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := resp["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["total"])
	assert.Equal(t, id.String(), data["donations"].([]interface{})[0].(map[string]interface{})["id"])

	w, _ = env.operator(http.MethodPost, "/api/v1/ops/donations/"+id.String()+"/distribute", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(2), env.ledger("")["total"])

	w, resp = env.operator(http.MethodGet, "/api/v1/ops/undistributed?older_than=0s", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["data"].(map[string]interface{})["total"])
}

func TestE2E_BadSignatureRejected(t *testing.T) {
	env := newE2E(t)
	id := env.createDonation("45", "transport", "pi_sig")

	body := []byte(`{"event_id":"evt_sig","type":"succeeded","external_payment_reference":"pi_sig"}`)
	w, resp := env.do(http.MethodPost, "/webhooks/payments", body, map[string]string{
		"X-Webhook-Signature": "deadbeef",
		"X-Webhook-Timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SEC_001", resp["error_code"])
	assert.Equal(t, "PENDING", env.donationStatus(id)["status"])
}

func TestE2E_ExportAndHealth(t *testing.T) {
	env := newE2E(t)
	env.addVendors(domain.CategoryTransport, 1)
	env.addBeneficiaries(5)
	env.createDonation("225", "transport", "pi_csv")
	require.Equal(t, "applied", env.sendEvent("evt_csv", "succeeded", "pi_csv"))

	w, _ := env.do(http.MethodGet, "/ledger/export?category=transport", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lines := bytes.Split(bytes.TrimSpace(w.Body.Bytes()), []byte("\n"))
	require.Len(t, lines, 6, "header plus five rows across two export pages")
	assert.Equal(t, "id,timestamp,category,amount,vendor,status,recipientHash", string(lines[0]))
	assert.Contains(t, string(lines[1]), ",TRANSPORT,45.00,TRANSPORT Vendor 0,CLEARED,")

	w, resp := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
}
