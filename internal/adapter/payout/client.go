// Package payout is the HTTP client for the payout provider that moves money
// to vendors.
package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aid-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type transferPayload struct {
	TransactionID string `json:"transaction_id"`
	Destination   string `json:"destination"`
	Amount        int64  `json:"amount"` // minor units
	Category      string `json:"category"`
	RecipientHash string `json:"recipient_hash"`
}

type transferResponse struct {
	TransferReference string `json:"transfer_reference"`
	Status            string `json:"status"`
}

// Client implements ports.PayoutClient. It never retries; the caller leaves
// the transaction PENDING on any error.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a payout client for the provider at baseURL.
func NewClient(baseURL, apiKey string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log,
	}
}

// Transfer asks the provider to pay req.Amount to req.Destination. The
// transaction id is sent as the idempotency key so a manual replay cannot
// pay twice.
func (c *Client) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	body, err := json.Marshal(transferPayload{
		TransactionID: req.TransactionID.String(),
		Destination:   req.Destination,
		Amount:        req.Amount,
		Category:      string(req.Category),
		RecipientHash: req.RecipientHash,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal transfer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transfer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.TransactionID.String())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("payout provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transfer response: %w", err)
	}

	status := ports.TransferStatus(strings.ToLower(out.Status))
	switch status {
	case ports.TransferSucceeded, ports.TransferPending, ports.TransferFailed:
	default:
		return nil, fmt.Errorf("unknown transfer status %q", out.Status)
	}
	// A cleared row must carry the provider's reference.
	out.TransferReference = strings.TrimSpace(out.TransferReference)
	if status == ports.TransferSucceeded && out.TransferReference == "" {
		return nil, fmt.Errorf("payout provider reported succeeded without a transfer reference")
	}

	c.log.Debug().
		Str("transaction_id", req.TransactionID.String()).
		Str("transfer_reference", out.TransferReference).
		Str("status", string(status)).
		Msg("payout provider responded")

	return &ports.TransferResult{Reference: out.TransferReference, Status: status}, nil
}
