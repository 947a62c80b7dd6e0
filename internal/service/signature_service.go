package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// signaturePrefix is the optional scheme tag providers put in front of the
// hex digest.
const signaturePrefix = "sha256="

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of payload using secretKey.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against HMAC-SHA256(secretKey, payload) in
// constant time. A "sha256=" prefix and upper-case hex are accepted.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	got := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(signature), signaturePrefix))
	return hmac.Equal([]byte(s.Sign(secretKey, payload)), []byte(got))
}

// BuildWebhookPayload constructs the signed string: "<timestamp>.<body>".
func (s *HMACSignatureService) BuildWebhookPayload(timestamp int64, body string) string {
	return strconv.FormatInt(timestamp, 10) + "." + body
}
