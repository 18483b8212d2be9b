// Package payment consumes the external payment-verification service. Only
// the paid/unpaid verdict crosses this boundary; gateway internals stay on
// the other side of it.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Verdict is the outcome of a payment verification.
type Verdict string

const (
	VerdictPaid   Verdict = "paid"
	VerdictUnpaid Verdict = "unpaid"
)

// Verifier checks whether a payment reference has been settled.
type Verifier interface {
	Verify(ctx context.Context, method, reference string) (Verdict, error)
}

// GatewayVerifier verifies payment references against an HTTP gateway.
type GatewayVerifier struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewGatewayVerifier creates an HTTP-backed payment verifier.
func NewGatewayVerifier(baseURL string, timeout time.Duration, logger zerolog.Logger) *GatewayVerifier {
	return &GatewayVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "payment-verifier").Logger(),
	}
}

type verifyRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

type verifyResponse struct {
	Status string `json:"status"`
}

// Verify asks the gateway whether the payment completed. Any transport or
// decoding failure is returned as an error; an explicit non-paid status is a
// VerdictUnpaid, not an error.
func (v *GatewayVerifier) Verify(ctx context.Context, method, reference string) (Verdict, error) {
	body, err := json.Marshal(verifyRequest{Method: method, Reference: reference})
	if err != nil {
		return "", fmt.Errorf("failed to encode verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return "", fmt.Errorf("failed to decode verification response: %w", err)
	}

	if vr.Status == string(VerdictPaid) {
		return VerdictPaid, nil
	}

	v.logger.Warn().
		Str("method", method).
		Str("status", vr.Status).
		Msg("payment not completed")

	return VerdictUnpaid, nil
}
