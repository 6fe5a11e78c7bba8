package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"teamregistry/internal/domain"
)

// verifyResponse is the provider's answer for a checkout session lookup.
type verifyResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type httpVerifier struct {
	client  *http.Client
	baseURL string
}

// NewHTTPVerifier returns a PaymentVerifier that queries the provider's
// verification endpoint by opaque session ID. Every call is bounded by the
// given timeout; a transport error, non-200, or non-"paid" status all mean
// the session is not verified.
func NewHTTPVerifier(baseURL string, timeout time.Duration) domain.PaymentVerifier {
	return &httpVerifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (v *httpVerifier) VerifySession(ctx context.Context, sessionID, eventID, userID string) (bool, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("event_id", eventID)
	q.Set("user_id", userID)
	endpoint := v.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment provider returned status: %d", resp.StatusCode)
	}

	var data verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false, fmt.Errorf("failed to decode payment provider response: %w", err)
	}
	return data.Status == "paid", nil
}
