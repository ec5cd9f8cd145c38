// Package billing wraps the hosted payment provider used for plan upgrades.
// The server never touches card data: it creates hosted checkout and billing
// portal sessions and redirects the browser there.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no payment provider is set up.
var ErrNotConfigured = errors.New("billing is not configured")

// Client talks to the payment provider's session API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient creates a billing client. Empty credentials produce a client
// whose calls fail with ErrNotConfigured.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

// Configured reports whether billing operations can be made.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type sessionResponse struct {
	URL string `json:"url"`
}

func (c *Client) createSession(ctx context.Context, path string, payload map[string]string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("billing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("billing API returned status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("failed to decode billing response: %w", err)
	}
	if session.URL == "" {
		return "", errors.New("billing API returned no session url")
	}
	return session.URL, nil
}

// CheckoutURL creates a hosted checkout session for upgrading a company to
// the given plan tier and returns the redirect URL.
func (c *Client) CheckoutURL(ctx context.Context, companyID, planTier string) (string, error) {
	url, err := c.createSession(ctx, "/checkout/sessions", map[string]string{
		"company_id": companyID,
		"plan_tier":  planTier,
	})
	if err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{
		"company_id": companyID,
		"plan_tier":  planTier,
	}).Info("Created checkout session")
	return url, nil
}

// PortalURL creates a hosted billing portal session where a company manages
// its existing subscription.
func (c *Client) PortalURL(ctx context.Context, companyID string) (string, error) {
	return c.createSession(ctx, "/portal/sessions", map[string]string{
		"company_id": companyID,
	})
}
