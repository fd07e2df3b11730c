// Package billing implements the HTTP client for the billing provider:
// subscription create, deferred cancel, immediate cancel, and webhook
// signature verification.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the billing provider REST API. Requests are
// form-encoded and authenticated with the secret key. Calls are not
// retried; a failure is surfaced to the caller as-is.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a provider client with a bounded request timeout.
func NewClient(secretKey, apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("provider: %s: %s", resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("provider: unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateSubscription starts a subscription for the customer on the
// given price. The user uid travels in metadata so webhook events can be
// routed back to the local account.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID, userUID string) (*Subscription, error) {
	const op = "billing.CreateSubscription"
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("items[0][price]", priceID)
	form.Set("metadata[user_uid]", userUID)

	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions", form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CancelAtPeriodEnd flags the subscription for cancellation at the end
// of the current billing period. The subscription stays active until
// then.
func (c *Client) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error) {
	const op = "billing.CancelAtPeriodEnd"
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")

	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions/"+subscriptionID, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CancelNow cancels the subscription immediately.
func (c *Client) CancelNow(ctx context.Context, subscriptionID string) (*Subscription, error) {
	const op = "billing.CancelNow"
	req, err := c.newRequest(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}
