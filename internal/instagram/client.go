// Package instagram implements the Graph API client used to connect
// business accounts and deliver automated replies.
package instagram

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Instagram Graph API.
type Client struct {
	graphURL   string
	appID      string
	appSecret  string
	httpClient *http.Client
}

// NewClient creates a Graph API client with a bounded request timeout.
func NewClient(graphURL, appID, appSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		graphURL:   strings.TrimSuffix(graphURL, "/"),
		appID:      appID,
		appSecret:  appSecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("graph api: %s: %s", resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("graph api: unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ExchangeCode swaps an OAuth authorization code for an access token
// and the connected account identity.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	const op = "instagram.ExchangeCode"
	form := url.Values{}
	form.Set("client_id", c.appID)
	form.Set("client_secret", c.appSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.graphURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.do(req, &token); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &token, nil
}

// GetAccount fetches the id and username of the account the token
// belongs to.
func (c *Client) GetAccount(ctx context.Context, accessToken string) (*Account, error) {
	const op = "instagram.GetAccount"
	u := c.graphURL + "/me?fields=id,username&access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var acc Account
	if err := c.do(req, &acc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &acc, nil
}

// SendReply delivers a message (optionally with buttons) to the given
// recipient on behalf of the connected account.
func (c *Client) SendReply(ctx context.Context, accessToken string, msg SendMessageRequest) error {
	const op = "instagram.SendReply"
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u := c.graphURL + "/me/messages?access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyWebhookSignature checks the X-Hub-Signature-256 header
// ("sha256=<hex hmac>") against the raw body.
func VerifyWebhookSignature(body []byte, header, appSecret string) bool {
	sig, found := strings.CutPrefix(header, "sha256=")
	if !found {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
