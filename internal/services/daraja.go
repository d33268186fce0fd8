package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wavelinknet/darajapay-gobackend/internal/config"
)

const (
	productionHost = "api.safaricom.co.ke"
	sandboxHost    = "sandbox.safaricom.co.ke"

	transactionType    = "CustomerPayBillOnline"
	defaultDescription = "Payment"

	tokenTimeout = 15 * time.Second
	pushTimeout  = 20 * time.Second
)

// DarajaClient talks to the Daraja OAuth and STK push endpoints.
type DarajaClient struct {
	tokenClient *http.Client
	pushClient  *http.Client
}

func NewDarajaClient() *DarajaClient {
	return &DarajaClient{
		tokenClient: &http.Client{Timeout: tokenTimeout},
		pushClient:  &http.Client{Timeout: pushTimeout},
	}
}

// normalizePhoneForDaraja rewrites a Kenyan phone number into the
// 2547XXXXXXXX form the gateway expects. A leading + and any separators are
// stripped before classification.
func normalizePhoneForDaraja(raw string) (string, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "07"):
		return "254" + digits[1:], nil
	case len(digits) == 9 && strings.HasPrefix(digits, "7"):
		return "254" + digits, nil
	case len(digits) == 12 && strings.HasPrefix(digits, "2547"):
		return digits, nil
	}
	return "", fmt.Errorf("%w: unsupported phone number format %q", ErrInvalidInput, raw)
}

// darajaTimestamp renders the fixed 14-digit YYYYMMDDHHMMSS form, always UTC.
func darajaTimestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// darajaPassword derives the push password: base64 of shortcode, passkey and
// timestamp concatenated in that order with no separators.
func darajaPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

// sandboxFallbackURL swaps the production hostname for the sandbox one. The
// second return is false when the URL does not point at production, in which
// case no retry is allowed.
func sandboxFallbackURL(oauthURL string) (string, bool) {
	if !strings.Contains(oauthURL, productionHost) {
		return "", false
	}
	return strings.Replace(oauthURL, productionHost, sandboxHost, 1), true
}

// FetchToken obtains an OAuth bearer token. When the configured URL points at
// the production host and the call fails for any reason, one retry is made
// against the sandbox host on the same path.
func (c *DarajaClient) FetchToken(ctx context.Context, creds *config.Credentials) (string, error) {
	token, err := c.fetchToken(ctx, creds.OAuthURL, creds.ConsumerKey, creds.ConsumerSecret)
	if err == nil {
		return token, nil
	}

	fallbackURL, ok := sandboxFallbackURL(creds.OAuthURL)
	if !ok {
		return "", err
	}
	log.Printf("daraja token fetch failed on production host, retrying against sandbox: %v", err)
	return c.fetchToken(ctx, fallbackURL, creds.ConsumerKey, creds.ConsumerSecret)
}

func (c *DarajaClient) fetchToken(ctx context.Context, url, key, secret string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("build daraja token request: %w", err)
	}
	req.SetBasicAuth(key, secret)

	resp, err := c.tokenClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("daraja token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("daraja token request failed with status %d: %s", resp.StatusCode, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(body, &tokenResp)
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("daraja token response missing access_token (status %d): %s", resp.StatusCode, body)
	}
	return tokenResp.AccessToken, nil
}

// PushResult carries whatever the gateway answered to a push submission. A
// non-2xx status is data here, not an error; only transport-level failures
// surface as errors.
type PushResult struct {
	Status int
	Body   map[string]interface{}
}

func (r *PushResult) Accepted() bool {
	return r.Status >= 200 && r.Status <= 299
}

// STKPush submits the push request with bearer auth.
func (c *DarajaClient) STKPush(ctx context.Context, creds *config.Credentials, token string, payload map[string]interface{}) (*PushResult, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal stk push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", creds.StkURL, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("build stk push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.pushClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daraja stk push request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		body = map[string]interface{}{"_raw": string(raw)}
	}
	return &PushResult{Status: resp.StatusCode, Body: body}, nil
}

// The gateway has spelled this field three ways across API versions; first
// present spelling wins.
var checkoutRequestIDKeys = []string{"CheckoutRequestID", "checkoutRequestID", "checkoutRequestId"}

func extractCheckoutRequestID(body map[string]interface{}) string {
	for _, k := range checkoutRequestIDKeys {
		if v, ok := body[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
