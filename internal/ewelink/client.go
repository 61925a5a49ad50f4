// Package ewelink is a thin typed client for the eWeLink/CoolKit cloud API.
// The client holds application identity only; access token and region travel
// as call parameters, so one request's credentials can never leak into
// another's concurrent call. No retries, no caching.
package ewelink

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	appID      string
	appSecret  string
	baseURL    string // overrides the regional endpoint when set (tests, proxies)
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func New(appID string, appSecret string, opts ...Option) *Client {
	c := &Client{
		appID:      appID,
		appSecret:  appSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) endpoint(region string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s-apia.coolkit.cc", region)
}

// sign computes the base64 HMAC-SHA256 the cloud expects over either the raw
// request body (token exchange) or the appID_seq pair (login URL).
func (c *Client) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// doSigned posts a body authenticated with the application signature; used
// by the OAuth token exchange where no access token exists yet.
func (c *Client) doSigned(ctx context.Context, region string, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	return c.do(ctx, http.MethodPost, c.endpoint(region)+path, "Sign "+c.sign(raw), raw, out)
}

// doBearer performs a request authorized by a user access token.
func (c *Client) doBearer(ctx context.Context, method string, region string, path string, query url.Values, accessToken string, body any, out any) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	reqURL := c.endpoint(region) + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	return c.do(ctx, method, reqURL, "Bearer "+accessToken, raw, out)
}

func (c *Client) do(ctx context.Context, method string, reqURL string, authorization string, body []byte, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-CK-Appid", c.appID)
	req.Header.Set("X-CK-Nonce", nonce())
	req.Header.Set("Authorization", authorization)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if env.Error != 0 {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Error, Message: env.Msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}

	return nil
}

// nonce returns the 8-character alphanumeric request nonce the API requires.
func nonce() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}

	return string(b)
}
