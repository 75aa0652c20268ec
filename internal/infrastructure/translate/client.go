// Package translate forwards translation requests to the upstream API,
// attaching the server-held credential the browser must never see.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hsboy89/NewStep/internal/ports"
)

// ErrNoCredential signals a missing API key; the HTTP layer maps it to a
// configuration error response.
var ErrNoCredential = errors.New("translation api key is not configured")

// UpstreamError carries the upstream status and body so the HTTP layer can
// reproduce them in its error envelope.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("translation upstream returned %d", e.StatusCode)
}

// Client implements ports.Translator against a Kakao-style translation API.
type Client struct {
	endpoint   string
	authScheme string
	apiKey     string
	client     *http.Client
}

var _ ports.Translator = (*Client)(nil)

// NewClient wires endpoint, auth scheme (e.g. "KakaoAK"), and credential.
func NewClient(endpoint, authScheme, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		authScheme: authScheme,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Translate posts the form-encoded request upstream and returns the JSON
// body verbatim.
func (c *Client) Translate(ctx context.Context, query, srcLang, targetLang string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoCredential
	}

	form := url.Values{}
	form.Set("query", query)
	form.Set("src_lang", srcLang)
	form.Set("target_lang", targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.authScheme+" "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request translation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
