// Package provider is the generic forwarder used for both third-party APIs:
// it stamps an auth header on the request, relays the JSON response verbatim
// and turns non-2xx answers into upstream errors.
package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"woo-notify/internal/apperrors"

	"go.uber.org/zap"
)

// Authorizer sets credentials on an outgoing request.
type Authorizer interface {
	Authorize(req *http.Request)
}

type basicAuth struct {
	token string
}

// BasicAuth authorizes with "Basic base64(key:secret)".
func BasicAuth(key, secret string) Authorizer {
	return basicAuth{token: base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))}
}

func (b basicAuth) Authorize(req *http.Request) {
	req.Header.Set("Authorization", "Basic "+b.token)
}

type bearerToken string

// BearerToken authorizes with "Bearer token".
func BearerToken(token string) Authorizer {
	return bearerToken(token)
}

func (b bearerToken) Authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+string(b))
}

type Client struct {
	Name    string
	BaseURL string
	Auth    Authorizer
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(name, baseURL string, auth Authorizer, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		Name:    name,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Auth:    auth,
		HTTP:    httpClient,
		Log:     log,
	}
}

// Do sends body (JSON-encoded when non-nil) to BaseURL+path and returns the
// raw response body. headers are applied after the auth header.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, headers map[string]string) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", c.Name, err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.Name, err)
	}

	if c.Auth != nil {
		c.Auth.Authorize(req)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.Log.Debug("Provider request", zap.String("provider", c.Name), zap.String("method", method), zap.String("url", url))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream, err, "%s request failed", c.Name)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Log.Warn("Provider returned error",
			zap.String("provider", c.Name),
			zap.Int("status", resp.StatusCode),
			zap.String("url", url))
		text := strings.TrimSpace(string(respBody))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return nil, apperrors.Upstream(c.Name, resp.StatusCode, text)
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(respBody) {
		return nil, apperrors.Wrap(apperrors.KindUpstream, nil, "%s returned a non-JSON body", c.Name)
	}
	return json.RawMessage(respBody), nil
}
