package pushflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"woo-notify/internal/credentials"
	"woo-notify/internal/provider"

	"go.uber.org/zap"
)

const DefaultAPIURL = "https://api.pushflow.com/v1"

type Client struct {
	api *provider.Client
}

// NewClient targets {apiURL}/instances/{instance_id}.
func NewClient(apiURL string, creds credentials.Credentials, httpClient *http.Client, log *zap.Logger) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	base := strings.TrimRight(apiURL, "/") + "/instances/" + url.PathEscape(creds.Get(credentials.FieldInstanceID))
	return &Client{
		api: provider.NewClient("Pushflow", base, provider.BearerToken(creds.Get(credentials.FieldAccessToken)), httpClient, log),
	}
}

type SendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SendMessage posts one SMS. idempotencyKey, when set, is sent as the
// Idempotency-Key header so a provider can collapse duplicate submissions.
func (c *Client) SendMessage(ctx context.Context, to, text, idempotencyKey string) (json.RawMessage, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return c.api.Do(ctx, http.MethodPost, "/messages", SendRequest{To: to, Text: text}, headers)
}

func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.api.Do(ctx, http.MethodGet, "/test", nil, nil)
	return err
}
