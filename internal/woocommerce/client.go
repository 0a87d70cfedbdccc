package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"woo-notify/internal/credentials"
	"woo-notify/internal/models"
	"woo-notify/internal/provider"

	"go.uber.org/zap"
)

const PageSize = 100

type Client struct {
	api *provider.Client
}

// APIBase returns the REST root for a store URL, accepting URLs with or
// without the /wp-json suffix.
func APIBase(storeURL string) string {
	base := strings.TrimRight(strings.TrimSpace(storeURL), "/")
	if !strings.HasSuffix(base, "/wp-json") {
		base += "/wp-json"
	}
	return base + "/wc/v3"
}

func NewClient(creds credentials.Credentials, httpClient *http.Client, log *zap.Logger) *Client {
	auth := provider.BasicAuth(creds.Get(credentials.FieldConsumerKey), creds.Get(credentials.FieldConsumerSecret))
	return &Client{
		api: provider.NewClient("WooCommerce", APIBase(creds.Get(credentials.FieldURL)), auth, httpClient, log),
	}
}

// Order mirrors the fields of the WooCommerce order resource we use.
type Order struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	DateCreated string `json:"date_created"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	Billing     struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	} `json:"billing"`
	LineItems []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"line_items"`
}

// dateLayouts covers the store's local timestamps (no zone) and RFC 3339.
var dateLayouts = []string{"2006-01-02T15:04:05", time.RFC3339}

func (o Order) ToModel() models.Order {
	out := models.Order{
		ID:        o.ID,
		Number:    o.Number,
		Status:    models.OrderStatus(o.Status),
		Total:     o.Total,
		Currency:  o.Currency,
		FirstName: o.Billing.FirstName,
		LastName:  o.Billing.LastName,
		Phone:     strings.TrimSpace(o.Billing.Phone),
		LineItems: make([]models.LineItem, 0, len(o.LineItems)),
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, o.DateCreated); err == nil {
			out.DateCreated = t
			break
		}
	}
	for _, item := range o.LineItems {
		out.LineItems = append(out.LineItems, models.LineItem{Name: item.Name, Quantity: item.Quantity})
	}
	return out
}

// TestConnection fetches a single order to check the credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.api.Do(ctx, http.MethodGet, "/orders?per_page=1", nil, nil)
	return err
}

// ListOrders fetches one page of PageSize orders.
func (c *Client) ListOrders(ctx context.Context, page int) ([]models.Order, error) {
	if page < 1 {
		page = 1
	}
	raw, err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/orders?per_page=%d&page=%d", PageSize, page), nil, nil)
	if err != nil {
		return nil, err
	}

	var remote []Order
	if err := json.Unmarshal(raw, &remote); err != nil {
		return nil, fmt.Errorf("decode WooCommerce orders: %w", err)
	}
	out := make([]models.Order, 0, len(remote))
	for _, o := range remote {
		out = append(out, o.ToModel())
	}
	return out, nil
}

// UpdateOrderStatus sets the status of order id on the store and returns the
// store's updated representation.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error) {
	raw, err := c.api.Do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), map[string]string{"status": string(status)}, nil)
	if err != nil {
		return models.Order{}, err
	}
	var remote Order
	if err := json.Unmarshal(raw, &remote); err != nil {
		return models.Order{}, fmt.Errorf("decode WooCommerce order: %w", err)
	}
	return remote.ToModel(), nil
}
