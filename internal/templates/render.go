package templates

import (
	"strconv"
	"strings"
	"time"

	"woo-notify/internal/models"
)

const (
	PlaceholderCustomerName = "{customer_name}"
	PlaceholderOrderID      = "{order_id}"
	PlaceholderOrderTotal   = "{order_total}"
	PlaceholderStoreName    = "{store_name}"
)

// Placeholder describes a recognized token for the template editor.
type Placeholder struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

var Placeholders = []Placeholder{
	{Key: PlaceholderCustomerName, Description: "Customer's full name"},
	{Key: PlaceholderOrderID, Description: "Order number"},
	{Key: PlaceholderOrderTotal, Description: "Order total amount"},
	{Key: PlaceholderStoreName, Description: "Your store name"},
}

// Renderer expands placeholders against an order. StoreName is looked up on
// every call so a saved store name applies without a restart.
type Renderer struct {
	StoreName func() string
}

func NewRenderer(storeName func() string) *Renderer {
	return &Renderer{StoreName: storeName}
}

// Render replaces every occurrence of each recognized placeholder. Unknown
// tokens are kept verbatim and missing fields render as empty strings.
func (r *Renderer) Render(content string, order models.Order) string {
	store := ""
	if r != nil && r.StoreName != nil {
		store = r.StoreName()
	}

	number := order.Number
	if number == "" && order.ID != 0 {
		number = strconv.FormatInt(order.ID, 10)
	}

	return strings.NewReplacer(
		PlaceholderCustomerName, order.CustomerName(),
		PlaceholderOrderID, number,
		PlaceholderOrderTotal, order.Total,
		PlaceholderStoreName, store,
	).Replace(content)
}

// SampleOrder is the order used to preview templates in the editor.
var SampleOrder = models.Order{
	ID:          123,
	Number:      "#123",
	Status:      models.StatusProcessing,
	DateCreated: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	Total:       "$99.99",
	FirstName:   "John",
	LastName:    "Doe",
	Phone:       "+1234567890",
	LineItems:   []models.LineItem{{Name: "Wireless Headphones", Quantity: 1}},
}
