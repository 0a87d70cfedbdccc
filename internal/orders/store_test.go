package orders

import (
	"context"
	"testing"
	"time"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/database"
	"woo-notify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() []models.Order {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []models.Order{
		{ID: 123, Number: "123", Status: models.StatusProcessing, DateCreated: day.Add(10 * time.Hour), Total: "$99.99", FirstName: "John", LastName: "Doe", Phone: "+1234567890",
			LineItems: []models.LineItem{{Name: "Wireless Headphones", Quantity: 1}}},
		{ID: 124, Number: "124", Status: models.StatusPending, DateCreated: day.Add(14 * time.Hour), Total: "$149.99", FirstName: "Jane", LastName: "Smith", Phone: "+1987654321"},
		{ID: 125, Number: "125", Status: models.StatusCompleted, DateCreated: day.Add(-15 * time.Hour), Total: "$249.99", FirstName: "Mike", LastName: "Johnson", Phone: "+1122334455"},
	}
}

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(database.NewTestDB(t))
	require.NoError(t, store.Upsert(context.Background(), fixtures()...))
	return store
}

func ids(orders []models.Order) []int64 {
	out := make([]int64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all newest first", Filter{}, []int64{124, 123, 125}},
		{"explicit all", Filter{Status: StatusAll}, []int64{124, 123, 125}},
		{"by status", Filter{Status: "pending"}, []int64{124}},
		{"search number", Filter{Search: "25"}, []int64{125}},
		{"search name case-insensitive", Filter{Search: "JOHN"}, []int64{123, 125}},
		{"search full name across parts", Filter{Search: "n doe"}, []int64{123}},
		{"status and search", Filter{Status: "completed", Search: "john"}, []int64{125}},
		{"no match", Filter{Status: "refunded"}, []int64{}},
		{"percent is literal", Filter{Search: "%"}, []int64{}},
		{"underscore is literal", Filter{Search: "_"}, []int64{}},
		{"underscore inside term is literal", Filter{Search: "1_5"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))

			var inMemory []int64
			for _, o := range tt.filter.Apply(fixtures()) {
				inMemory = append(inMemory, o.ID)
			}
			assert.ElementsMatch(t, tt.want, inMemory)
		})
	}
}

func TestSearchMatchesSpecialCharactersLiterally(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)
	extra := []models.Order{
		{ID: 126, Number: "126", Status: models.StatusPending, DateCreated: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			FirstName: "Percy%", LastName: "under_score"},
		{ID: 127, Number: "127", Status: models.StatusPending, DateCreated: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
			FirstName: "JOSÉ", LastName: "Álvarez"},
		{ID: 128, Number: "128", Status: models.StatusPending, DateCreated: time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC),
			FirstName: `Back\slash`, LastName: "Doe"},
	}
	require.NoError(t, store.Upsert(ctx, extra...))
	all := append(fixtures(), extra...)

	tests := []struct {
		search string
		want   []int64
	}{
		{"%", []int64{126}},
		{"y%", []int64{126}},
		{"r_s", []int64{126}},
		{"_", []int64{126}},
		{`\`, []int64{128}},
		{"josé", []int64{127}},
		{"ÁLV", []int64{127}},
		{"josé doe", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			f := Filter{Search: tt.search}
			got, err := store.List(ctx, f)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(got))
			assert.ElementsMatch(t, tt.want, ids(f.Apply(all)))
		})
	}
}

func TestListPage(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)

	first, err := store.ListPage(ctx, Filter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{124, 123}, ids(first))

	second, err := store.ListPage(ctx, Filter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{125}, ids(second))

	beyond, err := store.ListPage(ctx, Filter{}, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	// non-ASCII terms are paginated the same way
	require.NoError(t, store.Upsert(ctx, models.Order{ID: 130, Number: "130", Status: models.StatusPending, FirstName: "Zoë"}))
	page, err := store.ListPage(ctx, Filter{Search: "ë"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{130}, ids(page))
	page, err = store.ListPage(ctx, Filter{Search: "ë"}, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestListKeepsLineItems(t *testing.T) {
	store := newSeededStore(t)
	got, err := store.Get(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, []models.LineItem{{Name: "Wireless Headphones", Quantity: 1}}, got.LineItems)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)

	updated, err := store.SetStatus(ctx, 124, models.StatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, updated.Status)
	assert.Equal(t, "Jane", updated.FirstName)

	got, err := store.Get(ctx, 124)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, got.Status)
}

func TestSetStatusUnknownOrder(t *testing.T) {
	store := newSeededStore(t)
	_, err := store.SetStatus(context.Background(), 999, models.StatusProcessing)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSetStatusRejectsInvalidStatus(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)

	for _, status := range []models.OrderStatus{"", "shipped", "Processing", "on_hold", "all"} {
		for _, id := range []int64{123, 999} {
			_, err := store.SetStatus(ctx, id, status)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput), "status %q id %d", status, id)
		}
	}

	got, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.Status)
}

func TestUpsertOverwritesImportedOrders(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)

	changed := fixtures()[0]
	changed.Status = models.StatusCompleted
	changed.Phone = ""
	require.NoError(t, store.Upsert(ctx, changed))

	got, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Empty(t, got.Phone)
}
