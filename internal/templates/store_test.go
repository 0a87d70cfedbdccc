package templates

import (
	"context"
	"testing"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/database"
	"woo-notify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(database.NewTestDB(t))

	for _, status := range models.OrderStatuses {
		in := models.MessageTemplate{Name: "Name " + string(status), Content: "Body {order_id} " + string(status)}
		_, err := store.Upsert(ctx, status, in)
		require.NoError(t, err)

		got, ok, err := store.Get(ctx, status)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, status, got.Status)
		assert.Equal(t, in.Name, got.Name)
		assert.Equal(t, in.Content, got.Content)
	}
}

func TestUpsertReplacesByStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore(database.NewTestDB(t))

	first, err := store.Upsert(ctx, models.StatusProcessing, models.MessageTemplate{Name: "Old", Content: "old"})
	require.NoError(t, err)
	second, err := store.Upsert(ctx, models.StatusProcessing, models.MessageTemplate{ID: 999, Name: "New", Content: "new"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "New", second.Name)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(database.NewTestDB(t))

	_, err := store.Upsert(ctx, "shipped", models.MessageTemplate{Name: "n", Content: "c"})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))

	_, err = store.Upsert(ctx, models.StatusPending, models.MessageTemplate{Name: " ", Content: "c"})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))

	_, err = store.Upsert(ctx, models.StatusPending, models.MessageTemplate{Name: "n"})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(database.NewTestDB(t))

	_, err := store.Upsert(ctx, models.StatusCompleted, models.MessageTemplate{Name: "Done", Content: "done"})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, models.StatusCompleted))
	require.NoError(t, store.Remove(ctx, models.StatusCompleted))
	require.NoError(t, store.Remove(ctx, models.StatusTrash))

	_, ok, err := store.Get(ctx, models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeedDefaultsOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(database.NewTestDB(t))

	n, err := store.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	tmpl, ok, err := store.Get(ctx, models.StatusProcessing)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Order Processing", tmpl.Name)
}
