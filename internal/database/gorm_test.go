package database

import (
	"context"
	"testing"

	"woo-notify/internal/config"
	"woo-notify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBUser: "app", DBPassword: "pw", DBName: "orders", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=app password=pw dbname=orders port=5433 sslmode=require", PostgresDSN(cfg))
}

func TestMigrateCreatesTables(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"orders", "message_templates", "app_settings", "notification_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := NewTestDB(t)
	dst := openTestDB(t, t.Name()+"_dst")
	log := zaptest.NewLogger(t)

	orderID := int64(123)
	require.NoError(t, src.Create(&models.Order{ID: orderID, Number: "123", Status: models.StatusPending, FirstName: "John",
		LineItems: []models.LineItem{{Name: "Wireless Headphones", Quantity: 1}}}).Error)
	require.NoError(t, src.Create(&models.MessageTemplate{Status: models.StatusPending, Name: "Pending", Content: "Hi"}).Error)
	require.NoError(t, src.Create(&models.SystemSetting{Key: "store_name", Value: "Acme"}).Error)
	require.NoError(t, src.Create(&models.NotificationLog{AttemptID: "a-1", OrderID: &orderID, Phone: "+1", Message: "Hi", Status: models.NotificationSent}).Error)

	require.NoError(t, Copy(ctx, src, dst, log))
	// rerunning keeps existing rows
	require.NoError(t, Copy(ctx, src, dst, log))

	var order models.Order
	require.NoError(t, dst.First(&order, "id = ?", orderID).Error)
	assert.Equal(t, "John", order.FirstName)
	assert.Equal(t, []models.LineItem{{Name: "Wireless Headphones", Quantity: 1}}, order.LineItems)

	for _, m := range []interface{}{&models.MessageTemplate{}, &models.SystemSetting{}, &models.NotificationLog{}} {
		var n int64
		require.NoError(t, dst.Model(m).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	}

	assert.NoError(t, SyncSequences(ctx, dst, log))
}
