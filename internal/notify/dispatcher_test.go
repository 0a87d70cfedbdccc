package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/database"
	"woo-notify/internal/metrics"
	"woo-notify/internal/models"
	"woo-notify/internal/sms"
	"woo-notify/internal/templates"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mapTemplates map[models.OrderStatus]models.MessageTemplate

func (m mapTemplates) Get(_ context.Context, status models.OrderStatus) (models.MessageTemplate, bool, error) {
	t, ok := m[status]
	return t, ok, nil
}

type brokenTemplates struct{}

func (brokenTemplates) Get(context.Context, models.OrderStatus) (models.MessageTemplate, bool, error) {
	return models.MessageTemplate{}, false, errors.New("database is locked")
}

type recordingSender struct {
	deliveries []sms.Delivery
	err        error
	simulated  bool
}

func (s *recordingSender) Send(_ context.Context, d sms.Delivery) (sms.Receipt, error) {
	s.deliveries = append(s.deliveries, d)
	if s.err != nil {
		return sms.Receipt{}, s.err
	}
	return sms.Receipt{Simulated: s.simulated, Response: []byte(`{"id":"m1"}`)}, nil
}

var processingTemplate = mapTemplates{
	models.StatusProcessing: {
		Status:  models.StatusProcessing,
		Name:    "Order Processing",
		Content: "Hi {customer_name}, order {order_id} ({order_total}) is processing",
	},
}

func johnDoe(phone string) models.Order {
	return models.Order{ID: 123, Number: "123", Phone: phone, FirstName: "John", LastName: "Doe", Total: "$99.99", Status: models.StatusPending}
}

func newDispatcher(t *testing.T, tmpls TemplateLookup, sender Sender, journal Journal, m *metrics.Metrics) *Dispatcher {
	t.Helper()
	d := NewDispatcher(tmpls, templates.NewRenderer(nil), sender, journal, m, zaptest.NewLogger(t))
	n := 0
	d.newAttemptID = func() string {
		n++
		return fmt.Sprintf("attempt-%d", n)
	}
	return d
}

func TestStatusChangeSendsRenderedMessage(t *testing.T) {
	sender := &recordingSender{}
	d := newDispatcher(t, processingTemplate, sender, nil, nil)

	res := d.OnStatusChanged(context.Background(), johnDoe("+1234567890"), models.StatusProcessing)

	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "attempt-1", res.AttemptID)
	require.Len(t, sender.deliveries, 1)
	assert.Equal(t, "+1234567890", sender.deliveries[0].Phone)
	assert.Equal(t, "Hi John Doe, order 123 ($99.99) is processing", sender.deliveries[0].Message)
	assert.Equal(t, "attempt-1", sender.deliveries[0].AttemptID)
	require.NotNil(t, sender.deliveries[0].OrderID)
	assert.Equal(t, int64(123), *sender.deliveries[0].OrderID)
}

func TestNoPhoneNeverCallsTransport(t *testing.T) {
	every := mapTemplates{}
	for _, s := range models.OrderStatuses {
		every[s] = models.MessageTemplate{Status: s, Name: string(s), Content: "{customer_name}"}
	}
	sender := &recordingSender{}
	d := newDispatcher(t, every, sender, nil, nil)

	for _, phone := range []string{"", "   "} {
		for _, status := range models.OrderStatuses {
			res := d.OnStatusChanged(context.Background(), johnDoe(phone), status)
			assert.Equal(t, OutcomeSkipped, res.Outcome)
			assert.Equal(t, ReasonNoPhone, res.Reason)
		}
	}
	assert.Empty(t, sender.deliveries)
}

func TestNoTemplateSkips(t *testing.T) {
	sender := &recordingSender{}
	d := newDispatcher(t, processingTemplate, sender, nil, nil)

	res := d.OnStatusChanged(context.Background(), johnDoe("+1234567890"), models.StatusCompleted)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Equal(t, ReasonNoTemplate, res.Reason)
	assert.Empty(t, sender.deliveries)
}

func TestTransportFailureIsReported(t *testing.T) {
	sender := &recordingSender{err: apperrors.Transport(apperrors.Upstream("Pushflow", 500, "down"))}
	d := newDispatcher(t, processingTemplate, sender, nil, nil)

	res := d.OnStatusChanged(context.Background(), johnDoe("+1234567890"), models.StatusProcessing)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, apperrors.KindTransport, res.ErrorKind)
	assert.Contains(t, res.Error, "down")
	assert.Error(t, res.Err)
	assert.Len(t, sender.deliveries, 1, "exactly one attempt, no retry")
}

func TestTemplateLookupFailure(t *testing.T) {
	sender := &recordingSender{}
	d := newDispatcher(t, brokenTemplates{}, sender, nil, nil)

	res := d.OnStatusChanged(context.Background(), johnDoe("+1234567890"), models.StatusProcessing)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Empty(t, sender.deliveries)
}

func TestAttemptsAreJournaled(t *testing.T) {
	ctx := context.Background()
	journal := NewLogStore(database.NewTestDB(t))
	sender := &recordingSender{simulated: true}
	m := metrics.New()
	d := newDispatcher(t, processingTemplate, sender, journal, m)

	res := d.OnStatusChanged(ctx, johnDoe("+1234567890"), models.StatusProcessing)
	require.Equal(t, OutcomeSent, res.Outcome)
	assert.True(t, res.Simulated)

	sender.err = apperrors.Transport(errors.New("timeout"))
	res = d.OnStatusChanged(ctx, johnDoe("+1234567890"), models.StatusProcessing)
	require.Equal(t, OutcomeFailed, res.Outcome)

	logs, err := journal.Recent(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	byAttempt := map[string]models.NotificationLog{}
	for _, l := range logs {
		byAttempt[l.AttemptID] = l
	}
	sent := byAttempt["attempt-1"]
	assert.Equal(t, models.NotificationSent, sent.Status)
	assert.True(t, sent.Simulated)
	assert.NotNil(t, sent.CompletedAt)
	assert.Equal(t, "Hi John Doe, order 123 ($99.99) is processing", sent.Message)

	failedLog := byAttempt["attempt-2"]
	assert.Equal(t, models.NotificationFailed, failedLog.Status)
	assert.Contains(t, failedLog.ErrorMessage, "timeout")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatches.WithLabelValues("sent", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatches.WithLabelValues("failed", "")))
}

func TestCompletedAttemptIsNeverReopened(t *testing.T) {
	ctx := context.Background()
	journal := NewLogStore(database.NewTestDB(t))

	d := sms.Delivery{AttemptID: "a-1", Phone: "+1", Message: "hi"}
	require.NoError(t, journal.Start(ctx, d))
	require.NoError(t, journal.Succeed(ctx, "a-1", sms.Receipt{}))
	assert.Error(t, journal.Fail(ctx, "a-1", errors.New("late failure")))

	orderID := int64(5)
	require.NoError(t, journal.Start(ctx, sms.Delivery{AttemptID: "a-2", OrderID: &orderID, Phone: "+1", Message: "hi"}))
	logs, err := journal.Recent(ctx, &orderID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "a-2", logs[0].AttemptID)

	all, err := journal.Recent(ctx, nil, 0)
	require.NoError(t, err)
	for _, l := range all {
		if l.AttemptID == "a-1" {
			assert.Equal(t, models.NotificationSent, l.Status)
		}
	}
}
