// Package service composes order mutations with store synchronization,
// notification dispatch and dashboard events.
package service

import (
	"context"
	"net/http"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/credentials"
	"woo-notify/internal/metrics"
	"woo-notify/internal/models"
	"woo-notify/internal/notify"
	"woo-notify/internal/orders"
	"woo-notify/internal/woocommerce"
	"woo-notify/internal/ws"

	"go.uber.org/zap"
)

// Upstream is the subset of the store API the service drives.
type Upstream interface {
	ListOrders(ctx context.Context, page int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error)
}

// UpstreamFactory builds an Upstream for resolved credentials.
type UpstreamFactory func(creds credentials.Credentials) Upstream

// WooCommerceFactory returns a factory producing real store clients.
func WooCommerceFactory(httpClient *http.Client, log *zap.Logger) UpstreamFactory {
	return func(creds credentials.Credentials) Upstream {
		return woocommerce.NewClient(creds, httpClient, log)
	}
}

type Resolver interface {
	Resolve(ctx context.Context, p credentials.Provider, explicit credentials.Values) (credentials.Credentials, error)
}

type Dispatcher interface {
	OnStatusChanged(ctx context.Context, order models.Order, newStatus models.OrderStatus) notify.Result
}

// Publisher receives dashboard events. Publishing must not block.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// Source tells where a listed page came from.
type Source string

const (
	SourceWooCommerce Source = "woocommerce"
	SourceLocal       Source = "local"
)

// OrderPage is one page of at most PageSize orders. When synced from the
// store the search filter is applied to the fetched page.
type OrderPage struct {
	Orders   []models.Order `json:"orders"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Source   Source         `json:"source"`
}

// StatusChange is the outcome of an operator status update.
type StatusChange struct {
	Order        models.Order  `json:"order"`
	Notification notify.Result `json:"notification"`
}

type Orders struct {
	store       *orders.Store
	resolver    Resolver
	newUpstream UpstreamFactory
	dispatcher  Dispatcher
	metrics     *metrics.Metrics
	events      Publisher
	log         *zap.Logger
}

// NewOrders wires the service. m and events may be nil.
func NewOrders(store *orders.Store, resolver Resolver, newUpstream UpstreamFactory, dispatcher Dispatcher, m *metrics.Metrics, events Publisher, log *zap.Logger) *Orders {
	return &Orders{
		store:       store,
		resolver:    resolver,
		newUpstream: newUpstream,
		dispatcher:  dispatcher,
		metrics:     m,
		events:      events,
		log:         log,
	}
}

// upstream returns a store client, or nil when WooCommerce is not configured.
func (s *Orders) upstream(ctx context.Context) (Upstream, error) {
	creds, err := s.resolver.Resolve(ctx, credentials.WooCommerce, nil)
	if apperrors.Is(err, apperrors.KindNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.newUpstream(creds), nil
}

// ListOrders syncs one page from the store when it is configured and
// returns it filtered; otherwise it serves the local copy.
func (s *Orders) ListOrders(ctx context.Context, page int, f orders.Filter) (OrderPage, error) {
	if page < 1 {
		page = 1
	}
	up, err := s.upstream(ctx)
	if err != nil {
		return OrderPage{}, err
	}

	if up == nil {
		local, err := s.store.ListPage(ctx, f, page, woocommerce.PageSize)
		if err != nil {
			return OrderPage{}, err
		}
		return OrderPage{Orders: local, Page: page, PageSize: woocommerce.PageSize, Source: SourceLocal}, nil
	}

	remote, err := up.ListOrders(ctx, page)
	if err != nil {
		s.log.Error("Order sync failed", zap.Int("page", page), zap.Error(err))
		return OrderPage{}, err
	}
	if err := s.store.Upsert(ctx, remote...); err != nil {
		return OrderPage{}, err
	}
	s.log.Debug("Orders synced", zap.Int("page", page), zap.Int("count", len(remote)))
	return OrderPage{Orders: f.Apply(remote), Page: page, PageSize: woocommerce.PageSize, Source: SourceWooCommerce}, nil
}

func (s *Orders) Get(ctx context.Context, id int64) (models.Order, error) {
	return s.store.Get(ctx, id)
}

// ChangeStatus moves an order to status: upstream first when the store is
// configured, then locally, then the notification rules run. A failed
// notification does not fail the change; it is reported in the result.
func (s *Orders) ChangeStatus(ctx context.Context, id int64, status models.OrderStatus) (StatusChange, error) {
	if !status.Valid() {
		s.metrics.ObserveStatusChange("invalid", "invalid_input")
		return StatusChange{}, apperrors.InvalidInput("invalid status value %q", status)
	}
	log := s.log.With(zap.Int64("order_id", id), zap.String("status", string(status)))

	if _, err := s.store.Get(ctx, id); err != nil {
		s.metrics.ObserveStatusChange(string(status), string(apperrors.KindOf(err)))
		return StatusChange{}, err
	}

	up, err := s.upstream(ctx)
	if err != nil {
		s.metrics.ObserveStatusChange(string(status), string(apperrors.KindOf(err)))
		return StatusChange{}, err
	}
	if up != nil {
		remote, err := up.UpdateOrderStatus(ctx, id, status)
		if err != nil {
			log.Error("Store rejected status update", zap.Error(err))
			s.metrics.ObserveStatusChange(string(status), string(apperrors.KindOf(err)))
			return StatusChange{}, err
		}
		if remote.ID == id {
			if err := s.store.Upsert(ctx, remote); err != nil {
				return StatusChange{}, err
			}
		}
	} else {
		log.Info("WooCommerce not configured, updating local order only")
	}

	updated, err := s.store.SetStatus(ctx, id, status)
	if err != nil {
		s.metrics.ObserveStatusChange(string(status), string(apperrors.KindOf(err)))
		return StatusChange{}, err
	}
	s.metrics.ObserveStatusChange(string(status), "ok")

	result := s.dispatcher.OnStatusChanged(ctx, updated, status)
	log.Info("Order status updated", zap.String("notification", string(result.Outcome)))

	s.publish(updated, result)
	return StatusChange{Order: updated, Notification: result}, nil
}

// WebhookResult reports what an imported store order caused.
type WebhookResult struct {
	Order         models.Order   `json:"order"`
	StatusChanged bool           `json:"status_changed"`
	Notification  *notify.Result `json:"notification,omitempty"`
}

// ApplyWebhookOrder imports an order pushed by the store. The notification
// rules run only when the order is new or its status differs from the local
// copy, so echoes of operator changes are not notified twice.
func (s *Orders) ApplyWebhookOrder(ctx context.Context, order models.Order) (WebhookResult, error) {
	if order.ID <= 0 {
		return WebhookResult{}, apperrors.InvalidInput("order id is required")
	}

	prev, err := s.store.Get(ctx, order.ID)
	existed := err == nil
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return WebhookResult{}, err
	}

	if err := s.store.Upsert(ctx, order); err != nil {
		return WebhookResult{}, err
	}

	res := WebhookResult{Order: order, StatusChanged: !existed || prev.Status != order.Status}
	if !res.StatusChanged || !order.Status.Valid() {
		s.publish(order, notify.Result{})
		return res, nil
	}

	s.metrics.ObserveStatusChange(string(order.Status), "webhook")
	result := s.dispatcher.OnStatusChanged(ctx, order, order.Status)
	res.Notification = &result
	s.log.Info("Webhook order imported",
		zap.Int64("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("notification", string(result.Outcome)))

	s.publish(order, result)
	return res, nil
}

func (s *Orders) publish(order models.Order, result notify.Result) {
	if s.events == nil {
		return
	}
	s.events.Publish(ws.EventOrderUpdated, order)
	if result.Outcome != "" {
		s.events.Publish(ws.EventNotification, notificationEvent(order.ID, result))
	}
}

func notificationEvent(orderID int64, result notify.Result) map[string]interface{} {
	return map[string]interface{}{"order_id": orderID, "result": result}
}
