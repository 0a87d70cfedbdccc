// Package notify decides whether an order status change produces an SMS,
// renders it and hands it to the transport. There is exactly one delivery
// attempt per call and no retry.
package notify

import (
	"context"
	"strings"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/metrics"
	"woo-notify/internal/models"
	"woo-notify/internal/sms"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type Reason string

const (
	ReasonNoPhone    Reason = "no_phone"
	ReasonNoTemplate Reason = "no_template"
)

// Result describes what happened to one status change.
type Result struct {
	Outcome   Outcome        `json:"outcome"`
	Reason    Reason         `json:"reason,omitempty"`
	AttemptID string         `json:"attempt_id,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Message   string         `json:"message,omitempty"`
	Simulated bool           `json:"simulated,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorKind apperrors.Kind `json:"error_kind,omitempty"`
	Err       error          `json:"-"`
}

type TemplateLookup interface {
	Get(ctx context.Context, status models.OrderStatus) (models.MessageTemplate, bool, error)
}

type Renderer interface {
	Render(content string, order models.Order) string
}

type Sender interface {
	Send(ctx context.Context, d sms.Delivery) (sms.Receipt, error)
}

// Journal records delivery attempts.
type Journal interface {
	Start(ctx context.Context, d sms.Delivery) error
	Succeed(ctx context.Context, attemptID string, receipt sms.Receipt) error
	Fail(ctx context.Context, attemptID string, cause error) error
}

type Dispatcher struct {
	templates TemplateLookup
	renderer  Renderer
	sender    Sender
	journal   Journal
	metrics   *metrics.Metrics
	log       *zap.Logger

	newAttemptID func() string
}

// NewDispatcher wires the dispatcher. journal and m may be nil.
func NewDispatcher(templates TemplateLookup, renderer Renderer, sender Sender, journal Journal, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		templates:    templates,
		renderer:     renderer,
		sender:       sender,
		journal:      journal,
		metrics:      m,
		log:          log,
		newAttemptID: uuid.NewString,
	}
}

// OnStatusChanged runs the notification rules for order moving to newStatus.
func (d *Dispatcher) OnStatusChanged(ctx context.Context, order models.Order, newStatus models.OrderStatus) Result {
	log := d.log.With(zap.Int64("order_id", order.ID), zap.String("status", string(newStatus)))

	phone := strings.TrimSpace(order.Phone)
	if phone == "" {
		log.Info("Notification skipped, order has no phone")
		return d.finish(Result{Outcome: OutcomeSkipped, Reason: ReasonNoPhone})
	}

	tmpl, ok, err := d.templates.Get(ctx, newStatus)
	if err != nil {
		log.Error("Template lookup failed", zap.Error(err))
		return d.finish(failed(Result{Phone: phone}, err))
	}
	if !ok {
		log.Info("Notification skipped, no template for status")
		return d.finish(Result{Outcome: OutcomeSkipped, Reason: ReasonNoTemplate, Phone: phone})
	}

	orderID := order.ID
	delivery := sms.Delivery{
		OrderID: &orderID,
		Phone:   phone,
		Message: d.renderer.Render(tmpl.Content, order),
	}
	receipt, err := d.Deliver(ctx, &delivery)

	res := Result{
		AttemptID: delivery.AttemptID,
		Phone:     delivery.Phone,
		Message:   delivery.Message,
	}
	if err != nil {
		return d.finish(failed(res, err))
	}
	res.Outcome = OutcomeSent
	res.Simulated = receipt.Simulated
	return d.finish(res)
}

// Deliver makes one journaled transport call for del, assigning its attempt
// id. Journal failures are logged and never change the outcome.
func (d *Dispatcher) Deliver(ctx context.Context, del *sms.Delivery) (sms.Receipt, error) {
	del.AttemptID = d.newAttemptID()
	log := d.log.With(zap.String("attempt_id", del.AttemptID), zap.String("to", del.Phone))

	if d.journal != nil {
		if err := d.journal.Start(ctx, *del); err != nil {
			log.Error("Error logging notification", zap.Error(err))
		}
	}

	receipt, err := d.sender.Send(ctx, *del)

	if d.journal != nil {
		var jerr error
		if err != nil {
			jerr = d.journal.Fail(ctx, del.AttemptID, err)
		} else {
			jerr = d.journal.Succeed(ctx, del.AttemptID, receipt)
		}
		if jerr != nil {
			log.Error("Error completing notification log", zap.Error(jerr))
		}
	}
	return receipt, err
}

func failed(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Err = err
	res.Error = err.Error()
	res.ErrorKind = apperrors.KindOf(err)
	return res
}

func (d *Dispatcher) finish(res Result) Result {
	d.metrics.ObserveDispatch(string(res.Outcome), string(res.Reason))
	return res
}
