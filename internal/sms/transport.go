// Package sms delivers rendered messages through Pushflow, or only logs them
// when the resolved configuration enables simulation mode.
package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/credentials"
	"woo-notify/internal/pushflow"

	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^\+\d{1,15}$`)

// ValidatePhone accepts a leading + followed by 1 to 15 digits.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return apperrors.InvalidInput("invalid phone number format")
	}
	return nil
}

// Delivery is one message to send. AttemptID identifies the dispatch attempt
// end to end: it is logged, sent to the provider and keys the notification log.
type Delivery struct {
	AttemptID string
	OrderID   *int64
	Phone     string
	Message   string
}

// Receipt is what the transport reports back for a successful send.
type Receipt struct {
	Simulated bool
	Response  json.RawMessage
}

type resolver interface {
	Resolve(ctx context.Context, p credentials.Provider, explicit credentials.Values) (credentials.Credentials, error)
}

type Transport struct {
	creds  resolver
	apiURL string
	http   *http.Client
	log    *zap.Logger
}

func NewTransport(creds resolver, apiURL string, httpClient *http.Client, log *zap.Logger) *Transport {
	return &Transport{creds: creds, apiURL: apiURL, http: httpClient, log: log}
}

// Send resolves Pushflow credentials and delivers d. Incomplete configuration
// fails with kind not_configured; provider failures with kind transport.
func (t *Transport) Send(ctx context.Context, d Delivery) (Receipt, error) {
	creds, err := t.creds.Resolve(ctx, credentials.Pushflow, nil)
	if err != nil {
		return Receipt{}, err
	}

	if creds.Simulation() {
		t.log.Info("SMS simulation",
			zap.String("attempt_id", d.AttemptID),
			zap.String("to", d.Phone),
			zap.String("message", d.Message))
		resp, _ := json.Marshal(map[string]interface{}{
			"simulated":  true,
			"to":         d.Phone,
			"message":    d.Message,
			"attempt_id": d.AttemptID,
		})
		return Receipt{Simulated: true, Response: resp}, nil
	}

	client := pushflow.NewClient(t.apiURL, creds, t.http, t.log)
	resp, err := client.SendMessage(ctx, d.Phone, d.Message, d.AttemptID)
	if err != nil {
		t.log.Error("SMS delivery failed",
			zap.String("attempt_id", d.AttemptID),
			zap.String("to", d.Phone),
			zap.Error(err))
		return Receipt{}, apperrors.Transport(err)
	}

	t.log.Info("SMS sent", zap.String("attempt_id", d.AttemptID), zap.String("to", d.Phone))
	return Receipt{Response: resp}, nil
}
