// Package credentials resolves provider credentials from an ordered list of
// configuration sources. The first source holding every required field wins;
// fields are never merged across sources.
package credentials

import (
	"context"
	"strconv"
	"strings"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/config"

	"go.uber.org/zap"
)

type Provider string

const (
	WooCommerce Provider = "woocommerce"
	Pushflow    Provider = "pushflow"
)

const (
	FieldURL            = "url"
	FieldConsumerKey    = "consumer_key"
	FieldConsumerSecret = "consumer_secret"
	FieldInstanceID     = "instance_id"
	FieldAccessToken    = "access_token"
	FieldSimulationMode = "simulation_mode"
)

var required = map[Provider][]string{
	WooCommerce: {FieldURL, FieldConsumerKey, FieldConsumerSecret},
	Pushflow:    {FieldInstanceID, FieldAccessToken},
}

var optional = map[Provider][]string{
	Pushflow: {FieldSimulationMode},
}

// Fields returns every field known for p, required ones first.
func Fields(p Provider) []string {
	return append(append([]string{}, required[p]...), optional[p]...)
}

// Values holds field values for one provider.
type Values map[string]string

func (v Values) complete(p Provider) bool {
	fields, ok := required[p]
	if !ok {
		return false
	}
	for _, f := range fields {
		if strings.TrimSpace(v[f]) == "" {
			return false
		}
	}
	return true
}

// Credentials is a complete set of values taken from a single source.
type Credentials struct {
	Provider Provider
	Source   string
	Values   Values
}

func (c Credentials) Get(field string) string {
	return strings.TrimSpace(c.Values[field])
}

// Simulation reports whether the winning source enabled simulation mode.
func (c Credentials) Simulation() bool {
	on, _ := strconv.ParseBool(c.Get(FieldSimulationMode))
	return on
}

// Source supplies candidate values for a provider. Missing values are
// returned as empty strings, not errors.
type Source interface {
	Name() string
	Values(ctx context.Context, p Provider) (Values, error)
}

type Resolver struct {
	sources []Source
	log     *zap.Logger
}

// NewResolver consults sources in the given order after any explicit values.
func NewResolver(log *zap.Logger, sources ...Source) *Resolver {
	return &Resolver{sources: sources, log: log}
}

// Resolve returns the first complete candidate: explicit, then each source.
// A source that fails to read is skipped. When nothing is complete the error
// has kind not_configured.
func (r *Resolver) Resolve(ctx context.Context, p Provider, explicit Values) (Credentials, error) {
	if explicit.complete(p) {
		return Credentials{Provider: p, Source: "explicit", Values: clean(explicit)}, nil
	}

	for _, src := range r.sources {
		values, err := src.Values(ctx, p)
		if err != nil {
			r.log.Warn("Credential source unavailable",
				zap.String("source", src.Name()),
				zap.String("provider", string(p)),
				zap.Error(err))
			continue
		}
		if values.complete(p) {
			return Credentials{Provider: p, Source: src.Name(), Values: clean(values)}, nil
		}
	}

	return Credentials{}, apperrors.NotConfigured("%s is not configured", displayName(p))
}

func clean(v Values) Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = strings.TrimSpace(val)
	}
	return out
}

func displayName(p Provider) string {
	switch p {
	case WooCommerce:
		return "WooCommerce"
	case Pushflow:
		return "Pushflow"
	}
	return string(p)
}

// SettingKey is the app_settings key holding field for p.
func SettingKey(p Provider, field string) string {
	return string(p) + "_" + field
}

type snapshotter interface {
	Snapshot() map[string]string
}

type settingsSource struct {
	settings snapshotter
}

// SettingsSource reads values persisted through the settings store.
func SettingsSource(s snapshotter) Source {
	return settingsSource{settings: s}
}

func (settingsSource) Name() string { return "settings" }

func (s settingsSource) Values(_ context.Context, p Provider) (Values, error) {
	snap := s.settings.Snapshot()
	out := Values{}
	for _, f := range Fields(p) {
		out[f] = snap[SettingKey(p, f)]
	}
	return out, nil
}

type envSource struct {
	cfg *config.Config
}

// EnvSource reads the values loaded from the process environment.
func EnvSource(cfg *config.Config) Source {
	return envSource{cfg: cfg}
}

func (envSource) Name() string { return "environment" }

func (s envSource) Values(_ context.Context, p Provider) (Values, error) {
	switch p {
	case WooCommerce:
		return Values{
			FieldURL:            s.cfg.WooBaseURL,
			FieldConsumerKey:    s.cfg.WooConsumerKey,
			FieldConsumerSecret: s.cfg.WooConsumerSecret,
		}, nil
	case Pushflow:
		return Values{
			FieldInstanceID:     s.cfg.PushflowInstanceID,
			FieldAccessToken:    s.cfg.PushflowAccessToken,
			FieldSimulationMode: strconv.FormatBool(s.cfg.PushflowSimulation),
		}, nil
	}
	return Values{}, nil
}
