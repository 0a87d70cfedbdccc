package credentials

import (
	"context"
	"errors"
	"testing"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticSource struct {
	name   string
	values Values
	err    error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Values(context.Context, Provider) (Values, error) {
	return s.values, s.err
}

type fakeSettings map[string]string

func (f fakeSettings) Snapshot() map[string]string { return f }

func TestResolvePrecedence(t *testing.T) {
	ctx := context.Background()
	persisted := staticSource{name: "settings", values: Values{FieldInstanceID: "db-inst", FieldAccessToken: "db-tok"}}
	env := staticSource{name: "environment", values: Values{FieldInstanceID: "env-inst", FieldAccessToken: "env-tok"}}
	r := NewResolver(zaptest.NewLogger(t), persisted, env)

	creds, err := r.Resolve(ctx, Pushflow, Values{FieldInstanceID: "x-inst", FieldAccessToken: "x-tok"})
	require.NoError(t, err)
	assert.Equal(t, "explicit", creds.Source)
	assert.Equal(t, "x-inst", creds.Get(FieldInstanceID))

	creds, err = r.Resolve(ctx, Pushflow, nil)
	require.NoError(t, err)
	assert.Equal(t, "settings", creds.Source)
	assert.Equal(t, "db-tok", creds.Get(FieldAccessToken))
}

func TestResolveNeverMergesPartialSources(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		explicit Values
		sources  []Source
	}{
		{
			name:     "each source missing a different field",
			explicit: Values{FieldInstanceID: "a"},
			sources: []Source{
				staticSource{name: "settings", values: Values{FieldAccessToken: "b"}},
				staticSource{name: "environment", values: Values{FieldInstanceID: "c", FieldAccessToken: "  "}},
			},
		},
		{
			name:    "all empty",
			sources: []Source{staticSource{name: "settings", values: Values{}}},
		},
		{
			name: "failing source is skipped",
			sources: []Source{
				staticSource{name: "settings", err: errors.New("db down")},
				staticSource{name: "environment", values: Values{FieldAccessToken: "tok"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(zaptest.NewLogger(t), tt.sources...)
			creds, err := r.Resolve(ctx, Pushflow, tt.explicit)
			assert.True(t, apperrors.Is(err, apperrors.KindNotConfigured))
			assert.Empty(t, creds.Values)
		})
	}
}

func TestResolveFallsThroughToEnvironment(t *testing.T) {
	cfg := &config.Config{
		WooBaseURL:        "https://store.example",
		WooConsumerKey:    "ck",
		WooConsumerSecret: "cs",
	}
	settings := fakeSettings{SettingKey(WooCommerce, FieldURL): "https://other.example"}
	r := NewResolver(zaptest.NewLogger(t), SettingsSource(settings), EnvSource(cfg))

	creds, err := r.Resolve(context.Background(), WooCommerce, nil)
	require.NoError(t, err)
	assert.Equal(t, "environment", creds.Source)
	assert.Equal(t, "https://store.example", creds.Get(FieldURL))
}

func TestSimulationComesFromWinningSource(t *testing.T) {
	settings := fakeSettings{
		"pushflow_instance_id":     "inst",
		"pushflow_access_token":    "tok",
		"pushflow_simulation_mode": "true",
	}
	cfg := &config.Config{PushflowInstanceID: "e", PushflowAccessToken: "e", PushflowSimulation: false}
	r := NewResolver(zaptest.NewLogger(t), SettingsSource(settings), EnvSource(cfg))

	creds, err := r.Resolve(context.Background(), Pushflow, nil)
	require.NoError(t, err)
	assert.True(t, creds.Simulation())
}

func TestResolveUnknownProvider(t *testing.T) {
	r := NewResolver(zaptest.NewLogger(t))
	_, err := r.Resolve(context.Background(), Provider("sendgrid"), Values{"api_key": "k"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotConfigured))
}
