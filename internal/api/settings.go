package api

import (
	"context"
	"net/http"
	"strconv"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/credentials"
	"woo-notify/internal/pushflow"
	"woo-notify/internal/settings"
	"woo-notify/internal/woocommerce"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maskPrefix = "****"

var secretFields = map[string]bool{
	credentials.FieldConsumerKey:    true,
	credentials.FieldConsumerSecret: true,
	credentials.FieldAccessToken:    true,
}

type resolver interface {
	Resolve(ctx context.Context, p credentials.Provider, explicit credentials.Values) (credentials.Credentials, error)
}

type SettingsHandler struct {
	Settings    *settings.Store
	Resolver    resolver
	HTTP        *http.Client
	PushflowURL string
	Log         *zap.Logger
}

func NewSettingsHandler(store *settings.Store, r resolver, httpClient *http.Client, pushflowURL string, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		Settings:    store,
		Resolver:    r,
		HTTP:        httpClient,
		PushflowURL: pushflowURL,
		Log:         log,
	}
}

// mask hides all but the last four characters of a secret.
func mask(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return maskPrefix
	}
	return maskPrefix + v[len(v)-4:]
}

func (h *SettingsHandler) providerView(ctx context.Context, p credentials.Provider, snap map[string]string) gin.H {
	view := gin.H{}
	for _, f := range credentials.Fields(p) {
		v := snap[credentials.SettingKey(p, f)]
		if secretFields[f] {
			v = mask(v)
		}
		view[f] = v
	}
	creds, err := h.Resolver.Resolve(ctx, p, nil)
	view["configured"] = err == nil
	if err == nil {
		view["source"] = creds.Source
	}
	return view
}

func (h *SettingsHandler) view(ctx context.Context) gin.H {
	snap := h.Settings.Snapshot()
	return gin.H{
		"woocommerce": h.providerView(ctx, credentials.WooCommerce, snap),
		"pushflow":    h.providerView(ctx, credentials.Pushflow, snap),
		"store": gin.H{
			settings.KeyStoreName: snap[settings.KeyStoreName],
		},
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.view(c.Request.Context()))
}

type WooCommerceSettings struct {
	URL            string `json:"url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

func (s WooCommerceSettings) values() credentials.Values {
	return credentials.Values{
		credentials.FieldURL:            s.URL,
		credentials.FieldConsumerKey:    s.ConsumerKey,
		credentials.FieldConsumerSecret: s.ConsumerSecret,
	}
}

type PushflowSettings struct {
	InstanceID     string `json:"instance_id"`
	AccessToken    string `json:"access_token"`
	SimulationMode *bool  `json:"simulation_mode"`
}

func (s PushflowSettings) values() credentials.Values {
	v := credentials.Values{
		credentials.FieldInstanceID:  s.InstanceID,
		credentials.FieldAccessToken: s.AccessToken,
	}
	if s.SimulationMode != nil {
		v[credentials.FieldSimulationMode] = strconv.FormatBool(*s.SimulationMode)
	}
	return v
}

type StoreSettings struct {
	StoreName string `json:"store_name"`
}

// unmasked drops secrets echoed back exactly as GetSettings rendered them, so
// the saved secret is kept when the operator edits other fields. Any other
// value, even one starting with the mask prefix, is taken literally.
func (h *SettingsHandler) unmasked(p credentials.Provider, v credentials.Values) credentials.Values {
	out := credentials.Values{}
	for f, val := range v {
		if secretFields[f] && val != "" {
			if stored := h.Settings.Get(credentials.SettingKey(p, f)); stored != "" && val == mask(stored) {
				continue
			}
		}
		out[f] = val
	}
	return out
}

func (h *SettingsHandler) save(c *gin.Context, values map[string]string) {
	if err := h.Settings.Save(c.Request.Context(), values); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context()))
}

func (h *SettingsHandler) settingValues(p credentials.Provider, v credentials.Values) map[string]string {
	out := make(map[string]string, len(v))
	for f, val := range h.unmasked(p, v) {
		out[credentials.SettingKey(p, f)] = val
	}
	return out
}

func (h *SettingsHandler) UpdateWooCommerce(c *gin.Context) {
	var req WooCommerceSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	h.save(c, h.settingValues(credentials.WooCommerce, req.values()))
}

func (h *SettingsHandler) UpdatePushflow(c *gin.Context) {
	var req PushflowSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	h.save(c, h.settingValues(credentials.Pushflow, req.values()))
}

func (h *SettingsHandler) UpdateStore(c *gin.Context) {
	var req StoreSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	h.save(c, map[string]string{settings.KeyStoreName: req.StoreName})
}

// bindOptional decodes a body when one is present; an empty body tests the
// saved configuration.
func bindOptional(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

func (h *SettingsHandler) TestWooCommerce(c *gin.Context) {
	var req WooCommerceSettings
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	creds, err := h.Resolver.Resolve(ctx, credentials.WooCommerce, h.unmasked(credentials.WooCommerce, req.values()))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := woocommerce.NewClient(creds, h.HTTP, h.Log).TestConnection(ctx); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "source": creds.Source})
}

func (h *SettingsHandler) TestPushflow(c *gin.Context) {
	var req PushflowSettings
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	creds, err := h.Resolver.Resolve(ctx, credentials.Pushflow, h.unmasked(credentials.Pushflow, req.values()))
	if err != nil {
		respondError(c, err)
		return
	}
	if creds.Simulation() {
		c.JSON(http.StatusOK, gin.H{"success": true, "source": creds.Source, "simulated": true})
		return
	}
	if err := pushflow.NewClient(h.PushflowURL, creds, h.HTTP, h.Log).TestConnection(ctx); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "source": creds.Source})
}
