package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	LogLevel  string
	LogFormat string

	DBDriver   string // sqlite or postgres
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Environment credentials, the last source consulted by the credential resolver.
	WooBaseURL           string
	WooConsumerKey       string
	WooConsumerSecret    string
	WooWebhookSecret     string
	PushflowInstanceID   string
	PushflowAccessToken  string
	PushflowSimulation   bool
	PushflowAPIURL       string
	StoreName            string
	SeedDefaultTemplates bool

	HTTPTimeout time.Duration
}

var defaults = map[string]interface{}{
	"PORT":                   "8080",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "console",
	"DB_DRIVER":              "sqlite",
	"DB_PATH":                "./woo-notify.db",
	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "postgres",
	"DB_PASSWORD":            "",
	"DB_NAME":                "woo_notify",
	"DB_SSLMODE":             "disable",
	"WOO_BASE_URL":           "",
	"WOO_CONSUMER_KEY":       "",
	"WOO_CONSUMER_SECRET":    "",
	"WOO_WEBHOOK_SECRET":     "",
	"PUSHFLOW_INSTANCE_ID":   "",
	"PUSHFLOW_ACCESS_TOKEN":  "",
	"PUSHFLOW_SIMULATION":    false,
	"PUSHFLOW_API_URL":       "https://api.pushflow.com/v1",
	"STORE_NAME":             "",
	"SEED_DEFAULT_TEMPLATES": false,
	"HTTP_TIMEOUT":           "15s",
}

// LoadConfig reads .env into the environment, then the environment into a
// Config. The returned Config is always usable; a non-nil error only reports
// that .env could not be read, which callers log as a warning.
func LoadConfig() (*Config, error) {
	var envErr error
	if err := godotenv.Load(); err != nil {
		envErr = fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return fromViper(v), envErr
}

func fromViper(v *viper.Viper) *Config {
	timeout := v.GetDuration("HTTP_TIMEOUT")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Config{
		Port:                 v.GetString("PORT"),
		LogLevel:             strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:            strings.ToLower(v.GetString("LOG_FORMAT")),
		DBDriver:             strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:               v.GetString("DB_PATH"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSSLMode:            v.GetString("DB_SSLMODE"),
		WooBaseURL:           v.GetString("WOO_BASE_URL"),
		WooConsumerKey:       v.GetString("WOO_CONSUMER_KEY"),
		WooConsumerSecret:    v.GetString("WOO_CONSUMER_SECRET"),
		WooWebhookSecret:     v.GetString("WOO_WEBHOOK_SECRET"),
		PushflowInstanceID:   v.GetString("PUSHFLOW_INSTANCE_ID"),
		PushflowAccessToken:  v.GetString("PUSHFLOW_ACCESS_TOKEN"),
		PushflowSimulation:   v.GetBool("PUSHFLOW_SIMULATION"),
		PushflowAPIURL:       strings.TrimRight(v.GetString("PUSHFLOW_API_URL"), "/"),
		StoreName:            v.GetString("STORE_NAME"),
		SeedDefaultTemplates: v.GetBool("SEED_DEFAULT_TEMPLATES"),
		HTTPTimeout:          timeout,
	}
}
