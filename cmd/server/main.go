package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"woo-notify/internal/api"
	"woo-notify/internal/config"
	"woo-notify/internal/credentials"
	"woo-notify/internal/database"
	"woo-notify/internal/logger"
	"woo-notify/internal/metrics"
	"woo-notify/internal/notify"
	"woo-notify/internal/orders"
	"woo-notify/internal/service"
	"woo-notify/internal/settings"
	"woo-notify/internal/sms"
	"woo-notify/internal/templates"
	"woo-notify/internal/webhook"
	"woo-notify/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, envErr := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()
	if envErr != nil {
		log.Warn("Using environment only", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	settingsStore := settings.NewStore(db, log)
	if err := settingsStore.Load(ctx); err != nil {
		log.Fatal("Failed to load settings", zap.Error(err))
	}

	templateStore := templates.NewStore(db)
	if cfg.SeedDefaultTemplates {
		n, err := templateStore.SeedDefaults(ctx)
		if err != nil {
			log.Fatal("Failed to seed templates", zap.Error(err))
		}
		if n > 0 {
			log.Info("Default templates installed", zap.Int("count", n))
		}
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	resolver := credentials.NewResolver(log,
		credentials.SettingsSource(settingsStore),
		credentials.EnvSource(cfg),
	)
	renderer := templates.NewRenderer(func() string {
		if name := settingsStore.Get(settings.KeyStoreName); name != "" {
			return name
		}
		return cfg.StoreName
	})
	transport := sms.NewTransport(resolver, cfg.PushflowAPIURL, httpClient, log)
	m := metrics.New()
	logStore := notify.NewLogStore(db)
	dispatcher := notify.NewDispatcher(templateStore, renderer, transport, logStore, m, log)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	orderService := service.NewOrders(
		orders.NewStore(db),
		resolver,
		service.WooCommerceFactory(httpClient, log),
		dispatcher,
		m,
		hub,
		log,
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	webhookHandler := webhook.NewHandler(cfg.WooWebhookSecret, orderService, log)
	r.POST("/webhook/woocommerce", webhookHandler.HandleOrder)

	api.Register(r.Group("/api"), api.Handlers{
		Orders:        api.NewOrderHandler(orderService),
		Messages:      api.NewMessageHandler(dispatcher),
		Templates:     api.NewTemplateHandler(templateStore, renderer),
		Settings:      api.NewSettingsHandler(settingsStore, resolver, httpClient, cfg.PushflowAPIURL, log),
		Notifications: api.NewNotificationHandler(logStore),
	})

	r.GET("/ws", hub.Serve)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
