package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-agent/internal/ai"
	"go-inventory-agent/internal/auth"
	"go-inventory-agent/internal/billing"
	"go-inventory-agent/internal/config"
	"go-inventory-agent/internal/database"
	"go-inventory-agent/internal/handlers"
	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/metrics"
	"go-inventory-agent/internal/orders"
	"go-inventory-agent/internal/session"
	"go-inventory-agent/internal/suppliers"
	"go-inventory-agent/internal/tracking"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		logger.New(config.EnvDevelopment, "info").Fatal("loading config", zap.Error(err))
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()
	if !foundEnv {
		log.Warn("no .env file found, using process environment")
	}

	db, err := database.Get(cfg.DB, log)
	if err != nil {
		log.Fatal("connecting to database", zap.Error(err))
	}
	defer func() { _ = database.Close() }()
	if err := database.InitDB(db); err != nil {
		log.Fatal("migrating database", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := openSessions(ctx, cfg.Redis, log)

	inv := inventory.NewService(db, log, inventory.WithMetrics(m))
	sups := suppliers.NewService(db, log)
	ord := orders.NewService(db, log, inv, sups)
	bill := billing.NewService(db, log, inv, billing.WithSalesOrders(ord))
	tracker := tracking.NewTracker(cfg.Tracking, log, tracking.WithTrackerMetrics(m))

	var model ai.Model
	if cfg.Gemini.Enabled() {
		gm, err := ai.NewGeminiModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal("creating gemini client", zap.Error(err))
		}
		defer gm.Close()
		model = gm
	} else {
		log.Warn("GEMINI_API_KEY not set, assistant will answer with a setup hint")
	}
	assistant := ai.NewBridge(model, inv, ord, bill, sups, ord, log,
		ai.WithMetrics(m),
		ai.WithCompressor(ai.NewCompressor(cfg.Scaledown, log, m)),
	)

	h := &handlers.Handler{
		Users:             auth.NewService(db, log),
		Tokens:            auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		Inventory:         inv,
		Suppliers:         sups,
		Billing:           bill,
		Orders:            ord,
		Packages:          tracking.NewService(db, log, tracker),
		Assistant:         assistant,
		Sessions:          sessions,
		AllowRegistration: cfg.App.AllowRegistration,
		Log:               log,
	}

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinMiddleware(log), logger.Recovery(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	h.Routes(r)

	if cfg.App.AllowRegistration {
		log.Warn("registration route is OPEN, disable ALLOW_REGISTRATION in production")
	}

	srv := &http.Server{Addr: ":" + cfg.App.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("server starting", zap.String("base_url", cfg.App.BaseURL), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openSessions prefers redis and falls back to process memory, which loses
// chat state on restart.
func openSessions(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) session.Store {
	if cfg.URL == "" {
		log.Warn("REDIS_URL not set, keeping assistant sessions in memory")
		return session.NewMemoryStore(cfg.SessionTTL)
	}
	client, err := session.OpenRedis(ctx, cfg.URL)
	if err != nil {
		log.Fatal("connecting to redis", zap.Error(err))
	}
	return session.NewRedisStore(client, cfg.SessionTTL)
}
