package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/swarajb-778/StockPilot/config"
	"github.com/swarajb-778/StockPilot/jobs"
	"github.com/swarajb-778/StockPilot/middleware"
	"github.com/swarajb-778/StockPilot/routes"
	"github.com/swarajb-778/StockPilot/services"
	"github.com/swarajb-778/StockPilot/utils"
	"github.com/swarajb-778/StockPilot/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	slog.Info("database connected")

	var store services.ObjectStore
	if cfg.StorageEnabled() {
		store = utils.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		slog.Info("image storage enabled", "bucket", cfg.SupabaseBucket)
	} else {
		slog.Warn("SUPABASE_URL/SUPABASE_KEY not set, image uploads are disabled")
	}

	hub := ws.NewHub()
	notifications := services.NewNotificationService(db, hub)
	products := services.NewProductService(db, store, cfg.MaxImageBytes)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), cors.New(corsConfig(cfg.CORSOrigins)))

	routes.SetupRouter(r, routes.Deps{
		Config:        cfg,
		DB:            db,
		Hub:           hub,
		Verifier:      newVerifier(cfg),
		Notifications: notifications,
		Products:      products,
		Dashboard:     services.NewDashboardService(db),
		Users:         services.NewUserService(db),
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	jobDone := jobs.StartLowStockJob(ctx, notifications, cfg.LowStockScanInterval, cfg.LowStockThreshold)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	stop()
	<-jobDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	products.Wait()

	slog.Info("server stopped gracefully")
	return nil
}

// newVerifier returns nil when no identity provider is configured, which
// leaves the API open.
func newVerifier(cfg config.Config) utils.TokenVerifier {
	var chain utils.ChainVerifier
	if cfg.AuthJWTSecret != "" {
		chain = append(chain, utils.NewJWTVerifier(cfg.AuthJWTSecret))
	}
	if cfg.AuthGoogleClientID != "" {
		chain = append(chain, utils.NewGoogleVerifier(cfg.AuthGoogleClientID))
	}
	if len(chain) == 0 {
		slog.Warn("no auth provider configured, API is unauthenticated")
		return nil
	}
	return chain
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
