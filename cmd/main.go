package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign/internal/config"
	"campaign/internal/db"
	"campaign/internal/handlers"
	"campaign/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load .env (if present) and configuration
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	defer logger.Init("campaign", true, false, io.Discard).Close()
	if cfg.Verbose() {
		logger.SetLevel(1)
	}

	// 2. Build the session store
	var store services.SessionStore
	switch cfg.Session.Backend {
	case "sqlite":
		conn, err := db.Open(cfg.Session.DSN)
		if err != nil {
			logger.Fatalf("Failed to open session database: %v", err)
		}
		defer conn.Close()
		store = db.NewSessionStore(conn)
	default:
		store = services.NewMemorySessionStore()
	}

	// 3. Initialize the prize catalog, ledger and voucher inventory
	prizes := cfg.Prizes
	if len(prizes) == 0 {
		prizes = services.DefaultPrizes()
	}
	locations := cfg.Locations
	if len(locations) == 0 {
		locations = services.DefaultLocations()
	}
	catalog, err := services.NewPrizeCatalog(prizes, services.CryptoSource{})
	if err != nil {
		logger.Fatalf("Invalid prize catalog: %v", err)
	}
	inventory := services.NewVoucherInventory()
	ledger := services.NewAwardLedger(catalog, inventory)
	reporter := services.NewReporter(ledger, inventory, locations)
	campaign := services.NewCampaignService(store, ledger, catalog, locations)

	admin, err := services.NewAdminService(cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL())
	if err != nil {
		logger.Fatalf("Failed to set up admin login: %v", err)
	}

	// 4. Initialize the HTTP handler and the Gin router
	httpHandler, err := handlers.NewHTTPHandler(campaign, catalog, inventory, reporter, admin)
	if err != nil {
		logger.Fatalf("Failed to set up HTTP handlers: %v", err)
	}
	r := gin.Default()
	httpHandler.RegisterRoutes(r)

	// 5. Start the background janitor to clean up inactive sessions
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go services.RunSessionJanitor(ctx, store, cfg.Session.SweepInterval(), cfg.Session.IdleTimeout())

	// 6. Run the server until SIGINT/SIGTERM
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		logger.Infof("Server starting on http://localhost:%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exiting")
}
