package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/brightlabs/portal-mailer/internal/api"
	"github.com/brightlabs/portal-mailer/internal/automation"
	"github.com/brightlabs/portal-mailer/internal/config"
	"github.com/brightlabs/portal-mailer/internal/mailer"
	"github.com/brightlabs/portal-mailer/internal/pkg/logger"
	"github.com/brightlabs/portal-mailer/internal/sender"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactEnabled())

	// Provider selection happens once, here. A misconfigured deployment
	// refuses to start instead of failing on the first send.
	provider, err := mailer.SelectProvider(cfg)
	if err != nil {
		log.Fatalf("Startup check failed: %v", err)
	}
	logger.Info("email provider selected", "provider", provider.Name())

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("connected to database")

	senderStore := sender.NewStore(db)
	resolver := sender.NewResolver(senderStore, mailer.Identity{
		Email: cfg.Mailer.FallbackSenderEmail,
		Name:  cfg.Mailer.FallbackSenderName,
	})
	m := mailer.New(provider, resolver)

	autoStore := automation.NewStore(db)
	autoService := automation.NewService(autoStore, m)

	handlers := api.NewHandlers(autoService, autoStore, senderStore, m)
	server := api.NewServer(cfg.Server, handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
