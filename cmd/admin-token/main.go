package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erp/bankfeed/internal/infrastructure/auth"
	"github.com/erp/bankfeed/internal/infrastructure/config"
	"github.com/erp/bankfeed/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// admin-token prints a signed admin API token for the configured secret
func main() {
	var (
		subject string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "subject", "", "Operator the token is issued to (required)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if len(cfg.Admin.JWTSecret) < 32 {
		log.Fatal("admin.jwt_secret must be at least 32 characters")
	}

	token, expiresAt, err := auth.NewTokenService(cfg.Admin.JWTSecret, cfg.Admin.Issuer).
		Issue(subject, auth.RoleAdmin, ttl)
	if err != nil {
		log.Fatal("Failed to issue token", zap.Error(err))
	}

	log.Info("Issued admin token",
		zap.String("subject", subject),
		zap.String("issuer", cfg.Admin.Issuer),
		zap.Time("expires_at", expiresAt),
	)
	fmt.Println(token)
}
