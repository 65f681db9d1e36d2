package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"network-registry/internal/adapter/auth"
	"network-registry/internal/config"
	"network-registry/internal/domain/entity"
	"network-registry/internal/logger"
)

// token prints a bearer token accepted by the API configured in the same config directory.
func main() {
	cfgPath := flag.String("config", "configs", "directory containing config.yaml")
	subject := flag.String("sub", "", "token subject (required)")
	email := flag.String("email", "", "caller email claim")
	role := flag.String("role", "", "caller role claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-sub is required")
	}
	if *ttl <= 0 {
		log.Fatalf("-ttl must be positive, got %s", *ttl)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", *cfgPath, err)
	}

	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	authenticator := auth.NewJWTAuthenticator(cfg.JWT, appLogger)
	principal := entity.Principal{Subject: *subject, Email: *email, Role: *role}
	token, err := authenticator.IssueToken(principal, cfg.JWT.Issuer, *ttl)
	if err != nil {
		appLogger.Fatal("Failed to sign token", zap.Error(err))
	}

	appLogger.Info("Issued token",
		zap.String("sub", principal.Subject), zap.Duration("ttl", *ttl),
	)
	fmt.Println(token)
}
