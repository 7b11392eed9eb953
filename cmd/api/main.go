package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/onetodo/auth-api/internal/config"
	"github.com/onetodo/auth-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/onetodo/auth-api/internal/infrastructure/jwt"
	"github.com/onetodo/auth-api/internal/infrastructure/smtp"
	transporthttp "github.com/onetodo/auth-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// The session provider cannot run without signing keys.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider not available: %v", err)
	}

	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:            dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:         dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		VerificationTokens:  dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.VerificationTokens),
		PasswordResetTokens: dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.PasswordResetTokens),
		TwoFactorTokens:     dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.TwoFactorTokens),
		ConfirmationRepo:    dynamo.NewConfirmationRepo(dynamoClient, cfg.DynamoTables.TwoFactorConfirmations),
		Mailer:              mailer,
		JWTProvider:         jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
