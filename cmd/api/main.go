package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nitinder-api/internal/config"
	"github.com/nitinder-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/nitinder-api/internal/infrastructure/jwt"
	redisinfra "github.com/nitinder-api/internal/infrastructure/redis"
	s3infra "github.com/nitinder-api/internal/infrastructure/s3"
	"github.com/nitinder-api/internal/infrastructure/smtp"
	"github.com/nitinder-api/internal/infrastructure/sns"
	"github.com/nitinder-api/internal/logger"
	transporthttp "github.com/nitinder-api/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.Setup(cfg)
	if envErr != nil {
		log.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	emailPattern, err := regexp.Compile(cfg.EmailPattern)
	if err != nil {
		fatal(log, "invalid ALLOWED_EMAIL_PATTERN", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		fatal(log, "dynamodb client", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		if cfg.IsProduction() {
			fatal(log, "jwt keys", err)
		}
		log.Warn("jwt keys not available, using an ephemeral key pair", "err", err)
		if jwtProvider, err = jwtinfra.NewEphemeralProvider(cfg.JWTExpiry); err != nil {
			fatal(log, "ephemeral jwt provider", err)
		}
	}

	events, err := sns.NewPublisher(ctx, cfg)
	if err != nil {
		log.Warn("sns publisher not available, events disabled", "err", err)
		events = sns.Nop{}
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		OTPRepo:          dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.EmailOTPs),
		ProfileRepo:      dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		SwipeRepo:        dynamo.NewSwipeRepo(dynamoClient, cfg.DynamoTables.Swipes, cfg.DynamoTables.SwipeEdges),
		MatchRepo:        dynamo.NewMatchRepo(dynamoClient, cfg.DynamoTables.Matches),
		ConversationRepo: dynamo.NewConversationRepo(dynamoClient, cfg.DynamoTables.Conversations),
		MessageRepo:      dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		GameSessionRepo:  dynamo.NewGameSessionRepo(dynamoClient, cfg.DynamoTables.GameSessions),
		GameResponseRepo: dynamo.NewGameResponseRepo(dynamoClient, cfg.DynamoTables.GameResponses),
		Events:           events,
		Mailer:           smtp.NewMailer(cfg),
		JWTProvider:      jwtProvider,
		EmailPattern:     emailPattern,
	}

	// Profile images go to S3 when a bucket is configured, otherwise inline in the profile item.
	if cfg.S3BucketName != "" {
		store, err := s3infra.NewStore(ctx, cfg)
		if err != nil {
			fatal(log, "s3 store", err)
		}
		deps.Images = store
	}

	if cfg.RedisAddr != "" {
		client := redisinfra.NewClient(cfg)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, otp resend cooldown disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			deps.Throttle = redisinfra.NewThrottle(client, "otp:", cfg.OTPResendCooldown)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "err", err)
		return
	}
	log.Info("server stopped")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
