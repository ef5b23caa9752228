package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pxv-pay/internal/api"
	"pxv-pay/internal/auth"
	"pxv-pay/internal/awsconfig"
	"pxv-pay/internal/cache"
	"pxv-pay/internal/checkout"
	"pxv-pay/internal/config"
	"pxv-pay/internal/db"
	"pxv-pay/internal/event"
	"pxv-pay/internal/kafka"
	"pxv-pay/internal/logging"
	"pxv-pay/internal/merchant"
	"pxv-pay/internal/metrics"
	"pxv-pay/internal/notify"
	"pxv-pay/internal/storage"
	"pxv-pay/internal/verification"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadConfig(dir)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.GetLogger(cfg.Logs)

			if err := db.RunMigrations(db.GetConnStr(cfg.Database), cfg.Database.Migrations); err != nil {
				return err
			}
			logger.Info("Migrations applied")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Sign a dashboard token for local development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			token, err := auth.NewTokenService(cfg.Auth.JWTSecret).Issue(userID, auth.Role(role), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(auth.RoleMerchant), "merchant, admin or super_admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.GetLogger(cfg.Logs)
	metrics.Setup(cfg.Metrics, logger)

	connStr := db.GetConnStr(cfg.Database)
	if err := db.RunMigrations(connStr, cfg.Database.Migrations); err != nil {
		return err
	}

	pool, err := db.GetPool(connStr)
	if err != nil {
		return err
	}
	defer pool.Close()

	linkRepo := db.NewCheckoutLinkRepository(pool)
	methodRepo := db.NewPaymentMethodRepository(pool)
	paymentRepo := db.NewPaymentRepository(pool)
	referenceRepo := db.NewReferenceRepository(pool)

	var (
		links       checkout.LinkStore = linkRepo
		invalidator merchant.LinkInvalidator
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		linkCache := cache.NewLinkCache(rdb, linkRepo, time.Duration(cfg.Redis.TTLMs)*time.Millisecond, logger)
		links = linkCache
		invalidator = linkCache
	}

	awsCfg, err := awsconfig.Load(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	proofs := storage.NewS3Store(awsCfg, cfg.Storage.Endpoint, cfg.Storage.ProofBucket)

	notifier, err := newNotifier(cfg, awsCfg, logger)
	if err != nil {
		return err
	}

	writer := kafka.NewWriter(cfg.Kafka)
	defer writer.Close()
	publisher := event.NewPublisher(writer, logger)
	subscriber := event.NewSubscriber(cfg.Kafka.Broker.URL, cfg.Kafka.Topic.PaymentEvents, logger)

	checkoutService := checkout.NewService(links, methodRepo, paymentRepo, proofs, publisher, checkout.Options{
		MaxProofBytes:       cfg.Checkout.MaxProofBytes,
		AllowedContentTypes: cfg.Checkout.AllowedContentTypes,
		DuplicateWindow:     time.Duration(cfg.Checkout.DuplicateWindowMs) * time.Millisecond,
	}, logger)
	verifier := verification.NewService(paymentRepo, publisher, notifier, logger)
	merchantService := merchant.NewService(merchant.Stores{
		Links:      linkRepo,
		Methods:    methodRepo,
		References: referenceRepo,
		Payments:   paymentRepo,
	}, invalidator, proofs, time.Duration(cfg.Storage.PresignTTLMs)*time.Millisecond, logger)

	router := api.NewRouter(api.Deps{
		Checkout:       checkoutService,
		Verifier:       verifier,
		Merchant:       merchantService,
		Events:         subscriber,
		Tokens:         auth.NewTokenService(cfg.Auth.JWTSecret),
		CorsOrigins:    cfg.Server.CorsOrigins,
		MaxUploadBytes: cfg.Checkout.MaxProofBytes + 1<<20,
	}, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newNotifier returns nil when notifications are disabled.
func newNotifier(cfg *config.Config, awsCfg sdkaws.Config, logger *slog.Logger) (notify.Notifier, error) {
	switch cfg.Notify.Driver {
	case "":
		return nil, nil
	case "webhook":
		return notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.TimeoutMs, logger), nil
	case "sns":
		client := notify.NewSNSClient(awsCfg, cfg.Storage.Endpoint)
		return notify.NewSNSNotifier(client, cfg.Notify.TopicArn), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
	}
}
