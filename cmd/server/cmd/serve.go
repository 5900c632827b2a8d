package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "devevent/docs"

	"devevent/config"
	"devevent/internal/adapters/email"
	"devevent/internal/adapters/storage"
	"devevent/internal/database"
	deliveryhttp "devevent/internal/delivery/http"
	"devevent/internal/delivery/http/controllers"
	"devevent/internal/delivery/http/middleware"
	"devevent/internal/domain"
	"devevent/internal/repository/postgres"
	"devevent/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var port string
	var migrateOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The database connection is opened lazily by the first request that needs it
and shared afterwards. The server shuts down gracefully on SIGINT/SIGTERM.

Examples:
  server serve
  server serve --port 9090 --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}
			return runServer(cmd.Context(), cfg, migrateOnStart)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "server port (overrides PORT)")
	cmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, migrateOnStart bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	logger.Info("starting DevEvent server", "env", cfg.Environment, "port", cfg.Port)

	if migrateOnStart {
		if err := database.MigrateUp(cfg.DBUrl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	conn := database.NewManager(logger,
		database.PostgresConnector(cfg.DBUrl, database.PoolConfig{MaxOpenConns: cfg.DBMaxOpenConns}),
		cfg.DBConnectTimeout,
	)
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Error("close database", "err", err)
		}
	}()

	handler, limiter, err := buildHandler(cfg, logger, conn)
	if err != nil {
		return err
	}
	defer limiter.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildHandler wires repositories, services, adapters and controllers into the router.
func buildHandler(cfg *config.Config, logger *slog.Logger, conn *database.Manager) (http.Handler, *middleware.RateLimiter, error) {
	eventRepo := postgres.NewEventRepository(conn)
	bookingRepo := postgres.NewBookingRepository(conn)

	imageStore, err := storage.NewImageStore(storage.Config{
		Provider:        cfg.ImageStoreProvider,
		Bucket:          cfg.S3Bucket,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("image store: %w", err)
	}

	emailService, err := newEmailService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	eventService := services.NewEventService(eventRepo, imageStore, cfg.ImageFolder, logger, cfg.RequestTimeout)
	bookingService := services.NewBookingService(eventRepo, bookingRepo, emailService, logger, cfg.RequestTimeout)

	limiter := middleware.NewRateLimiter(cfg.BookingRateLimitPerMinute)
	handler := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Logger:             logger,
		Events:             controllers.NewEventController(logger, eventService, cfg.MaxUploadBytes),
		Bookings:           controllers.NewBookingController(logger, bookingService),
		Health:             controllers.NewHealthController(logger, conn),
		BookingRateLimiter: limiter,
		AllowedOrigins:     cfg.AllowedOrigins,
	})
	return handler, limiter, nil
}

func newEmailService(cfg *config.Config, logger *slog.Logger) (domain.EmailService, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	return services.NewEmailService(mailer, renderer), nil
}
