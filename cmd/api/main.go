package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicportal/clinic-scheduler/internal/audit"
	"github.com/clinicportal/clinic-scheduler/internal/config"
	dbpkg "github.com/clinicportal/clinic-scheduler/internal/db"
	"github.com/clinicportal/clinic-scheduler/internal/infra/lock"
	infraRepo "github.com/clinicportal/clinic-scheduler/internal/infra/repository"
	"github.com/clinicportal/clinic-scheduler/internal/metrics"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
	"github.com/clinicportal/clinic-scheduler/internal/routes"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
	ucAppointment "github.com/clinicportal/clinic-scheduler/internal/usecase/appointment"
)

const (
	notifyBuffer    = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	// optional; real deployments inject the environment
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "clinic-scheduler",
		Short:         "Clinic appointment scheduling API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ======================================================
// COMMANDS
// ======================================================

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and the active-appointment unique indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := dbpkg.NewDB(cfg, logger)
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}

			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

// ======================================================
// BOOTSTRAP
// ======================================================

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func newLocker(cfg *config.Config, logger zerolog.Logger) (lock.Locker, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, using in-process slot locks")
		return lock.NewLocalLocker(cfg.LockWait), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info().Msg("connected to redis")
	return lock.NewRedisLocker(client, cfg.LockTTL, cfg.LockWait), func() { _ = client.Close() }, nil
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	// -------- Store --------
	db, err := dbpkg.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	if err := dbpkg.Migrate(db); err != nil {
		return err
	}
	logger.Info().Msg("connected to database")

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db, cfg.StoreTimeout)
	holidayRepo := infraRepo.NewHolidayGormRepository(db, cfg.StoreTimeout)

	// -------- Locks --------
	locker, closeLocker, err := newLocker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	// -------- Notifications + audit --------
	auditLogger := audit.New(db)
	dispatcher := notify.NewDispatcher(
		logger,
		notifyBuffer,
		auditLogger,
		notify.LogSink(logger),
	)

	// -------- Core --------
	strategy, err := ucAppointment.StrategyByName(cfg.AssignmentStrategy)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := gin.New()
	routes.RegisterRoutes(r, routes.Dependencies{
		Repo:         appointmentRepo,
		Holidays:     holidayRepo,
		Locker:       locker,
		Clock:        timezone.NewSystemClock(cfg.ClinicTimezone),
		Notifier:     dispatcher,
		Strategy:     strategy,
		Log:          logger,
		Metrics:      metrics.NewSchedulingMetrics(registry),
		Gatherer:     registry,
		Audit:        auditLogger,
		JWTSecret:    cfg.JWTSecret,
		CORSOrigins:  cfg.CORSOrigins,
		Alternatives: cfg.AlternativeDates,
	})

	// -------- Serve --------
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Str("timezone", cfg.ClinicTimezone).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("notification queue not drained")
	}
	return nil
}
