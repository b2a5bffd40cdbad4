package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/config"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/database"
	kafkainfra "github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/kafka"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/logger"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/mail"
	redisinfra "github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/redis"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/security"
	postgresrepo "github.com/CaptainBright/Alumni-Connect-DEP/internal/repository/postgres"
	redisrepo "github.com/CaptainBright/Alumni-Connect-DEP/internal/repository/redis"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/middleware"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/routes"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/usecase"
)

// Application bundles the wired service graph and its infrastructure handles.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New wires the full application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	otpStore := redisrepo.NewOTPRepository(redisClient.Client(), cfg.Redis.OTPPrefix)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), "ac:rate-limit", rateLimitWindow*2)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			kafkaProducer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var mailer port.Mailer
	if cfg.App.Env == "development" && cfg.SMTP.Username == "" {
		mailer = mail.NewLoggingMailer(log)
	} else {
		mailer = mail.NewSMTPMailer(cfg.SMTP, log)
	}

	passwordValidator := security.DefaultPasswordValidator()

	otpService := usecase.NewOTPService(otpStore, mailer, log,
		usecase.WithOTPLength(cfg.OTP.Length),
		usecase.WithOTPTTL(cfg.OTP.TTL),
		usecase.WithOTPDispatchTimeout(cfg.OTP.DispatchTimeout),
	)

	sessionService, err := usecase.NewSessionService(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.ResetTTL)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init session service: %w", err)
	}

	lifecycleService := usecase.NewLifecycleService(
		repos.Profiles,
		repos.Identities,
		otpService,
		eventPublisher,
		mailer,
		passwordValidator,
		log,
	)
	lifecycleService.WithLoginTimeout(cfg.Login.Timeout)

	passwordResetService := usecase.NewPasswordResetService(
		repos.Identities,
		otpService,
		sessionService,
		eventPublisher,
		passwordValidator,
		log,
	)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Lifecycle:     lifecycleService,
			Sessions:      sessionService,
			PasswordReset: passwordResetService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting alumni connect API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		a.logger.Info("server stopped")
		return nil
	case err := <-serverErrCh:
		return err
	}
}
