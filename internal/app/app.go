package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "sparkos/docs"
	"sparkos/internal/config"
	"sparkos/internal/domain/repository"
	domainservice "sparkos/internal/domain/service"
	cronpkg "sparkos/internal/infrastructure/cron"
	"sparkos/internal/infrastructure/kafka"
	"sparkos/internal/infrastructure/memory"
	"sparkos/internal/infrastructure/postgres"
	redispkg "sparkos/internal/infrastructure/redis"
	"sparkos/internal/service"
	"sparkos/internal/transport/grpc"
	"sparkos/internal/transport/http/handler"
	"sparkos/internal/transport/http/middleware"
	"sparkos/pkg/clock"
	"sparkos/pkg/jwt"
	"sparkos/pkg/logger"
	"sparkos/pkg/metrics"

	"go.uber.org/zap"
)

// App represents the application
type App struct {
	config            *config.Config
	logger            *zap.Logger
	httpServer        *http.Server
	metricsServer     *http.Server
	grpcServer        *grpc.Server
	rateLimiter       *middleware.RateLimiter
	rolloverScheduler *cronpkg.RolloverScheduler
	consumer          *kafka.Consumer
	publisher         domainservice.EventPublisher
	closers           []func()
}

// storage bundles the persistence side chosen by storage.driver
type storage struct {
	repos         repository.Repositories
	tx            repository.Transactor
	notifications repository.NotificationRepository
	locker        domainservice.Locker
	closers       []func()
}

// New creates a new application
func New() (*App, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(zap.String("service", cfg.Service.Name))
	log.Info("configuration loaded", zap.String("storage", cfg.Storage.Driver))

	ctx := context.Background()

	var st *storage
	if cfg.IsMemory() {
		st = newMemoryStorage(cfg)
		log.Warn("running with in-memory storage, data is lost on restart")
	} else {
		st, err = newPostgresStorage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}

	policy := cfg.Gamification.Policy()
	clk := clock.System{}

	// Initialize services
	habitService := service.NewHabitService(st.repos.Habits, st.repos.Completions, st.tx, policy, clk, log)
	progressService := service.NewProgressService(st.repos.Progress, st.repos.Habits, st.repos.Completions, policy, clk)
	notificationService := service.NewNotificationService(st.notifications, clk, log)
	log.Info("services initialized")

	// Events go through Kafka when it is available, otherwise straight to the notification service
	var publisher domainservice.EventPublisher
	var consumer *kafka.Consumer
	if cfg.IsMemory() {
		publisher = memory.NewEventBus(notificationService.HandleEvent)
	} else {
		publisher = kafka.NewProducer(&cfg.Kafka, log)
		consumer = kafka.NewConsumer(&cfg.Kafka, notificationService, log)
	}

	// Initialize rollover scheduler (if enabled)
	var scheduler *cronpkg.RolloverScheduler
	if cfg.Scheduler.Enabled {
		scheduler = cronpkg.NewRolloverScheduler(habitService, publisher, st.locker, clk, log,
			cfg.Scheduler.CheckInterval, cfg.Scheduler.LockTTL)
	} else {
		log.Info("rollover scheduler is disabled in configuration")
	}

	// Initialize HTTP transport
	tokens := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit.RequestsPerSecond, cfg.HTTP.RateLimit.Burst, log)
	router := handler.NewRouter(
		handler.NewHabitHandler(habitService, publisher, log),
		handler.NewProgressHandler(progressService, notificationService, log),
		middleware.NewAuthMiddleware(tokens),
		rateLimiter,
		middleware.Logging(log),
		cfg.HTTP.SwaggerEnabled,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle(cfg.Metrics.Path, metrics.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		config:            cfg,
		logger:            log,
		httpServer:        httpServer,
		metricsServer:     metricsServer,
		grpcServer:        grpc.NewServer(&cfg.GRPC, log),
		rateLimiter:       rateLimiter,
		rolloverScheduler: scheduler,
		consumer:          consumer,
		publisher:         publisher,
		closers:           st.closers,
	}, nil
}

func newMemoryStorage(cfg *config.Config) *storage {
	store := memory.NewStore()
	return &storage{
		repos:         store.Repositories(),
		tx:            store,
		notifications: memory.NewNotificationRepository(cfg.Redis.NotificationLimit),
		locker:        memory.NewRolloverLock(),
	}
}

func newPostgresStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage, error) {
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.GetDSN(), log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize PostgreSQL connection pool
	pool, err := postgres.NewPool(ctx, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	redisClient, err := redispkg.NewClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	return &storage{
		repos: repository.Repositories{
			Habits:      postgres.NewHabitRepository(pool),
			Completions: postgres.NewCompletionRepository(pool),
			Progress:    postgres.NewProgressRepository(pool),
		},
		tx:            postgres.NewUnitOfWork(pool),
		notifications: redispkg.NewNotificationRepository(redisClient, cfg.Redis.NotificationLimit),
		locker:        redispkg.NewRolloverLock(redisClient, log),
		closers: []func(){
			func() {
				if err := redisClient.Close(); err != nil {
					log.Warn("failed to close redis client", zap.Error(err))
				}
			},
			pool.Close,
		},
	}, nil
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *App) Run() error {
	defer a.logger.Sync()

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start rollover scheduler if enabled
	if a.rolloverScheduler != nil {
		if err := a.rolloverScheduler.Start(); err != nil {
			return fmt.Errorf("failed to start rollover scheduler: %w", err)
		}
	}

	consumerDone := make(chan struct{})
	if a.consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := a.consumer.Start(ctx); err != nil {
				a.logger.Error("kafka consumer error", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	stopCleanup := make(chan struct{})
	a.rateLimiter.StartCleanup(5*time.Minute, stopCleanup)

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.logger.Error("gRPC server error", zap.Error(err))
			requestShutdown(quit)
		}
	}()

	go func() {
		a.logger.Info("metrics server listening", zap.String("addr", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server error", zap.Error(err))
		}
	}()

	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			requestShutdown(quit)
		}
	}()

	a.logger.Info("service started",
		zap.Int("http_port", a.config.HTTP.Port),
		zap.Int("grpc_port", a.config.GRPC.Port),
	)

	// Wait for interrupt signal
	sig := <-quit
	a.logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	a.grpcServer.Stop()

	if a.rolloverScheduler != nil {
		a.rolloverScheduler.Stop()
	}

	cancel()
	<-consumerDone
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("failed to close kafka consumer", zap.Error(err))
		}
	}
	close(stopCleanup)

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("failed to close event publisher", zap.Error(err))
	}

	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("metrics server shutdown error", zap.Error(err))
	}

	for _, closeFn := range a.closers {
		closeFn()
	}

	a.logger.Info("server shutdown complete")
	return nil
}

// requestShutdown queues SIGTERM unless a signal is already pending
func requestShutdown(quit chan<- os.Signal) {
	select {
	case quit <- syscall.SIGTERM:
	default:
	}
}
