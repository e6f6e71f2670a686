package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/api/http"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/config"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/gateway/httpgw"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/logging"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/pricing"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository/memory"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository/postgres"
	redisrepo "github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/session/redis"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/service"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown сервиса
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *shutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости сервиса
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := logging.New(logging.Config{
		ServiceName: "insurepal",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building InsurePal service", zap.String("http_addr", cfg.HTTPAddr))

	// Создаём shutdown manager заранее: зависимости регистрируются по мере создания
	shutdownMgr := shutdown.New(cfg.ShutdownTimeout, logger)

	// Выбираем backend локального хранилища платежей
	var paymentRepo repository.PaymentRepository
	var readiness func() bool
	var pool *pgxpool.Pool

	switch cfg.Store {
	case config.StorePostgres:
		logger.Info("Connecting to PostgreSQL")
		pool, err = pgxpool.New(context.Background(), cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("PostgreSQL connection established")

		// Применяем миграции
		logger.Info("Applying database migrations")
		db, err := goose.OpenDBWithDriver("pgx", cfg.PostgresDSN)
		if err != nil {
			pool.Close()
			return nil, err
		}
		defer db.Close()

		wd, err := os.Getwd()
		if err != nil {
			pool.Close()
			return nil, err
		}
		migrationsDir := filepath.Join(wd, "migrations")

		if err := goose.Up(db, migrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Database migrations applied successfully")

		paymentRepo = postgres.NewRepository(pool, logger)
		readiness = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return pool.Ping(ctx) == nil
		}
		shutdownMgr.Add("postgres_pool", shutdown.ClosePool(pool))
	default:
		logger.Info("Using in-memory payment store")
		paymentRepo = memory.NewMemoryRepository()
	}

	// Подключаемся к Redis (хранилище сессий)
	logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctxRedis, cancelRedis := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelRedis()
	if err := redisClient.Ping(ctxRedis).Err(); err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	logger.Info("Redis connection established")
	shutdownMgr.Add("redis_client", shutdown.CloseClient(redisClient))

	// Создаём Redis session repository
	sessionRepo := redisrepo.NewSessionRepository(redisClient, logger)

	// Создаём HTTP клиент платёжного шлюза
	gw := httpgw.NewClient(logger, cfg.Gateway)

	// Создаём service слой
	paymentService := service.NewPaymentService(logger, gw, paymentRepo)

	// Создаём HTTP handler и роутер
	handler := httpapi.NewHandler(paymentService, sessionRepo, pricing.DefaultCatalog(), cfg.SessionTTL, logger)
	router := httpapi.NewRouter(handler, sessionRepo, readiness, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("HTTP server configured", zap.String("addr", cfg.HTTPAddr))

	shutdownMgr.Add("http_server", shutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer logging.Sync(a.logger)

	a.logger.Info("Starting InsurePal service", zap.String("addr", a.httpServer.Addr))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("InsurePal service stopped")
	return nil
}
