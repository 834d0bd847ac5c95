package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wallet_ledger/internal/api/handlers"
	"wallet_ledger/internal/api/middlew"
	"wallet_ledger/internal/cache"
	"wallet_ledger/internal/config"
	"wallet_ledger/internal/db"
	"wallet_ledger/internal/events"
	"wallet_ledger/internal/repository/postgres"
	"wallet_ledger/internal/server"
	"wallet_ledger/internal/service"
	"wallet_ledger/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg       *config.Config
	log       *slog.Logger
	logClose  func() error
	server    *server.Server
	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher *events.KafkaPublisher
	relay     *service.OutboxRelay
	registry  *prometheus.Registry
	metrics   *service.Metrics
}

func NewApp() (*App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации конфига: %w", err)
	}

	log, logClose, err := logger.NewLogger(cfg.Log.Production, cfg.Log.ErrorFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	log.Info("конфигурация загружена",
		slog.String("port", cfg.HTTPPort),
		slog.String("withdrawal_policy", cfg.Wallet.WithdrawalPolicy),
	)

	log.Info("выполнение миграций базы данных")
	if err := db.RunMigrations(cfg.DB.MigrationURL(), cfg.DB.MigrationsDir); err != nil {
		_ = logClose()
		return nil, fmt.Errorf("ошибка выполнения миграций: %w", err)
	}
	log.Info("миграции успешно применены")

	pool, err := db.NewPool(context.Background(), cfg.DB.DSN(), db.PoolOptions{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		_ = logClose()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}
	log.Info("подключение к базе данных установлено")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := server.NewServer(server.Options{
		Port:         cfg.HTTPPort,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})
	log.Info("сервер инициализирован", slog.String("port", cfg.HTTPPort))

	srv.Router.Use(middleware.RequestID)
	srv.Router.Use(middleware.RealIP)
	srv.Router.Use(middlew.WithLogger(log))
	srv.Router.Use(middleware.Recoverer)

	return &App{
		cfg:      cfg,
		log:      log,
		logClose: logClose,
		server:   srv,
		pool:     pool,
		registry: registry,
		metrics:  service.NewMetrics(registry),
	}, nil
}

func (a *App) walletCache() service.WalletCache {
	if !a.cfg.Redis.Enabled() {
		a.log.Info("кэш кошельков отключен: REDIS_ADDR не задан")
		return nil
	}
	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.log.Info("кэш кошельков в redis", slog.String("addr", a.cfg.Redis.Addr), slog.Duration("ttl", a.cfg.Redis.CacheTTL))
	return cache.NewRedisWalletCache(a.redis, a.cfg.Redis.CacheTTL)
}

func (a *App) BuildWalletLayer() {
	repos := service.Repositories{
		Wallets:     postgres.NewWalletRepository(a.pool),
		Ledger:      postgres.NewLedgerRepository(a.pool),
		Topups:      postgres.NewTopupRepository(a.pool),
		Withdrawals: postgres.NewWithdrawalRepository(a.pool),
		Intents:     postgres.NewPaymentIntentRepository(a.pool),
		Users:       postgres.NewUserRepository(a.pool),
		Outbox:      postgres.NewOutboxRepository(a.pool),
	}
	walletService := service.NewWalletService(repos, a.pool, a.walletCache(), a.metrics, a.log, service.Options{
		LockTimeout:      a.cfg.DB.LockTimeout,
		WithdrawalPolicy: a.cfg.Wallet.WithdrawalPolicy,
		TopupPrefix:      a.cfg.Wallet.TopupPrefix,
	})

	if a.cfg.Kafka.Enabled() {
		a.publisher = events.NewKafkaPublisher(events.NewKafkaWriter(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic))
		opts := service.DefaultRelayOptions()
		opts.Interval = a.cfg.Kafka.RelayInterval
		opts.BatchSize = a.cfg.Kafka.RelayBatch
		opts.Workers = a.cfg.Kafka.RelayWorkers
		a.relay = service.NewOutboxRelay(repos.Outbox, a.pool, a.publisher, a.metrics, a.log, opts)
		a.log.Info("публикация событий баланса включена", slog.String("topic", a.cfg.Kafka.Topic))
	} else {
		a.log.Info("публикация событий отключена: KAFKA_BROKERS не задан")
	}

	walletHandler := handlers.NewWalletHandler(walletService)
	callbackHandler := handlers.NewCallbackHandler(walletService)
	userHandler := handlers.NewUserHandler(walletService)
	healthHandler := handlers.NewHealthHandler(a.pool)

	a.server.Router.Get("/healthz", healthHandler.Healthz)
	a.server.Router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.server.Router.Route("/api/v1", func(r chi.Router) {
		r.Post("/callbacks/topup", callbackHandler.Topup)
		r.Post("/callbacks/disbursement", callbackHandler.Disbursement)

		r.Post("/users", userHandler.Register)
		r.Get("/users/{userID}/wallet", walletHandler.GetWalletByUserID)

		r.Get("/wallets", walletHandler.ListWallets)
		r.Get("/wallets/{walletID}", walletHandler.GetWalletByID)
		r.Delete("/wallets/{walletID}", walletHandler.DeleteWallet)
		r.Get("/wallets/{walletID}/transactions", walletHandler.ListTransactions)
		r.Post("/wallets/{walletID}/withdrawals", walletHandler.RequestWithdrawal)
		r.Post("/wallets/{walletID}/topup-intents", walletHandler.CreateTopupIntent)
	})

	a.log.Info("слой 'wallet' собран и маршруты зарегистрированы")
}

// Run блокируется до сигнала завершения или падения сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("сервер запускается")
		if err := a.server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	})

	if a.relay != nil {
		g.Go(func() error {
			return a.relay.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("приложение останавливается")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.log.Error("ошибка при остановке http сервера", slog.String("error", err.Error()))
		}
		return nil
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Error("ошибка закрытия kafka writer", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("ошибка закрытия redis", slog.String("error", err.Error()))
		}
	}

	a.log.Info("закрытие соединения с базой данных")
	a.pool.Close()

	a.log.Info("приложение остановлено")
	_ = a.logClose()
}
