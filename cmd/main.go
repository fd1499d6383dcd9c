package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-user-lifecycle/config"
	"github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/go-user-lifecycle/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/rediscache"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/search"
	"github.com/oksasatya/go-user-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-user-lifecycle/internal/router"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
	"github.com/oksasatya/go-user-lifecycle/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	// Store
	var (
		repo repository.UserRepository
		tx   repository.Transactor
	)
	switch cfg.StoreDriver {
	case "memory":
		mem := memory.NewUserRepository()
		repo, tx = mem, mem
		logger.Warn("using in-memory user store; data is lost on restart")
	case "postgres":
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		cleanups = append(cleanups, pool.Close)

		// Run migrations using database/sql with pgx stdlib
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.Fatalf("migration failed: %v", err)
		}
		repo, tx = pginfra.NewUserRepository(pool), pginfra.NewTransactor(pool)
	default:
		logger.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	opts := []application.Option{}

	// Redis: active-user cache and rate limiting
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; cache misses and rate limits fail open")
		}
		cancel()
		opts = append(opts, application.WithCache(rediscache.NewUserCache(rdb, cfg.UserCacheTTL)))
	}

	// Elasticsearch: search projection of ACTIVE users
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.Fatalf("failed to init elasticsearch client: %v", err)
	}
	if es != nil {
		opts = append(opts, application.WithIndex(search.NewUserIndex(es, cfg.ESUsersIndex)))
	}

	notifier, closeNotifier := buildNotifier(cfg, logger)
	cleanups = append(cleanups, closeNotifier)

	svc := application.NewService(repo, tx, notifier, logger, cfg.PublicBaseURL, opts...)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.EmailHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{cfg.VerifyRedirectURL}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, router.Deps{
		Service:           svc,
		Redis:             rdb,
		Logger:            logger,
		VerifyRedirectURL: cfg.VerifyRedirectURL,
		DebugMetrics:      cfg.DebugMetricsEnabled,
	})
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// buildNotifier picks how verification emails leave the service:
// logged only, queued for the email worker, or sent directly through Mailgun.
func buildNotifier(cfg *config.Config, logger *logrus.Logger) (repository.Notifier, func()) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; verification emails are logged only")
		return notify.NewLogNotifier(logger), noop
	}
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		return notify.NewQueueNotifier(pub, cfg.Brand()), pub.Close
	}
	if !cfg.MailgunConfigured() {
		logger.Fatal("MAIL_SEND_ENABLED=true but neither RabbitMQ nor Mailgun is configured")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
	return notify.NewMailgunNotifier(mg, cfg.Brand()), noop
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
