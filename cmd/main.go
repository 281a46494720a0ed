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
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-ddd-postboard/config"
	"github.com/oksasatya/go-ddd-postboard/internal/container"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/go-ddd-postboard/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/storage"
	"github.com/oksasatya/go-ddd-postboard/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-postboard/internal/router"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
	"github.com/oksasatya/go-ddd-postboard/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Storage
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		st := memory.NewStore()
		container.SetStore(container.Store{Users: st.Users(), Posts: st.Posts(), Comments: st.Comments(), Tx: st})
	default:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()

		// Run migrations using database/sql with pgx stdlib
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		container.SetPGPool(pool)
		container.SetStore(container.Store{
			Users:    pginfra.NewUserRepository(pool),
			Posts:    pginfra.NewPostRepository(pool),
			Comments: pginfra.NewCommentRepository(pool),
			Tx:       pginfra.NewTransactor(pool, logger),
		})
	}

	var sinks event.Fanout

	// Redis: view cache, rate limits, operator sessions
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; cache and rate limits fail open")
		}
		container.SetRedis(rdb)
		vc := cache.NewViewCache(rdb, "view", cfg.ViewCacheTTL, logger)
		container.SetViewCache(vc)
		container.SetSessions(cache.NewSessionStore(rdb))
		sinks = append(sinks, vc)
	}

	// RabbitMQ: change events
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsExchange)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; change events disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
			sinks = append(sinks, messaging.NewChangePublisher(pub))
		}
	}
	if len(sinks) > 0 {
		container.SetNotifier(sinks)
	}

	// Elasticsearch: post search
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(helpers.ESOptions{Addrs: addrs, Username: cfg.ElasticsearchUser, Password: cfg.ElasticsearchPass})
		if err != nil {
			logger.WithError(err).Fatal("failed to init elasticsearch client")
		}
		idx := search.NewPostIndex(es, cfg.ESPostsIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("ensure posts index failed; search disabled")
		} else {
			container.SetES(es)
			container.SetPostIndex(idx)
		}
	}

	// GCS: snapshot export
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to init GCS client")
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
		container.SetSnapshotStore(storage.NewSnapshotBucket(gcsClient, cfg.GCSBucket))
	}

	// JWT
	if cfg.AuthEnabled {
		if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
			logger.Fatal("AUTH_ENABLED requires ADMIN_EMAIL and ADMIN_PASSWORD_HASH")
		}
		container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver, "auth": cfg.AuthEnabled}).Info("server starting")
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
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
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
