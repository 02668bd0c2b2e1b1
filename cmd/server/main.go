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

	"github.com/varkes/adshort/config"
	appmodel "github.com/varkes/adshort/internal/app/model"
	apprepository "github.com/varkes/adshort/internal/app/repository"
	appserver "github.com/varkes/adshort/internal/app/server"
	appservice "github.com/varkes/adshort/internal/app/service"
	"github.com/varkes/adshort/internal/infra/logger"
	infraNATS "github.com/varkes/adshort/internal/infra/nats"
	infraPostgres "github.com/varkes/adshort/internal/infra/postgres"
	infraPrometheus "github.com/varkes/adshort/internal/infra/prometheus"
	infraRedis "github.com/varkes/adshort/internal/infra/redis"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded",
		zap.String("base_url", cfg.Server.BaseURL),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	err = infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Link{}, &appmodel.Click{}, &appmodel.User{}, &appmodel.APIKey{}, &appmodel.AdSnippet{})
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.String("addr", promServer.Addr))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	linkRepo := apprepository.NewLinkRepository(gormDB, pool)
	clickRepo := apprepository.NewClickRepository(gormDB)
	userRepo := apprepository.NewUserRepository(gormDB)
	keyRepo := apprepository.NewAPIKeyRepository(gormDB)
	adRepo := apprepository.NewAdSnippetRepository(gormDB)

	generator := appservice.NewGenerator(linkRepo)
	if seeded, err := generator.Warm(ctx); err != nil {
		log.Fatal("Failed to warm code filter", zap.Error(err))
	} else {
		log.Info("Code filter warmed", zap.Int("codes", seeded))
	}

	aggregator := appservice.NewAggregator(clickRepo)
	linkService := appservice.NewLinkService(linkRepo, clickRepo, generator, aggregator)
	authService := appservice.NewAuthService(userRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	keyService := appservice.NewAPIKeyService(keyRepo)
	resolver := appservice.NewResolver(linkRepo, log)
	recorder := appservice.NewClickRecorder(linkRepo, clickRepo)
	publisher := appservice.NewClickPublisher(js)

	consumer := appservice.NewClickConsumer(js, log, recorder)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}
	defer consumer.Stop()

	if err := seedAdmin(ctx, userRepo, cfg.Admin, log); err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}

	server := appserver.New(appserver.Dependencies{
		Logger:      log,
		Config:      cfg,
		Postgres:    pool,
		Redis:       redisClient,
		NATS:        natsConn,
		JetStream:   js,
		Links:       linkRepo,
		Clicks:      clickRepo,
		Users:       userRepo,
		Ads:         adRepo,
		LinkService: linkService,
		AuthService: authService,
		KeyService:  keyService,
		Resolver:    resolver,
		Recorder:    recorder,
		Publisher:   publisher,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting HTTP server", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

// seedAdmin creates the configured admin account if it does not
// exist yet. A blank config leaves seeding off.
func seedAdmin(ctx context.Context, users apprepository.UserRepository, cfg config.AdminConfig, log *zap.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, cfg.Email); err == nil {
		return nil
	} else if !errors.Is(err, apprepository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := cfg.Name
	if name == "" {
		name = "Administrator"
	}
	err = users.Create(ctx, &appmodel.User{
		Name:         name,
		Email:        cfg.Email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
	if err != nil {
		return err
	}

	log.Info("Seeded admin account", zap.String("email", cfg.Email))
	return nil
}
