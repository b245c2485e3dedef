package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/go-redis/redis/v8"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/auth"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/config"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/db"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/logging"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/mailer"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/ratelimit"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/router"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store/dynamodb"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store/memory"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store/postgres"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, flush, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.Error(err, "server stopped")
		flush()
		os.Exit(1)
	}
}

func run(cfg config.AppConfig, logger logr.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	counters, closeCounters, err := openLimitStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCounters()

	apiLimiter, err := ratelimit.New(ratelimit.Config{
		Name:   "api",
		Window: cfg.APILimit.Window,
		Max:    cfg.APILimit.Max,
	}, counters)
	if err != nil {
		return err
	}
	deviceLimiter, err := ratelimit.New(ratelimit.Config{
		Name:   "device",
		Window: cfg.DeviceLimit.Window,
		Max:    cfg.DeviceLimit.Max,
	}, counters)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := router.New(router.Deps{
		Store:          st,
		Hasher:         auth.NewHasher(cfg.BcryptCost),
		Tokens:         auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExpiresIn, cfg.JWTIssuer),
		Mail:           newMailer(cfg, logger),
		APILimiter:     apiLimiter,
		DeviceLimiter:  deviceLimiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "store", cfg.StoreDriver, "rateLimitStore", cfg.RateLimitStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.AppConfig, logger logr.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		pg := postgres.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case config.DriverDynamoDB:
		return dynamodb.New(ctx, dynamodb.Options{
			Region:         cfg.DynamoRegion,
			Endpoint:       cfg.DynamoEndpoint,
			EmployeesTable: cfg.DynamoEmployeesTable,
			AdminsTable:    cfg.DynamoAdminsTable,
		})
	case config.DriverMemory:
		logger.Info("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openLimitStore(ctx context.Context, cfg config.AppConfig) (ratelimit.Store, func(), error) {
	if cfg.RateLimitStore != config.LimitStoreRedis {
		return ratelimit.NewMemoryStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rs := ratelimit.NewRedisStore(client)
	if err := rs.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return rs, func() { _ = client.Close() }, nil
}

func newMailer(cfg config.AppConfig, logger logr.Logger) mailer.Sender {
	if !cfg.MailEnabled() {
		logger.Info("SMTP not configured, verification codes are logged")
		return mailer.NewLogSender(logger)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.MailFrom,
		Signature: cfg.MailSignature,
	})
}
